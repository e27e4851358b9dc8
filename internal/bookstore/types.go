package bookstore

import "time"

// Summary is one entry of the manifest (the books-manager file). It
// denormalizes a subset of the metadata so listings need a single read;
// the metadata file stays authoritative.
type Summary struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Slug       string   `json:"slug"`
	Rating     int      `json:"rating"`
	Tags       []string `json:"tags"`
	CoverImage string   `json:"coverImage,omitempty"`
}

// Metadata is the per-book record stored at <book dir>/metadata.json.
// The Chapters field is informational only; the directory listing is the
// authoritative chapter list.
type Metadata struct {
	Title     string           `json:"title"`
	Author    string           `json:"author"`
	Tags      []string         `json:"tags"`
	Rating    int              `json:"rating"`
	Synopsis  string           `json:"synopsis"`
	Slug      string           `json:"slug"`
	Chapters  []ChapterSummary `json:"chapters"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ChapterSummary identifies one chapter file.
type ChapterSummary struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Path  string `json:"path"`
}

// CreateBookInput carries the fields for a new book. Rating zero means
// "use the default". Cover is optional raw image bytes.
type CreateBookInput struct {
	Title    string
	Author   string
	Tags     []string
	Rating   int
	Synopsis string
	Cover    []byte
}

// EditBookInput is a partial update. Empty Title/Author and nil Tags keep
// the stored value; nil Rating/Synopsis keep the stored value while a
// pointer to the zero value replaces it (a pointer to "" clears the
// synopsis, which is different from leaving it alone).
type EditBookInput struct {
	Title    string
	Author   string
	Tags     []string
	Rating   *int
	Synopsis *string
}

// ChapterRef names one chapter file to delete together with the version
// token the caller last saw for it.
type ChapterRef struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Token string `json:"sha"`
}

// DeleteResult is the per-item outcome of a batch delete.
type DeleteResult struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RepairReport summarizes a manifest rebuild.
type RepairReport struct {
	Books   int      `json:"books"`
	Skipped []string `json:"skipped,omitempty"`
}
