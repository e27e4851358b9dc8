// Package catalog builds the public, read-only index document for the
// library: the manifest flattened into one JSON payload with per-book
// metadata and chapter links resolved.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/paokel/novelhub/internal/bookstore"
)

const (
	placeholderCover = "https://via.placeholder.com/200x300/1a202c/ffffff?text=Cover"
	defaultSynopsis  = "No synopsis available."
	loadError        = "Unable to load novels from repository"
)

// Chapter is one chapter link in the public document.
type Chapter struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Novel is one book in the public document.
type Novel struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Author   string    `json:"author"`
	Tags     []string  `json:"tags"`
	Rating   int       `json:"rating"`
	Cover    string    `json:"cover"`
	Synopsis string    `json:"synopsis"`
	Chapters []Chapter `json:"chapters"`
}

// Index is the complete public document. Error is set (and Novels empty)
// only when the manifest itself could not be read.
type Index struct {
	Novels      []Novel   `json:"novels"`
	Total       int       `json:"total"`
	LastUpdated time.Time `json:"lastUpdated"`
	Error       string    `json:"error,omitempty"`
}

// Skip records one book that was left out of the index and why.
type Skip struct {
	Slug string
	Err  error
}

// Builder aggregates the store's read operations into Index documents.
type Builder struct {
	books   *bookstore.Store
	rawBase string // base URL for raw file access; covers resolve against it
}

// NewBuilder creates a builder. rawBase may be empty, in which case every
// cover falls back to the placeholder.
func NewBuilder(books *bookstore.Store, rawBase string) *Builder {
	return &Builder{books: books, rawBase: strings.TrimSuffix(rawBase, "/")}
}

// Build walks the manifest and assembles the public document. Books whose
// metadata or directory listing cannot be read are omitted and reported in
// the skip list; only a manifest read failure degrades the whole document,
// and even that is an empty index with the Error field set, never a panic.
//
// Chapter order within a book is whatever order the repository listing
// returned; it is not independently sorted.
func (b *Builder) Build(ctx context.Context) (*Index, []Skip) {
	idx := &Index{Novels: []Novel{}, LastUpdated: time.Now().UTC()}

	summaries, err := b.books.ListBooks(ctx)
	if err != nil {
		idx.Error = loadError
		return idx, nil
	}

	var skipped []Skip
	for _, s := range summaries {
		novel, err := b.buildNovel(ctx, s)
		if err != nil {
			skipped = append(skipped, Skip{Slug: s.Slug, Err: err})
			continue
		}
		idx.Novels = append(idx.Novels, *novel)
	}
	idx.Total = len(idx.Novels)
	return idx, skipped
}

func (b *Builder) buildNovel(ctx context.Context, s bookstore.Summary) (*Novel, error) {
	meta, err := b.books.GetBook(ctx, s.Slug)
	if err != nil {
		return nil, err
	}
	entries, err := b.books.ListChapters(ctx, s.Slug)
	if err != nil {
		return nil, err
	}

	chapters := make([]Chapter, 0, len(entries))
	for i, e := range entries {
		stem := strings.TrimSuffix(e.Name, ".md")
		chapters = append(chapters, Chapter{
			ID:    fmt.Sprintf("ch-%d", i+1),
			Title: chapterTitle(stem),
			URL:   "/" + s.Slug + "/" + stem,
		})
	}

	rating := meta.Rating
	if rating == 0 {
		rating = 5
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	synopsis := meta.Synopsis
	if synopsis == "" {
		synopsis = defaultSynopsis
	}

	return &Novel{
		ID:       s.Slug,
		Title:    meta.Title,
		Slug:     meta.Slug,
		Author:   meta.Author,
		Tags:     tags,
		Rating:   rating,
		Cover:    b.coverURL(s.CoverImage),
		Synopsis: synopsis,
		Chapters: chapters,
	}, nil
}

func (b *Builder) coverURL(coverPath string) string {
	if coverPath == "" || b.rawBase == "" {
		return placeholderCover
	}
	return b.rawBase + "/" + strings.TrimPrefix(coverPath, "/")
}

// chapterTitle turns a filename stem like "the-long-night" into
// "The Long Night".
func chapterTitle(stem string) string {
	words := strings.Split(stem, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
