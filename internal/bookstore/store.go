// Package bookstore implements the content store for the novel library:
// a stateless mediator that keeps the manifest, per-book metadata, and
// chapter files consistent over a repository offering only single-file
// compare-and-swap. Operations perform multiple independent remote writes
// and can partially fail; every file that does get written is individually
// well-formed, and the manifest is treated as a best-effort secondary
// index with the metadata files as the source of truth.
package bookstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paokel/novelhub/internal/apperr"
	"github.com/paokel/novelhub/internal/repo"
	"github.com/paokel/novelhub/internal/slug"
)

const (
	manifestFile = "books-manager.json"
	metadataFile = "metadata.json"
	coverFile    = "cover.jpg"

	defaultRating = 5
)

// Store orchestrates reads and writes against the remote repository.
// It holds no durable state of its own.
type Store struct {
	repo repo.Client
	base string
}

// New creates a store rooted at basePath (e.g. "public/content").
func New(client repo.Client, basePath string) *Store {
	return &Store{repo: client, base: strings.TrimSuffix(basePath, "/")}
}

func (s *Store) manifestPath() string { return s.base + "/" + manifestFile }

// BookDir returns the repository directory holding one book's files.
func (s *Store) BookDir(bookSlug string) string { return s.base + "/books/" + bookSlug }

func (s *Store) metadataPath(bookSlug string) string {
	return s.BookDir(bookSlug) + "/" + metadataFile
}

func (s *Store) coverPath(bookSlug string) string {
	return s.BookDir(bookSlug) + "/" + coverFile
}

func (s *Store) chapterPath(bookSlug, chapterSlug string) string {
	return s.BookDir(bookSlug) + "/" + chapterSlug + ".md"
}

// CreateBook validates the input, checks the manifest for a slug collision,
// then writes cover (if any), metadata, a seed chapter, and finally the
// manifest entry. The manifest write carries the version token read before
// the collision check, so a racing create loses with ErrConflict. Metadata
// and chapter land before the manifest on purpose: if the manifest write
// fails the book is invisible but repairable (see RebuildManifest).
//
// A retried create is idempotent: when the slug is already listed and the
// stored metadata matches the request field-for-field, the stored record is
// returned as success instead of ErrConflict.
func (s *Store) CreateBook(ctx context.Context, in CreateBookInput) (*Metadata, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.Author) == "" {
		return nil, fmt.Errorf("%w: author is required", apperr.ErrValidation)
	}
	bookSlug := slug.Make(in.Title)
	if bookSlug == "" {
		return nil, fmt.Errorf("%w: title %q produces an empty slug", apperr.ErrValidation, in.Title)
	}
	rating := in.Rating
	if rating == 0 {
		rating = defaultRating
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", apperr.ErrValidation)
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	manifest, manifestToken, err := s.readManifest(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range manifest {
		if b.Slug == bookSlug {
			return s.resolveExisting(ctx, bookSlug, in, rating, tags)
		}
	}

	now := time.Now().UTC()

	if len(in.Cover) > 0 {
		if err := s.repo.Write(ctx, s.coverPath(bookSlug), in.Cover, "Add cover for "+in.Title, ""); err != nil {
			return nil, err
		}
	}

	seedTitle := "Chapter 1"
	seedSlug := slug.Make(seedTitle)
	meta := &Metadata{
		Title:    in.Title,
		Author:   in.Author,
		Tags:     tags,
		Rating:   rating,
		Synopsis: in.Synopsis,
		Slug:     bookSlug,
		Chapters: []ChapterSummary{{
			Title: seedTitle,
			Slug:  seedSlug,
			Path:  s.chapterPath(bookSlug, seedSlug),
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.writeMetadata(ctx, bookSlug, meta, "Create book: "+in.Title, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Write(ctx, s.chapterPath(bookSlug, seedSlug), seedChapter(in.Title),
		"Seed example chapter for "+in.Title, ""); err != nil {
		return nil, err
	}

	entry := Summary{
		Title:  in.Title,
		Author: in.Author,
		Slug:   bookSlug,
		Rating: rating,
		Tags:   tags,
	}
	if len(in.Cover) > 0 {
		entry.CoverImage = s.coverPath(bookSlug)
	}
	manifest = append(manifest, entry)
	if err := s.writeManifest(ctx, manifest, "Add "+in.Title+" to books-manager", manifestToken); err != nil {
		return nil, err
	}
	return meta, nil
}

// resolveExisting decides what a create against an already-listed slug
// means: an exact replay of the stored record is a successful retry,
// anything else is a real collision.
func (s *Store) resolveExisting(ctx context.Context, bookSlug string, in CreateBookInput, rating int, tags []string) (*Metadata, error) {
	meta, err := s.GetBook(ctx, bookSlug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: a book with slug %q already exists", apperr.ErrConflict, bookSlug)
		}
		return nil, err
	}
	if meta.Title == in.Title && meta.Author == in.Author &&
		meta.Rating == rating && meta.Synopsis == in.Synopsis && equalTags(meta.Tags, tags) {
		return meta, nil
	}
	return nil, fmt.Errorf("%w: a book with slug %q already exists", apperr.ErrConflict, bookSlug)
}

// EditBook applies a partial update to the metadata file using the version
// token from its read, then refreshes the manifest entry best-effort. A
// manifest that is missing or no longer lists the slug is tolerated; the
// two files may legitimately diverge.
func (s *Store) EditBook(ctx context.Context, bookSlug string, in EditBookInput) (*Metadata, error) {
	if bookSlug == "" {
		return nil, fmt.Errorf("%w: slug is required", apperr.ErrValidation)
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", apperr.ErrValidation)
	}

	f, err := s.repo.Read(ctx, s.metadataPath(bookSlug))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: book %q", apperr.ErrNotFound, bookSlug)
		}
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(f.Content, &meta); err != nil {
		return nil, &apperr.StoreError{Op: "decode", Path: s.metadataPath(bookSlug), Err: err}
	}

	if in.Title != "" {
		meta.Title = in.Title
	}
	if in.Author != "" {
		meta.Author = in.Author
	}
	if in.Tags != nil {
		meta.Tags = in.Tags
	}
	if in.Rating != nil {
		meta.Rating = *in.Rating
	}
	if in.Synopsis != nil {
		meta.Synopsis = *in.Synopsis
	}
	meta.UpdatedAt = time.Now().UTC()

	if err := s.writeMetadata(ctx, bookSlug, &meta, "Update metadata for "+meta.Title, f.Token); err != nil {
		return nil, err
	}

	manifest, manifestToken, err := s.readManifest(ctx)
	if err != nil {
		return nil, err
	}
	for i := range manifest {
		if manifest[i].Slug != bookSlug {
			continue
		}
		manifest[i].Title = meta.Title
		manifest[i].Author = meta.Author
		manifest[i].Tags = meta.Tags
		manifest[i].Rating = meta.Rating
		if err := s.writeManifest(ctx, manifest, "Update "+meta.Title+" in books-manager", manifestToken); err != nil {
			return nil, err
		}
		break
	}
	return &meta, nil
}

// GetBook reads one book's metadata.
func (s *Store) GetBook(ctx context.Context, bookSlug string) (*Metadata, error) {
	f, err := s.repo.Read(ctx, s.metadataPath(bookSlug))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: book %q", apperr.ErrNotFound, bookSlug)
		}
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(f.Content, &meta); err != nil {
		return nil, &apperr.StoreError{Op: "decode", Path: s.metadataPath(bookSlug), Err: err}
	}
	return &meta, nil
}

// ListBooks returns the manifest entries; an absent manifest is an empty
// library, not an error.
func (s *Store) ListBooks(ctx context.Context) ([]Summary, error) {
	manifest, _, err := s.readManifest(ctx)
	return manifest, err
}

// ListChapters lists the markdown chapter files of a book in the order the
// repository returns them. The order is not independently sorted here.
func (s *Store) ListChapters(ctx context.Context, bookSlug string) ([]repo.Entry, error) {
	entries, err := s.repo.ListDir(ctx, s.BookDir(bookSlug))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: book %q", apperr.ErrNotFound, bookSlug)
		}
		return nil, err
	}
	chapters := make([]repo.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Type == repo.TypeFile && strings.HasSuffix(e.Name, ".md") {
			chapters = append(chapters, e)
		}
	}
	return chapters, nil
}

// ReadChapter returns the raw markdown of one chapter.
func (s *Store) ReadChapter(ctx context.Context, bookSlug, chapterSlug string) ([]byte, error) {
	f, err := s.repo.Read(ctx, s.chapterPath(bookSlug, chapterSlug))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: chapter %q of book %q", apperr.ErrNotFound, chapterSlug, bookSlug)
		}
		return nil, err
	}
	return f.Content, nil
}

// UploadChapter writes a chapter unconditionally: re-uploading the same
// title silently replaces the file. Neither manifest nor metadata is
// touched; the directory listing stays authoritative for chapters.
func (s *Store) UploadChapter(ctx context.Context, bookSlug, chapterTitle, content string) (*ChapterSummary, error) {
	if bookSlug == "" {
		return nil, fmt.Errorf("%w: slug is required", apperr.ErrValidation)
	}
	if strings.TrimSpace(chapterTitle) == "" {
		return nil, fmt.Errorf("%w: chapter title is required", apperr.ErrValidation)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrValidation)
	}
	chapterSlug := slug.Make(chapterTitle)
	if chapterSlug == "" {
		return nil, fmt.Errorf("%w: chapter title %q produces an empty slug", apperr.ErrValidation, chapterTitle)
	}

	path := s.chapterPath(bookSlug, chapterSlug)
	msg := fmt.Sprintf("Add chapter: %s to %s", chapterTitle, bookSlug)
	if err := s.repo.Write(ctx, path, []byte(content), msg, ""); err != nil {
		return nil, err
	}
	return &ChapterSummary{Title: chapterTitle, Slug: chapterSlug, Path: path}, nil
}

// DeleteChapters removes each listed chapter with its own version token as
// precondition. The batch is deliberately not atomic: items are processed
// in order, failures are recorded per item, and earlier successes are
// never rolled back.
func (s *Store) DeleteChapters(ctx context.Context, refs []ChapterRef) []DeleteResult {
	results := make([]DeleteResult, 0, len(refs))
	for _, ref := range refs {
		err := s.repo.Delete(ctx, ref.Path, ref.Token, "Delete chapter: "+ref.Name)
		if err != nil {
			results = append(results, DeleteResult{Path: ref.Path, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, DeleteResult{Path: ref.Path, Success: true})
	}
	return results
}

// RebuildManifest regenerates the manifest from the per-book metadata
// files, which are authoritative. Books whose metadata cannot be read or
// decoded are skipped and reported. The rebuilt manifest is written with
// the token of whatever manifest version was current when the rebuild
// started, so a concurrent mutation loses one of the two writes cleanly.
func (s *Store) RebuildManifest(ctx context.Context) (*RepairReport, error) {
	var manifestToken string
	if f, err := s.repo.Read(ctx, s.manifestPath()); err == nil {
		manifestToken = f.Token
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	var dirs []repo.Entry
	entries, err := s.repo.ListDir(ctx, s.base+"/books")
	switch {
	case err == nil:
		dirs = entries
	case errors.Is(err, apperr.ErrNotFound):
		// No books at all; rebuild to an empty manifest.
	default:
		return nil, err
	}

	report := &RepairReport{}
	manifest := make([]Summary, 0, len(dirs))
	for _, d := range dirs {
		if d.Type != repo.TypeDir {
			continue
		}
		meta, err := s.GetBook(ctx, d.Name)
		if err != nil {
			report.Skipped = append(report.Skipped, d.Name)
			continue
		}
		entry := Summary{
			Title:  meta.Title,
			Author: meta.Author,
			Slug:   meta.Slug,
			Rating: meta.Rating,
			Tags:   meta.Tags,
		}
		if s.hasCover(ctx, d.Name) {
			entry.CoverImage = s.coverPath(d.Name)
		}
		manifest = append(manifest, entry)
	}

	if err := s.writeManifest(ctx, manifest, "Rebuild books-manager from metadata", manifestToken); err != nil {
		return nil, err
	}
	report.Books = len(manifest)
	return report, nil
}

func (s *Store) hasCover(ctx context.Context, bookSlug string) bool {
	entries, err := s.repo.ListDir(ctx, s.BookDir(bookSlug))
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Type == repo.TypeFile && e.Name == coverFile {
			return true
		}
	}
	return false
}

// readManifest returns the manifest entries and the version token to use
// as a write precondition. Absence is an empty list with no token.
func (s *Store) readManifest(ctx context.Context) ([]Summary, string, error) {
	f, err := s.repo.Read(ctx, s.manifestPath())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return []Summary{}, "", nil
		}
		return nil, "", err
	}
	var manifest []Summary
	if err := json.Unmarshal(f.Content, &manifest); err != nil {
		return nil, "", &apperr.StoreError{Op: "decode", Path: s.manifestPath(), Err: err}
	}
	return manifest, f.Token, nil
}

func (s *Store) writeManifest(ctx context.Context, manifest []Summary, message, token string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return &apperr.StoreError{Op: "encode", Path: s.manifestPath(), Err: err}
	}
	return s.repo.Write(ctx, s.manifestPath(), data, message, token)
}

func (s *Store) writeMetadata(ctx context.Context, bookSlug string, meta *Metadata, message, token string) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return &apperr.StoreError{Op: "encode", Path: s.metadataPath(bookSlug), Err: err}
	}
	return s.repo.Write(ctx, s.metadataPath(bookSlug), data, message, token)
}

func seedChapter(title string) []byte {
	return []byte(fmt.Sprintf("# Chapter 1\n\nThis is an example chapter for %q.\n\nYou can edit or delete it from the admin panel.\n", title))
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
