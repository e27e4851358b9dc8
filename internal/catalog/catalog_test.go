package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/paokel/novelhub/internal/bookstore"
	"github.com/paokel/novelhub/internal/repo"
)

const (
	testBase = "public/content"
	testRaw  = "https://raw.example.com/owner/repo/main"
)

func newTestBuilder(t *testing.T) (*Builder, *bookstore.Store, *repo.Memory) {
	t.Helper()
	mem := repo.NewMemory()
	store := bookstore.New(mem, testBase)
	return NewBuilder(store, testRaw), store, mem
}

func TestBuildEmptyLibrary(t *testing.T) {
	b, _, _ := newTestBuilder(t)
	idx, skipped := b.Build(context.Background())
	if idx.Error != "" {
		t.Errorf("unexpected error: %q", idx.Error)
	}
	if idx.Total != 0 || len(idx.Novels) != 0 {
		t.Errorf("index = %+v, want empty", idx)
	}
	if idx.Novels == nil {
		t.Error("novels must encode as [], not null")
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %v", skipped)
	}
	if idx.LastUpdated.IsZero() {
		t.Error("lastUpdated not set")
	}
}

func TestBuildFullIndex(t *testing.T) {
	b, store, _ := newTestBuilder(t)
	ctx := context.Background()

	if _, err := store.CreateBook(ctx, bookstore.CreateBookInput{
		Title:    "Café Noir",
		Author:   "J. Doe",
		Tags:     []string{"noir"},
		Rating:   4,
		Synopsis: "A dark tale.",
		Cover:    []byte{0xff},
	}); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if _, err := store.UploadChapter(ctx, "cafe-noir", "The Long Night", "# text"); err != nil {
		t.Fatalf("UploadChapter: %v", err)
	}

	idx, skipped := b.Build(ctx)
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v", skipped)
	}
	if idx.Total != 1 || len(idx.Novels) != 1 {
		t.Fatalf("total = %d, novels = %d", idx.Total, len(idx.Novels))
	}

	n := idx.Novels[0]
	if n.ID != "cafe-noir" || n.Slug != "cafe-noir" {
		t.Errorf("identity fields: %+v", n)
	}
	if n.Synopsis != "A dark tale." || n.Rating != 4 {
		t.Errorf("metadata fields: %+v", n)
	}
	if !strings.HasPrefix(n.Cover, testRaw+"/") || !strings.HasSuffix(n.Cover, "/cover.jpg") {
		t.Errorf("cover = %q", n.Cover)
	}

	if len(n.Chapters) != 2 {
		t.Fatalf("chapters = %d, want 2 (seed + upload)", len(n.Chapters))
	}
	for i, ch := range n.Chapters {
		wantID := "ch-" + string(rune('1'+i))
		if ch.ID != wantID {
			t.Errorf("chapter %d id = %q, want %q", i, ch.ID, wantID)
		}
		if !strings.HasPrefix(ch.URL, "/cafe-noir/") {
			t.Errorf("chapter url = %q", ch.URL)
		}
		if strings.HasSuffix(ch.URL, ".md") {
			t.Errorf("chapter url keeps extension: %q", ch.URL)
		}
	}
}

func TestBuildFallbacks(t *testing.T) {
	b, store, _ := newTestBuilder(t)
	ctx := context.Background()

	// No cover, no synopsis.
	if _, err := store.CreateBook(ctx, bookstore.CreateBookInput{Title: "Plain", Author: "A"}); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	idx, _ := b.Build(ctx)
	if len(idx.Novels) != 1 {
		t.Fatalf("novels = %d", len(idx.Novels))
	}
	n := idx.Novels[0]
	if n.Cover != placeholderCover {
		t.Errorf("cover = %q, want placeholder", n.Cover)
	}
	if n.Synopsis != defaultSynopsis {
		t.Errorf("synopsis = %q, want default", n.Synopsis)
	}
}

func TestBuildSkipsBrokenBook(t *testing.T) {
	b, store, mem := newTestBuilder(t)
	ctx := context.Background()

	if _, err := store.CreateBook(ctx, bookstore.CreateBookInput{Title: "Good", Author: "A"}); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if _, err := store.CreateBook(ctx, bookstore.CreateBookInput{Title: "Bad", Author: "B"}); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	// Break one book's metadata out-of-band.
	if err := mem.Write(ctx, testBase+"/books/bad/metadata.json", []byte("not json"), "break", ""); err != nil {
		t.Fatalf("break metadata: %v", err)
	}

	idx, skipped := b.Build(ctx)
	if len(idx.Novels) != 1 || idx.Novels[0].Slug != "good" {
		t.Errorf("novels = %+v, want only good", idx.Novels)
	}
	if idx.Total != 1 {
		t.Errorf("total = %d, want 1", idx.Total)
	}
	if len(skipped) != 1 || skipped[0].Slug != "bad" || skipped[0].Err == nil {
		t.Errorf("skipped = %+v, want bad with an error", skipped)
	}
	if idx.Error != "" {
		t.Errorf("per-book failure must not set the document error: %q", idx.Error)
	}
}

func TestBuildManifestFailure(t *testing.T) {
	b, store, mem := newTestBuilder(t)
	ctx := context.Background()

	if _, err := store.CreateBook(ctx, bookstore.CreateBookInput{Title: "Good", Author: "A"}); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	f, _ := mem.Read(ctx, testBase+"/books-manager.json")
	if err := mem.Write(ctx, testBase+"/books-manager.json", []byte("garbage"), "corrupt", f.Token); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}

	idx, skipped := b.Build(ctx)
	if idx.Error != loadError {
		t.Errorf("error = %q, want %q", idx.Error, loadError)
	}
	if len(idx.Novels) != 0 || idx.Total != 0 {
		t.Errorf("index should be empty on manifest failure: %+v", idx)
	}
	if skipped != nil {
		t.Errorf("skipped = %v, want nil", skipped)
	}
}

func TestNoRawBaseUsesPlaceholder(t *testing.T) {
	mem := repo.NewMemory()
	store := bookstore.New(mem, testBase)
	b := NewBuilder(store, "")
	ctx := context.Background()

	if _, err := store.CreateBook(ctx, bookstore.CreateBookInput{
		Title: "Covered", Author: "A", Cover: []byte{1},
	}); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	idx, _ := b.Build(ctx)
	if idx.Novels[0].Cover != placeholderCover {
		t.Errorf("cover = %q, want placeholder when no raw base", idx.Novels[0].Cover)
	}
}

func TestChapterTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"chapter-1", "Chapter 1"},
		{"the-long-night", "The Long Night"},
		{"épilogue", "Épilogue"},
		{"a--b", "A  B"},
		{"x", "X"},
	}
	for _, tc := range cases {
		if got := chapterTitle(tc.in); got != tc.want {
			t.Errorf("chapterTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
