package api

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paokel/novelhub/internal/auth"
	"github.com/paokel/novelhub/internal/bookstore"
	"github.com/paokel/novelhub/internal/catalog"
	"github.com/paokel/novelhub/internal/events"
)

const maxBodyBytes = 10 << 20 // covers arrive base64-encoded in the JSON body

// Handler holds the API route handlers.
type Handler struct {
	books   *bookstore.Store
	builder *catalog.Builder
	auth    *auth.Service
	broker  *events.Broker
}

// NewHandler creates a Handler. broker may be nil (no event publishing).
func NewHandler(books *bookstore.Store, builder *catalog.Builder, gate *auth.Service, broker *events.Broker) *Handler {
	return &Handler{books: books, builder: builder, auth: gate, broker: broker}
}

func (h *Handler) publish(eventType string, data any) {
	if h.broker != nil {
		h.broker.Publish(events.Event{Type: eventType, Data: data})
	}
}

// Login handles POST /auth/login: exchanges the admin password for a
// bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	token, _, err := h.auth.Login(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     token,
		"expiresIn": h.auth.TTL().String(),
	})
}

// PublicIndex handles GET /index: the aggregated public library document.
func (h *Handler) PublicIndex(w http.ResponseWriter, r *http.Request) {
	idx, skipped := h.builder.Build(r.Context())
	for _, s := range skipped {
		slog.Warn("book omitted from public index",
			slog.String("slug", s.Slug), slog.String("error", s.Err.Error()))
	}
	status := http.StatusOK
	if idx.Error != "" {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, idx)
}

// ListBooks handles GET /books: the manifest entries.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.ListBooks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

// CreateBook handles POST /books.
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req struct {
		Title      string   `json:"title"`
		Author     string   `json:"author"`
		Tags       []string `json:"tags"`
		Rating     int      `json:"rating"`
		Synopsis   string   `json:"synopsis"`
		CoverImage string   `json:"coverImage"` // base64
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	var cover []byte
	if req.CoverImage != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.CoverImage)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("coverImage must be base64-encoded"))
			return
		}
		cover = decoded
	}

	book, err := h.books.CreateBook(r.Context(), bookstore.CreateBookInput{
		Title:    req.Title,
		Author:   req.Author,
		Tags:     req.Tags,
		Rating:   req.Rating,
		Synopsis: req.Synopsis,
		Cover:    cover,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish(events.BookCreated, map[string]string{"slug": book.Slug})
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "book": book})
}

// EditBook handles PUT /books/{slug}: partial metadata update.
func (h *Handler) EditBook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	bookSlug := chi.URLParam(r, "slug")
	var req struct {
		Title    string   `json:"title"`
		Author   string   `json:"author"`
		Tags     []string `json:"tags"`
		Rating   *int     `json:"rating"`
		Synopsis *string  `json:"synopsis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	book, err := h.books.EditBook(r.Context(), bookSlug, bookstore.EditBookInput{
		Title:    req.Title,
		Author:   req.Author,
		Tags:     req.Tags,
		Rating:   req.Rating,
		Synopsis: req.Synopsis,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish(events.BookUpdated, map[string]string{"slug": book.Slug})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "book": book})
}

// ListChapters handles GET /books/{slug}/chapters.
func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	bookSlug := chi.URLParam(r, "slug")
	entries, err := h.books.ListChapters(r.Context(), bookSlug)
	if err != nil {
		writeError(w, err)
		return
	}
	chapters := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		chapters = append(chapters, map[string]any{
			"name": e.Name,
			"path": e.Path,
			"sha":  e.Token,
			"size": e.Size,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"chapters": chapters})
}

// UploadChapter handles POST /books/{slug}/chapters.
func (h *Handler) UploadChapter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	bookSlug := chi.URLParam(r, "slug")
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	chapter, err := h.books.UploadChapter(r.Context(), bookSlug, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish(events.ChapterUpload, map[string]string{"slug": bookSlug, "chapter": chapter.Slug})
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "chapter": chapter})
}

// DeleteChapters handles DELETE /chapters: a best-effort batch with
// per-item results.
func (h *Handler) DeleteChapters(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Chapters []bookstore.ChapterRef `json:"chapters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.Chapters) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("chapter list is required"))
		return
	}

	results := h.books.DeleteChapters(r.Context(), req.Chapters)
	for _, res := range results {
		if res.Success {
			h.publish(events.ChapterDeleted, map[string]string{"path": res.Path})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})
}

// RebuildManifest handles POST /admin/rebuild-manifest: regenerates the
// manifest from the authoritative metadata files.
func (h *Handler) RebuildManifest(w http.ResponseWriter, r *http.Request) {
	report, err := h.books.RebuildManifest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish(events.ManifestRepair, report)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "report": report})
}
