package repo

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/paokel/novelhub/internal/apperr"
)

// Memory implements Client with an in-process map. It is the backend for
// local development and tests. Version tokens are git-style blob SHA-1s so
// the fake hands out the same kind of token the GitHub backend does.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// BlobToken returns the git blob SHA-1 for content.
func BlobToken(content []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func (m *Memory) Read(_ context.Context, path string) (*File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return &File{Content: cp, Token: BlobToken(content)}, nil
}

func (m *Memory) Write(_ context.Context, path string, content []byte, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token != "" {
		current, ok := m.files[path]
		if !ok || BlobToken(current) != token {
			return apperr.ErrConflict
		}
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	m.files[path] = cp
	return nil
}

func (m *Memory) Delete(_ context.Context, path, token, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.files[path]
	if !ok {
		return apperr.ErrNotFound
	}
	if BlobToken(current) != token {
		return apperr.ErrConflict
	}
	delete(m.files, path)
	return nil
}

// ListDir returns the direct children of path sorted by name, mirroring the
// contents API. Directories exist only implicitly, as in git: a directory
// with no files under it is absent.
func (m *Memory) ListDir(_ context.Context, path string) ([]Entry, error) {
	prefix := strings.TrimSuffix(path, "/") + "/"

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]Entry)
	for p, content := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			name := rest[:i]
			seen[name] = Entry{Name: name, Path: prefix + name, Type: TypeDir}
			continue
		}
		seen[rest] = Entry{
			Name:  rest,
			Path:  p,
			Type:  TypeFile,
			Token: BlobToken(content),
			Size:  len(content),
		}
	}
	if len(seen) == 0 {
		return nil, apperr.ErrNotFound
	}

	entries := make([]Entry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
