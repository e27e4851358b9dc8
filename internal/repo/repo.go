// Package repo defines the remote content repository contract the store is
// written against: get/put/delete by path with optional single-file
// optimistic-concurrency preconditions, plus a directory listing. There are
// no multi-file transactions; every write stands alone.
package repo

import "context"

// Entry types returned by ListDir.
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// File is the content of a path together with its current version token.
type File struct {
	Content []byte
	Token   string
}

// Entry describes one child of a directory.
type Entry struct {
	Name  string
	Path  string
	Type  string
	Token string
	Size  int
}

// Client is the narrow contract consumed by the content store.
//
// Read returns apperr.ErrNotFound when the path does not exist; callers
// treat absence as a normal outcome. Write takes an optional version token:
// an empty token means "no precondition, overwrite unconditionally", a
// non-empty token makes the write conditional on the file still carrying
// that token, failing with apperr.ErrConflict otherwise. Delete always
// requires a token. Any other repository failure is an *apperr.StoreError.
type Client interface {
	Read(ctx context.Context, path string) (*File, error)
	Write(ctx context.Context, path string, content []byte, message, token string) error
	Delete(ctx context.Context, path, token, message string) error
	ListDir(ctx context.Context, path string) ([]Entry, error)
}
