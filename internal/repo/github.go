package repo

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/go-github/v66/github"

	"github.com/paokel/novelhub/internal/apperr"
)

// GitHub implements Client against the GitHub contents API. The version
// token is the blob SHA GitHub reports for each file; it doubles as the
// optimistic-concurrency precondition on writes and deletes.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	branch string
}

// NewGitHub creates a client for the given repository and branch.
// The auth token may be empty for read-only access to public repositories.
func NewGitHub(owner, repoName, branch, token string) *GitHub {
	c := github.NewClient(nil)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	return &GitHub{client: c, owner: owner, repo: repoName, branch: branch}
}

func (g *GitHub) refOpts() *github.RepositoryContentGetOptions {
	return &github.RepositoryContentGetOptions{Ref: g.branch}
}

// Read fetches a single file. A 404 maps to apperr.ErrNotFound.
func (g *GitHub) Read(ctx context.Context, path string) (*File, error) {
	fc, _, resp, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, g.refOpts())
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, &apperr.StoreError{Op: "read", Path: path, Err: err}
	}
	if fc == nil {
		return nil, &apperr.StoreError{Op: "read", Path: path, Err: errors.New("path is a directory")}
	}
	content, err := fc.GetContent()
	if err != nil {
		return nil, &apperr.StoreError{Op: "decode", Path: path, Err: err}
	}
	return &File{Content: []byte(content), Token: fc.GetSHA()}, nil
}

// Write creates or updates a file. The contents API insists on the current
// blob SHA when updating an existing file, so an unconditional write (empty
// token) first looks up whatever SHA the path currently has.
func (g *GitHub) Write(ctx context.Context, path string, content []byte, message, token string) error {
	if token == "" {
		existing, err := g.Read(ctx, path)
		switch {
		case err == nil:
			token = existing.Token
		case errors.Is(err, apperr.ErrNotFound):
			// Fresh path, plain create.
		default:
			return err
		}
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(g.branch),
	}
	if token != "" {
		opts.SHA = github.String(token)
	}

	_, resp, err := g.client.Repositories.UpdateFile(ctx, g.owner, g.repo, path, opts)
	if err != nil {
		if isPreconditionFailure(resp) {
			return apperr.ErrConflict
		}
		return &apperr.StoreError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Delete removes a file; the token is mandatory.
func (g *GitHub) Delete(ctx context.Context, path, token, message string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		SHA:     github.String(token),
		Branch:  github.String(g.branch),
	}
	_, resp, err := g.client.Repositories.DeleteFile(ctx, g.owner, g.repo, path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return apperr.ErrNotFound
		}
		if isPreconditionFailure(resp) {
			return apperr.ErrConflict
		}
		return &apperr.StoreError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// ListDir returns the children of a directory in the order GitHub reports
// them (lexicographic by name). A missing directory maps to ErrNotFound.
func (g *GitHub) ListDir(ctx context.Context, path string) ([]Entry, error) {
	_, dc, resp, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, g.refOpts())
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, &apperr.StoreError{Op: "list", Path: path, Err: err}
	}
	if dc == nil {
		return nil, &apperr.StoreError{Op: "list", Path: path, Err: errors.New("path is not a directory")}
	}
	entries := make([]Entry, 0, len(dc))
	for _, it := range dc {
		entries = append(entries, Entry{
			Name:  it.GetName(),
			Path:  it.GetPath(),
			Type:  it.GetType(),
			Token: it.GetSHA(),
			Size:  it.GetSize(),
		})
	}
	return entries, nil
}

// GitHub answers 409 when the supplied SHA is stale and 422 when it is
// missing for an existing file; both are precondition failures here.
func isPreconditionFailure(resp *github.Response) bool {
	if resp == nil {
		return false
	}
	return resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity
}
