// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only library tools over stdio transport. Mutations stay
// behind the HTTP access gate.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/paokel/novelhub/internal/bookstore"
	"github.com/paokel/novelhub/internal/catalog"
)

// Server wraps the MCP server with library tools.
type Server struct {
	mcp     *server.MCPServer
	books   *bookstore.Store
	builder *catalog.Builder
}

// New creates an MCP server with all tools registered.
func New(books *bookstore.Store, builder *catalog.Builder) *Server {
	s := &Server{books: books, builder: builder}

	s.mcp = server.NewMCPServer(
		"Novelhub",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List all books in the library with title, author, slug, rating and tags."),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("get_book",
		mcp.WithDescription("Read the full metadata record of one book."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Book slug (e.g. cafe-noir)")),
	), s.getBook)

	s.mcp.AddTool(mcp.NewTool("list_chapters",
		mcp.WithDescription("List the chapter files of a book in repository order."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Book slug")),
	), s.listChapters)

	s.mcp.AddTool(mcp.NewTool("read_chapter",
		mcp.WithDescription("Read the markdown content of one chapter."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Book slug")),
		mcp.WithString("chapter", mcp.Required(), mcp.Description("Chapter slug (filename without .md)")),
	), s.readChapter)

	s.mcp.AddTool(mcp.NewTool("library_index",
		mcp.WithDescription("Build the public library index document (books with resolved chapters)."),
	), s.libraryIndex)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listBooks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(books, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	book, err := s.books.GetBook(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("book not found: %s", slug)), nil
	}
	out, _ := json.MarshalIndent(book, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listChapters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chapters, err := s.books.ListChapters(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(chapters, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chapter, err := req.RequireString("chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.books.ReadChapter(ctx, slug, chapter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chapter not found: %s/%s", slug, chapter)), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

func (s *Server) libraryIndex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, _ := s.builder.Build(ctx)
	out, _ := json.MarshalIndent(idx, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
