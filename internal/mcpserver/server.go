// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the renderers and the record mirror over stdio.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/terminalart/internal/artifact"
	"github.com/starford/terminalart/internal/mirror"
	"github.com/starford/terminalart/internal/render"
)

const contractURI = "terminalart://layout"

// Searcher is implemented by ledger backends that support text search.
type Searcher interface {
	Search(query string, limit int) ([]mirror.SearchResult, error)
}

// Server wraps the MCP server with the terminalart tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *artifact.Service
	search Searcher
}

// New creates a new MCP server with all tools registered. search may be
// nil, in which case search_records reports that search is unavailable.
func New(svc *artifact.Service, search Searcher) *Server {
	s := &Server{svc: svc, search: search}

	s.mcp = server.NewMCPServer(
		"terminalart",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("render_preview",
		mcp.WithDescription("Render a message, or the sample feed, without reading the ledger. "+
			"Returns SVG markup, or an image for format=png."),
		mcp.WithString("type", mcp.Description("message (default) or feed")),
		mcp.WithString("username", mcp.Description("Author label, default anon")),
		mcp.WithString("text", mcp.Description("Message text")),
		mcp.WithNumber("timestamp", mcp.Description("Unix seconds, default now")),
		mcp.WithString("color", mcp.Description("Label color #rrggbb")),
		mcp.WithString("format", mcp.Description("svg (default) or png")),
	), s.renderPreview)

	s.mcp.AddTool(mcp.NewTool("render_artifact",
		mcp.WithDescription("Render a minted record. Read the layout contract via the "+
			contractURI+" resource to pick a view."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Record id")),
		mcp.WithString("view", mcp.Description("artifact (default), receipt, window or compact")),
		mcp.WithString("format", mcp.Description("svg (default) or png")),
	), s.renderArtifact)

	s.mcp.AddTool(mcp.NewTool("assemble_window",
		mcp.WithDescription("List the records around a target id, ascending, with normalized colors and formatted timestamps."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Target record id")),
		mcp.WithNumber("half_width", mcp.Description("Neighbours on each side, default 3")),
	), s.assembleWindow)

	s.mcp.AddTool(mcp.NewTool("get_metadata",
		mcp.WithDescription("Return the token metadata of a record."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Record id")),
	), s.getMetadata)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Full-text search through record usernames and text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchRecords)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Layout Contract",
			mcp.WithResourceDescription("How records are normalized, wrapped and laid out."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLayoutResource,
	)

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

func (s *Server) renderPreview(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, ok := render.ParseFormat(optString(req, "format"))
	if !ok {
		return mcp.NewToolResultError("format must be svg or png"), nil
	}

	var (
		doc artifact.Document
		err error
	)
	if optString(req, "type") == "feed" {
		doc, err = s.svc.PreviewFeed(nil, format)
	} else {
		ts, _ := req.RequireFloat("timestamp")
		doc, err = s.svc.PreviewMessage(artifact.Message{
			Username:  optString(req, "username"),
			Text:      optString(req, "text"),
			Timestamp: int64(ts),
			Color:     optString(req, "color"),
		}, format)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return documentResult(doc), nil
}

func (s *Server) renderArtifact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view := render.ViewArtifact
	if name := optString(req, "view"); name != "" {
		v, ok := render.ParseView(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown view: %s", name)), nil
		}
		view = v
	}
	format, ok := render.ParseFormat(optString(req, "format"))
	if !ok {
		return mcp.NewToolResultError("format must be svg or png"), nil
	}

	doc, err := s.svc.Render(ctx, artifact.Request{View: view, Target: id, Format: format})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return documentResult(doc), nil
}

func (s *Server) assembleWindow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	halfWidth := render.WindowLarge.HalfWidth
	if hw, err := req.RequireFloat("half_width"); err == nil {
		halfWidth = int(hw)
	}

	w := s.svc.Window(ctx, id, halfWidth, nil)
	if !w.HasTarget() {
		return mcp.NewToolResultError(fmt.Sprintf("record %d not found", id)), nil
	}
	out, _ := json.MarshalIndent(w, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	md, err := s.svc.Metadata(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(md, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchRecords(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.search == nil {
		return mcp.NewToolResultError("search requires the mirror backend"), nil
	}
	results, err := s.search.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no records found"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readLayoutResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     LayoutContract,
		},
	}, nil
}

func documentResult(doc artifact.Document) *mcp.CallToolResult {
	if doc.ContentType == render.FormatPNG.ContentType() {
		return mcp.NewToolResultImage(
			fmt.Sprintf("%dx%d %s", doc.Width, doc.Height, doc.Mode),
			base64.StdEncoding.EncodeToString(doc.Body),
			doc.ContentType,
		)
	}
	return mcp.NewToolResultText(string(doc.Body))
}

func optString(req mcp.CallToolRequest, key string) string {
	v, err := req.RequireString(key)
	if err != nil {
		return ""
	}
	return v
}

func requireID(req mcp.CallToolRequest, key string) (uint64, error) {
	v, err := req.RequireFloat(key)
	if err != nil {
		return 0, err
	}
	if v < 1 || v != float64(uint64(v)) {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return uint64(v), nil
}
