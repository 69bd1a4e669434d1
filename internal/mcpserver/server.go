// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Briefly tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/briefservice"
	"github.com/bryanpdl/briefly/internal/generator"
	"github.com/bryanpdl/briefly/internal/identity"
	"github.com/bryanpdl/briefly/internal/inline"
	"github.com/bryanpdl/briefly/internal/upload"
)

const formatURI = "briefly://brief-format"

// Server wraps the MCP server with Briefly tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *briefservice.Service
	uploads *upload.Store
	caller  identity.Principal
}

// New creates a new MCP server with all Briefly tools registered. Paid tools run
// as caller; uploads may be nil, in which case upload_reference is not offered.
func New(svc *briefservice.Service, uploads *upload.Store, caller identity.Principal) *Server {
	s := &Server{svc: svc, uploads: uploads, caller: caller}

	s.mcp = server.NewMCPServer(
		"Briefly",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_brief",
		mcp.WithDescription("Split brief text into ordered sections."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Brief text with 'Heading:' lines")),
		mcp.WithString("mode", mcp.Description("Content mode: trimmed (default) or raw")),
	), s.parseBrief)

	s.mcp.AddTool(mcp.NewTool("render_content",
		mcp.WithDescription("Render one section's content into text, link and image nodes."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Section content")),
	), s.renderContent)

	s.mcp.AddTool(mcp.NewTool("assemble_sections",
		mcp.WithDescription("Join sections back into brief text."),
		mcp.WithString("sections", mcp.Required(), mcp.Description(`JSON array of {"title","content"} objects`)),
	), s.assembleSections)

	s.mcp.AddTool(mcp.NewTool("generate_brief",
		mcp.WithDescription("Generate a new draft brief from a project form. "+
			"Read the brief format first via the get_brief_format tool or the "+formatURI+" resource."),
		mcp.WithString("form", mcp.Required(), mcp.Description(`JSON form: {"projectType","projectName","goals","deadline","budget","budgetBreakdown","references"}`)),
	), s.generateBrief)

	s.mcp.AddTool(mcp.NewTool("regenerate_section",
		mcp.WithDescription("Rewrite one section of a draft, leaving the others untouched."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Draft ID")),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section title, e.g. Budget:")),
	), s.regenerateSection)

	s.mcp.AddTool(mcp.NewTool("publish_brief",
		mcp.WithDescription("Publish a draft under a public link."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Draft ID")),
	), s.publishBrief)

	s.mcp.AddTool(mcp.NewTool("fetch_brief",
		mcp.WithDescription("Read a published brief by its public slug."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Public slug")),
	), s.fetchBrief)

	s.mcp.AddTool(mcp.NewTool("get_brief_format",
		mcp.WithDescription("Returns the brief text format. "+
			"Call this before writing or editing brief text."),
	), s.getBriefFormat)

	if uploads != nil {
		s.mcp.AddTool(mcp.NewTool("upload_reference",
			mcp.WithDescription("Store a reference image from a data URI or http(s) URL. "+
				"Returns the hosted URL to cite in the References section."),
			mcp.WithString("url", mcp.Required(), mcp.Description("data:image/...;base64,... URI or http(s) URL")),
			mcp.WithString("filename", mcp.Description("Optional original filename")),
		), s.uploadReference)
	}

	// Resource: brief format.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Brief Format",
			mcp.WithResourceDescription("Plain-text brief layout that generated and edited briefs follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readBriefFormatResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) parseBrief(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := s.svc.Mode()
	if m, mErr := req.RequireString("mode"); mErr == nil {
		if mode, err = brief.ParseMode(m); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return jsonResult(brief.Parse(text, mode)), nil
}

func (s *Server) renderContent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(inline.Render(content)), nil
}

func (s *Server) assembleSections(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("sections")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var sections []brief.Section
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sections JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(brief.Assemble(sections)), nil
}

func (s *Server) generateBrief(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("form")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var form generator.FormData
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid form JSON: %v", err)), nil
	}
	d, err := s.svc.Generate(ctx, form)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d), nil
}

func (s *Server) regenerateSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Regenerate(ctx, s.caller, id, section)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d), nil
}

func (s *Server) publishBrief(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Publish(ctx, s.caller, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) fetchBrief(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.FetchPublished(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	return jsonResult(view), nil
}

func (s *Server) getBriefFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BriefFormatContract), nil
}

func (s *Server) readBriefFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     BriefFormatContract,
		},
	}, nil
}
