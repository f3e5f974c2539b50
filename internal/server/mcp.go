package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/tuilog"
	"github.com/wethinkt/go-folio/internal/version"
)

// MCPServer offers the reader's position and navigation as MCP tools, so an
// agent can follow along or turn pages while someone reads.
type MCPServer struct {
	server *mcp.Server
	api    *Server
}

// NewMCPServer registers the reader tools against api's hub and navigator.
func NewMCPServer(api *Server) *MCPServer {
	ms := &MCPServer{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "folio",
			Version: version.Get(),
		}, nil),
		api: api,
	}

	mcp.AddTool(ms.server, &mcp.Tool{
		Name:        "get_position",
		Description: "Get the page the reader is on, the page count and whether a jump is in progress.",
	}, ms.handleGetPosition)

	mcp.AddTool(ms.server, &mcp.Tool{
		Name:        "navigate_to_page",
		Description: "Jump the reader to a 1-based page. The jump completes asynchronously; poll get_position to see it land.",
	}, ms.handleNavigateToPage)

	return ms
}

// Handler serves the tools over MCP's SSE transport.
func (ms *MCPServer) Handler() http.Handler {
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return ms.server }, nil)
}

// Server exposes the underlying MCP server, for in-process transports.
func (ms *MCPServer) Server() *mcp.Server { return ms.server }

// Tool input/output types

type getPositionInput struct{}

type navigateToPageInput struct {
	Page int `json:"page"`
}

type toolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type toolErrorOutput struct {
	Error toolError `json:"error"`
}

// Tool handlers

func (ms *MCPServer) handleGetPosition(ctx context.Context, req *mcp.CallToolRequest, _ getPositionInput) (*mcp.CallToolResult, any, error) {
	ev, ok := ms.api.current()
	if !ok {
		return toolErrorResult("no_document", "No document is open", nil)
	}
	return textResult(ev), ev, nil
}

func (ms *MCPServer) handleNavigateToPage(ctx context.Context, req *mcp.CallToolRequest, input navigateToPageInput) (*mcp.CallToolResult, any, error) {
	resp, err := ms.api.navigate(input.Page)
	switch {
	case errors.Is(err, errNoDocument):
		return toolErrorResult("no_document", "No document is open", nil)
	case errors.Is(err, pageview.ErrPageOutOfRange):
		return toolErrorResult("page_out_of_range", "page must be between 1 and the page count", nil)
	case err != nil:
		return toolErrorResult("navigate_failed", "The reader rejected the jump", err)
	}
	tuilog.Log.Debug("MCPServer.handleNavigateToPage", "page", input.Page)
	return textResult(resp), resp, nil
}

// toolErrorResult reports a failure inside the tool result, where the agent
// can read it, rather than as a protocol error.
func toolErrorResult(code, message string, cause error) (*mcp.CallToolResult, any, error) {
	out := toolErrorOutput{Error: toolError{Code: code, Message: message}}
	if cause != nil {
		out.Error.Details = cause.Error()
	}
	res := textResult(out)
	res.IsError = true
	return res, out, nil
}

func textResult(v any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(v)}},
	}
}

func formatJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
