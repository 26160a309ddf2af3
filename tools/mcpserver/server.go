// Package mcpserver exposes the document tools over the Model Context
// Protocol, so external MCP clients can search and read the same index the
// answering agent uses.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sweetpotato0/docqa/tools"
)

// Index is the surface the MCP tools need from the document index.
type Index interface {
	tools.Searcher
	tools.LineSource
}

// New builds an MCP server exposing semantic_search and read_section over the
// given index.
func New(name, version string, ix Index) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
		Title:   "document question-answering tools",
	}, nil)

	addSearchTool(server, ix)
	addReadSectionTool(server, ix)

	return server
}

func addSearchTool(server *mcp.Server, ix Index) {
	type args struct {
		Query string `json:"query" jsonschema:"Search query text"`
		K     int    `json:"k,omitempty" jsonschema:"Number of chunks to return, defaults to 5"`
	}

	impl := tools.NewSemanticSearch(ix)
	mcp.AddTool(server, &mcp.Tool{
		Name:        impl.Name,
		Description: impl.Description,
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		callArgs := map[string]interface{}{"query": a.Query}
		if a.K > 0 {
			callArgs["k"] = a.K
		}
		out, err := impl.Execute(ctx, callArgs)
		if err != nil {
			return nil, nil, err
		}
		return textResult(out), nil, nil
	})
}

func addReadSectionTool(server *mcp.Server, ix Index) {
	type args struct {
		DocumentID string `json:"document_id" jsonschema:"Document ID to read"`
		StartLine  int    `json:"start_line,omitempty" jsonschema:"0-based first line to read"`
		NumLines   int    `json:"num_lines,omitempty" jsonschema:"How many lines to read, defaults to 50"`
	}

	impl := tools.NewReadSection(ix)
	mcp.AddTool(server, &mcp.Tool{
		Name:        impl.Name,
		Description: impl.Description,
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		callArgs := map[string]interface{}{
			"document_id": a.DocumentID,
			"start_line":  a.StartLine,
		}
		if a.NumLines > 0 {
			callArgs["num_lines"] = a.NumLines
		}
		out, err := impl.Execute(ctx, callArgs)
		if err != nil {
			return nil, nil, err
		}
		return textResult(out), nil, nil
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
