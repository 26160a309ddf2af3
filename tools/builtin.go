package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sweetpotato0/docqa/index"
)

// DefaultSearchK is the chunk count returned by the semantic search tool when
// the caller does not ask for a specific k.
const DefaultSearchK = 5

// DefaultReadLines is how many lines read_section returns by default.
const DefaultReadLines = 50

// DefaultObservationLimit caps how many characters of a tool result are fed
// back to the agent.
const DefaultObservationLimit = 500

// Truncate returns the prefix of s that fits within limit bytes. The cut
// never lands inside a multibyte rune, so the result can be up to three bytes
// under the limit.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = DefaultObservationLimit
	}
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Searcher is the chunk search surface of the index.
type Searcher interface {
	NearestChunks(ctx context.Context, query string, k int) ([]index.ChunkHit, error)
}

// LineSource resolves a document ID to its content lines.
type LineSource interface {
	Lines(id string) ([]string, error)
}

// NewSemanticSearch builds the vector search tool over the given index.
// Results are plain text observations: one chunk per block with its source
// document and distance, closest first.
func NewSemanticSearch(ix Searcher) *Tool {
	return &Tool{
		Name:        "semantic_search",
		Description: "Search the document index for chunks relevant to a query.",
		Parameters: []Parameter{
			{Name: "query", Type: "string", Description: "Search query text", Required: true},
			{Name: "k", Type: "number", Description: "Number of chunks to return", Default: DefaultSearchK},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			query, _ := args["query"].(string)
			if strings.TrimSpace(query) == "" {
				return "Error: query must be a non-empty string", nil
			}
			k := intArg(args, "k", DefaultSearchK)

			hits, err := ix.NearestChunks(ctx, query, k)
			if err != nil {
				return "", fmt.Errorf("semantic search: %w", err)
			}
			if len(hits) == 0 {
				return "No matching chunks found.", nil
			}

			var b strings.Builder
			for i, h := range hits {
				fmt.Fprintf(&b, "[%d] source=%s distance=%.4f\n%s\n", i+1, h.DocumentID, h.Distance, h.Text)
			}
			return strings.TrimRight(b.String(), "\n"), nil
		},
	}
}

// NewReadSection builds the bounded file reading tool. start_line is
// zero-based. Bad arguments come back as textual observations rather than
// errors so the agent can correct itself on the next step.
func NewReadSection(src LineSource) *Tool {
	return &Tool{
		Name:        "read_section",
		Description: "Read a bounded section of a document by line numbers.",
		Parameters: []Parameter{
			{Name: "document_id", Type: "string", Description: "Document ID to read", Required: true},
			{Name: "start_line", Type: "number", Description: "0-based first line to read", Default: 0},
			{Name: "num_lines", Type: "number", Description: "How many lines to read", Default: DefaultReadLines},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			docID, _ := args["document_id"].(string)
			if strings.TrimSpace(docID) == "" {
				return "Error: document_id must be a non-empty string", nil
			}
			startLine := intArg(args, "start_line", 0)
			numLines := intArg(args, "num_lines", DefaultReadLines)
			if startLine < 0 {
				return fmt.Sprintf("Error: start_line must be >= 0, got %d", startLine), nil
			}
			if numLines < 1 {
				return fmt.Sprintf("Error: num_lines must be >= 1, got %d", numLines), nil
			}

			lines, err := src.Lines(docID)
			if err != nil {
				return fmt.Sprintf("Error: document %q not found in the index", docID), nil
			}
			if startLine >= len(lines) {
				return fmt.Sprintf("Error: start_line %d exceeds file length (%d lines)", startLine, len(lines)), nil
			}
			end := startLine + numLines
			if end > len(lines) {
				end = len(lines)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%s lines %d-%d of %d:\n", docID, startLine, end-1, len(lines))
			for i := startLine; i < end; i++ {
				fmt.Fprintf(&b, "%d: %s\n", i, lines[i])
			}
			return strings.TrimRight(b.String(), "\n"), nil
		},
	}
}

func intArg(args map[string]interface{}, name string, def int) int {
	v, ok := args[name]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return def
	}
}
