package mcpserver

import (
	"context"

	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the docs_search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or phrase to search the docs collection for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 3)"`
}

// SearchOutput is the output schema for the docs_search tool.
type SearchOutput struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// SearchResult is a single similarity-search hit.
type SearchResult struct {
	Content    string  `json:"content"`
	DocName    string  `json:"doc_name"`
	Title      string  `json:"title,omitempty"`
	Author     string  `json:"author,omitempty"`
	ChunkOrder string  `json:"chunk_order"`
	Score      float32 `json:"score"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "docs_search",
		Description: "Semantic search over the ingested documentation collection",
	}, s.handleSearch)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = config.SearchResultLimit
	}

	vector, err := s.embedder.GetEmbedding(ctx, input.Query)
	if err != nil {
		s.logger.Error("Embedding the query failed", "error", err)
		return nil, SearchOutput{}, err
	}

	hits, err := s.vectorDB.Search(ctx, vector, uint64(limit))
	if err != nil {
		s.logger.Error("Vector search failed", "error", err)
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResult, len(hits)),
		Count:   len(hits),
	}
	for i, hit := range hits {
		output.Results[i] = SearchResult{
			Content:    hit.Content,
			DocName:    hit.Metadata["doc_name"],
			Title:      hit.Metadata["title"],
			Author:     hit.Metadata["author"],
			ChunkOrder: hit.Metadata["chunk_order"],
			Score:      hit.Score,
		}
	}

	return nil, output, nil
}
