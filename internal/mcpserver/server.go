package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/akolanti/DocsRAG/internal/rag/embedding"
	"github.com/akolanti/DocsRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocsRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes the persisted docs collection to MCP clients. It is a pure
// consumer of the collection - ingestion happens in cmd/ingest or the HTTP api.
type Server struct {
	embedder embedding.Embedder
	vectorDB vectorDB.DataProcessor
	server   *mcp.Server
	logger   *logger_i.Logger
}

func NewServer(e embedding.Embedder, v vectorDB.DataProcessor) (*Server, error) {
	if e == nil || v == nil {
		return nil, errors.New("mcp server needs an embedder and a vector db")
	}

	impl := &mcp.Implementation{
		Name:    config.MCPServerName,
		Version: config.MCPVersion,
	}

	s := &Server{
		embedder: e,
		vectorDB: v,
		server:   mcp.NewServer(impl, nil),
		logger:   logger_i.NewLogger("MCP Server"),
	}
	s.registerTools()

	return s, nil
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP on addr.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		if err := httpServer.Shutdown(context.Background()); err != nil {
			s.logger.Error("MCP http shutdown failed", "error", err)
		}
	}()

	s.logger.Info("Serving MCP over http", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
