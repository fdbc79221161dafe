package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/akolanti/DocsRAG/internal/mcpserver"
	"github.com/akolanti/DocsRAG/internal/rag/embedding"
	"github.com/akolanti/DocsRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocsRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocsRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocsRAG/pkg/logger_i"
)

var httpAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("mcp")

	flag.StringVar(&httpAddr, "http", "", "serve MCP over http on this address instead of stdio")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	go func() {
		gracefulShutdown := make(chan os.Signal, 1)
		signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
		<-gracefulShutdown
		closeExternalServices()
	}()

	vectorDB := qdrantDB.GetQdrantClient(serviceContext)
	embedder := pickEmbedder(serviceContext)
	if vectorDB == nil || embedder == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		os.Exit(1)
	}

	server, err := mcpserver.NewServer(embedder, vectorDB)
	if err != nil {
		logger.Error("Could not create MCP server", "error", err)
		os.Exit(1)
	}

	if httpAddr != "" {
		err = server.RunHTTP(serviceContext, httpAddr)
	} else {
		err = server.Run(serviceContext)
	}
	if err != nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}

func pickEmbedder(ctx context.Context) embedding.Embedder {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, key)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, key)
	}
	return nil
}
