package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/akolanti/DocsRAG/internal/rag/embedding"
	"github.com/akolanti/DocsRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocsRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocsRAG/internal/rag/ingest"
	"github.com/akolanti/DocsRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocsRAG/pkg/logger_i"
)

var (
	sourceDir   string
	collection  string
	outputJSONL string
	chunkSize   int
	overlap     int
	recursive   bool
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("ingest")

	//config
	flag.StringVar(&sourceDir, "source", config.IngestSourceDir, "directory with the markdown corpus")
	flag.StringVar(&collection, "collection", config.EmbeddingDBName, "target vector collection")
	flag.StringVar(&outputJSONL, "output", config.IngestOutputJSONL, "jsonl dump of the parsed documents, empty disables it")
	flag.IntVar(&chunkSize, "chunk-size", config.ChunkSizeLimit, "max chunk length in characters")
	flag.IntVar(&overlap, "overlap", config.ChunkOverlap, "characters shared between consecutive chunks")
	flag.BoolVar(&recursive, "recursive", false, "walk subdirectories too")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	vectorDB := qdrantDB.GetQdrantClient(serviceContext)
	if vectorDB == nil {
		logger.Error("Vector DB failed to initialize. Shutting down.")
		os.Exit(1)
	}

	embedder, modelName := pickEmbedder(serviceContext)
	if embedder == nil {
		logger.Error("No embedding provider available. Set OPENAI_API_KEY or GEMINI_API_KEY.")
		os.Exit(1)
	}

	pipeline := ingest.NewPipeline(embedder, vectorDB, ingest.PipelineConfig{
		SourceDir:      sourceDir,
		Collection:     collection,
		ChunkSize:      chunkSize,
		ChunkOverlap:   overlap,
		Recursive:      recursive,
		OutputJSONL:    outputJSONL,
		EmbeddingModel: modelName,
	})

	summary, err := pipeline.Run(serviceContext)
	if err != nil {
		logger.Error("Ingestion run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Ingestion complete: %d files processed, %d files skipped, %d records written to %q\n",
		summary.FilesProcessed, summary.FilesSkipped, summary.RecordsWritten, collection)
}

// pickEmbedder prefers OpenAI (the model the docs collection was built with)
// and falls back to the Gemini embedder when only a Gemini key is around.
func pickEmbedder(ctx context.Context) (embedding.Embedder, string) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, key), config.OpenAIEmbeddingModel
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, key), config.GoogleEmbeddingModel
	}
	return nil, ""
}
