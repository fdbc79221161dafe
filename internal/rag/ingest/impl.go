package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/akolanti/DocsRAG/internal/domain/docModel"
	"github.com/akolanti/DocsRAG/internal/rag/embedding"
	"github.com/akolanti/DocsRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocsRAG/pkg/logger_i"
	"github.com/google/uuid"
)

//splitter

// Separators ordered from "best" to "worst" for semantic meaning
var chunkSeparators = []string{"\n\n", "\n", ". ", " ", ""}

func splitTextIntoChunks(text string, limit int, overlap int) []string {
	return splitRecursive(text, limit, overlap, chunkSeparators)
}

func splitRecursive(text string, limit int, overlap int, separators []string) []string {
	// If text is already small enough, just return it
	if len(text) <= limit {
		return []string{text}
	}

	splitChar := ""
	remaining := separators
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			splitChar = s
			remaining = separators[i+1:]
			break
		}
	}

	if splitChar == "" {
		// No separator left: cut into limit-sized windows, each sharing
		// its first `overlap` chars with the end of the previous window.
		return hardCut(text, limit, overlap)
	}

	parts := strings.Split(text, splitChar)

	var chunks []string
	var currentChunk strings.Builder
	carryOnly := true // buffer holds nothing but overlap carried from the last flush

	flush := func() {
		chunks = append(chunks, currentChunk.String())

		// Handle overlap: start the next chunk with the end of the previous one
		// (Simple version: take last N chars)
		overlapContent := ""
		if currentChunk.Len() > overlap {
			overlapContent = currentChunk.String()[currentChunk.Len()-overlap:]
		}

		currentChunk.Reset()
		currentChunk.WriteString(overlapContent)
		carryOnly = true
	}

	for _, part := range parts {
		// A single part above the limit gets re-split with the next
		// separator so no emitted chunk ever exceeds the limit.
		if len(part) > limit {
			if !carryOnly {
				chunks = append(chunks, currentChunk.String())
			}
			currentChunk.Reset()
			carryOnly = true
			chunks = append(chunks, splitRecursive(part, limit, overlap, remaining)...)
			continue
		}

		// If adding the part exceeds the limit
		if currentChunk.Len()+len(part)+len(splitChar) > limit {
			if !carryOnly {
				flush()
			}
			// The overlap itself can push a near-limit part back over;
			// drop it rather than emit an oversized chunk.
			if currentChunk.Len()+len(part)+len(splitChar) > limit {
				currentChunk.Reset()
				carryOnly = true
			}
		}

		if currentChunk.Len() > 0 {
			currentChunk.WriteString(splitChar)
		}
		currentChunk.WriteString(part)
		carryOnly = false
	}

	if !carryOnly {
		chunks = append(chunks, currentChunk.String())
	}

	return chunks
}

func hardCut(text string, limit int, overlap int) []string {
	step := limit - overlap
	if step <= 0 {
		step = limit
	}

	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + limit
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

func getDocType(docPath string) docModel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".md", ".markdown":
		return docModel.MD
	case ".pdf":
		return docModel.PDF
	case ".docx", ".txt", ".rtf":
		return docModel.DOCX
	default:
		return docModel.ERR
	}
}

// stableChunkId derives the same uuid for the same document+index on every
// run, which makes re-ingestion overwrite instead of append.
func stableChunkId(docName string, order int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(docName+"#"+strconv.Itoa(order))).String()
}

func PrepareChunks(doc docModel.Document, limit int, overlap int, embeddingModel string) []docModel.DocChunk {
	if strings.TrimSpace(doc.Content) == "" {
		return nil
	}

	stringChunks := splitTextIntoChunks(doc.Content, limit, overlap)

	allChunks := make([]docModel.DocChunk, 0, len(stringChunks))
	for i, text := range stringChunks {
		allChunks = append(allChunks, docModel.DocChunk{
			Doc:            doc,
			ChunkId:        stableChunkId(doc.Name, i),
			Chunk:          text,
			ChunkOrder:     i,
			EmbeddingModel: embeddingModel, //this can help us later if we want to have multiple embedding models
		})
	}

	return allChunks
}

// BatchIngest embeds and upserts the chunks in batches. It returns how many
// records actually landed in the collection; on a mid-run failure that count
// covers the batches upserted before the error.
func BatchIngest(ctx context.Context, collectionName string, chunks []docModel.DocChunk, vectorDB vectorDB.DataProcessor, embedder embedding.Embedder) (int, error) {
	logger = logger_i.NewLogger("Batch Ingestion ")
	logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	batchSize := config.IngestBatchSize
	isHugeDataSet := false

	if len(chunks) > 1000000 { //we only want to do this if there is a huge document
		isHugeDataSet = true
		logger.Debug("Is a huge dataset")
	}

	written := 0
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		currentBatch := chunks[i:end]

		// 1. Extract just the text strings for the embedder
		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Chunk
		}

		logger.Debug("Starting embedding call", "current batch length ", len(currentBatch))
		// vectors is [][]float32
		vectors, err := embedder.BatchEmbedding(ctx, texts, isHugeDataSet)
		if err != nil {
			return written, fmt.Errorf("embedding batch failed: %w", err)
		}

		// 4. Upsert the batch to Qdrant
		err = vectorDB.UpsertBatch(ctx, collectionName, currentBatch, vectors)
		if err != nil {
			return written, fmt.Errorf("upserting to qdrant failed: %w", err)
		}
		written += len(currentBatch)
	}

	return written, nil
}
