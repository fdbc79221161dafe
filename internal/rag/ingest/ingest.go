package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/akolanti/DocsRAG/internal/domain/docModel"
	"github.com/akolanti/DocsRAG/internal/domain/jobModel"
	"github.com/akolanti/DocsRAG/internal/rag/embedding"
	"github.com/akolanti/DocsRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocsRAG/pkg/logger_i"
)

var logger *logger_i.Logger

// ProcessDocumentIngestion handles the single-file ingest jobs that come in
// over the HTTP upload endpoint. Directory runs go through Pipeline instead.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) jobModel.Job {
	logger = logger_i.NewLogger("Document Ingestion ")
	logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	docName := job.JobPayload.IngestFileName
	docPath := job.JobPayload.IngestURL
	collection := job.JobPayload.IngestCollection
	if collection == "" {
		collection = config.EmbeddingDBName
	}

	logger.Debug("Processing document", "filename", docName, "path", docPath, "collection", collection)

	job.CurrentStep = jobModel.IngestProcessing
	err := vectorDatabase.CreateCollection(ctx, collection)
	if err != nil {
		logger.Error("Error creating collection", "error", err)
		job.Status = jobModel.JobStatusError
		return job
	}

	doc, err := loadDocument(docPath, docName)
	if err != nil {
		logger.Error("Error processing document", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Error extracting document content"
		return job
	}

	chunks := PrepareChunks(doc, config.ChunkSizeLimit, config.ChunkOverlap, config.OpenAIEmbeddingModel)

	logger.Debug("Processing document", "Number of chunks: ", len(chunks))
	_, err = BatchIngest(ctx, collection, chunks, vectorDatabase, e)

	if err != nil {
		job.Status = jobModel.JobStatusError
		logger.Error("Error processing document", "error", err)
		return job
	}
	err = os.Remove(job.JobPayload.IngestURL)
	if err != nil {
		logger.Error("Error removing file", "error", err)
	}
	job.Status = jobModel.JobStatusComplete
	return job
}

// loadDocument reads one file of any supported type into a Document.
func loadDocument(path string, name string) (docModel.Document, error) {
	docType := getDocType(path)
	logger.Debug("Processing document", "type", docType)

	switch docType {
	case docModel.MD:
		return ReadMarkdownDocument(path, name)

	case docModel.PDF, docModel.DOCX:
		var text string
		var err error
		if docType == docModel.PDF {
			text, err = extractPDF(path)
		} else {
			text, err = extractdocxTxtRtf(path)
		}
		if err != nil {
			return docModel.Document{}, err
		}
		return docModel.Document{
			Id:                  name,
			Name:                name,
			Content:             text,
			LastIngestTimestamp: time.Now(),
			ContentType:         docType,
		}, nil

	default:
		return docModel.Document{}, fmt.Errorf("unsupported content type for %s", path)
	}
}
