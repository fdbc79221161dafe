package rag

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/DocsRAG/internal/adapter/utils"
	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/akolanti/DocsRAG/internal/domain/jobModel"
	"github.com/akolanti/DocsRAG/internal/metrics"
	"github.com/akolanti/DocsRAG/internal/rag/embedding"
	"github.com/akolanti/DocsRAG/internal/rag/ingest"
	"github.com/akolanti/DocsRAG/internal/rag/llm"
	"github.com/akolanti/DocsRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocsRAG/pkg/logger_i"
)

/*
The worker only ever sees the Service interface - it has no idea a qdrant
collection, a gemini client or an openai embedder sit behind it. The private
struct holds those handles, and because methods live on (*service) the struct
satisfies the interface implicitly. NewService links the two, which is what
lets the rag_test package swap every external system for a function-field
mock without touching the worker.
*/

// Service is what the worker pool calls for both job types:
// answering a chat question over the docs collection, and ingesting a document into it.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(vector vectorDB.DataProcessor, llm llm.Provider, em embedding.Embedder) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llm,
		embedder:    em,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// ProcessRequest runs the retrieval chain for one chat question:
// embed the question, check the semantic answer cache, search the docs
// collection, then generate with the retrieved chunks as context.
func (s *service) ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY).(string), "JobId", job.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	job.CurrentStep = jobModel.RAGCall

	queryVector, err := s.executeEmbeddingStep(processContext, log, &job)
	if err != nil {
		return s.jobError(job, err, "EMBEDDING_FAILURE", true)
	}

	cachedAnswer, found := s.executeCacheCheckStep(ctx, log, &job, queryVector)
	if found {
		return returnOutput(job, cachedAnswer)
	}

	matches, err := s.executeVectorSearchStep(processContext, log, &job, queryVector)
	if err != nil {
		return s.jobError(job, err, "VECTOR_DB_FAILURE", true)
	}

	answer, err := s.executeLLMStep(processContext, log, &job, matches, messageHistory)
	if err != nil {
		return s.jobError(job, err, "LLM_GENERATION_FAILURE", true)
	}

	//cache save is off the request path, a miss here only costs a future cache hit
	go func() {
		if err := s.vectorDB.SaveToCache(ctx, utils.GetNewUUID(), queryVector, answer); err != nil {
			s.logger.Error("Failed to save to cache")
		}
	}()

	return returnOutput(job, answer)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()
	j := ingest.ProcessDocumentIngestion(ctx, job, s.embedder, s.vectorDB)
	if j.Status != jobModel.JobStatusComplete {
		return s.jobError(j, errors.New("ingest Document Failed"), "INGESTION_FAILURE", true)
	}
	return j
}
