package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/akolanti/DocsRAG/internal/domain/docModel"
	"github.com/akolanti/DocsRAG/internal/metrics"
	"github.com/akolanti/DocsRAG/internal/rag/embedding"
	"github.com/akolanti/DocsRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocsRAG/pkg/logger_i"
)

// PipelineConfig holds everything the directory pipeline needs to know.
// Zero values fall back to the documented defaults from the config package.
type PipelineConfig struct {
	SourceDir      string //root directory with the markdown corpus
	Collection     string //qdrant collection name
	ChunkSize      int    //max chunk length in characters
	ChunkOverlap   int    //characters shared between consecutive chunks
	Recursive      bool   //walk subdirectories too
	OutputJSONL    string //optional dump of the parsed documents, empty disables it
	EmbeddingModel string //recorded on every chunk
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.SourceDir == "" {
		c.SourceDir = config.IngestSourceDir
	}
	if c.Collection == "" {
		c.Collection = config.EmbeddingDBName
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = config.ChunkSizeLimit
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = config.ChunkOverlap
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = config.OpenAIEmbeddingModel
	}
	return c
}

// Summary is what a pipeline run reports back to the caller. RecordsWritten
// counts records that actually reached the collection, including batches
// upserted before a file failed mid-ingest.
type Summary struct {
	FilesProcessed int
	FilesSkipped   int
	RecordsWritten int
}

// Pipeline is the batch job that turns a directory of markdown files into
// embedded records in the vector collection. Clients are injected so tests can
// run it against fakes.
type Pipeline struct {
	embedder embedding.Embedder
	vectorDB vectorDB.DataProcessor
	cfg      PipelineConfig
	log      *logger_i.Logger
}

func NewPipeline(e embedding.Embedder, v vectorDB.DataProcessor, cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		embedder: e,
		vectorDB: v,
		cfg:      cfg.withDefaults(),
		log:      logger_i.NewLogger("Ingestion Pipeline"),
	}
}

// Run walks the source directory once. A missing root or a collection that
// cannot be initialized is fatal; everything that goes wrong with a single
// file is logged, counted as skipped and the run continues.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	info, err := os.Stat(p.cfg.SourceDir)
	if err != nil {
		return summary, fmt.Errorf("source directory %s is not readable: %w", p.cfg.SourceDir, err)
	}
	if !info.IsDir() {
		return summary, fmt.Errorf("source path %s is not a directory", p.cfg.SourceDir)
	}

	if err := p.vectorDB.CreateCollection(ctx, p.cfg.Collection); err != nil {
		return summary, fmt.Errorf("could not initialize collection %s: %w", p.cfg.Collection, err)
	}

	files, err := p.listMarkdownFiles()
	if err != nil {
		return summary, fmt.Errorf("could not enumerate %s: %w", p.cfg.SourceDir, err)
	}
	p.log.Info("Starting ingestion run", "sourceDir", p.cfg.SourceDir, "candidateFiles", len(files))

	var parsedDocs []docModel.Document
	for _, relName := range files {
		doc, written, err := p.ingestFile(ctx, relName)
		if written > 0 {
			summary.RecordsWritten += written
			metrics.AddRecordsIngested(written)
		}
		if err != nil {
			p.log.Error("Skipping file", "file", relName, "error", err)
			summary.FilesSkipped++
			continue
		}

		parsedDocs = append(parsedDocs, doc)
		summary.FilesProcessed++
	}

	if p.cfg.OutputJSONL != "" && len(parsedDocs) > 0 {
		if err := writeJSONLDump(p.cfg.OutputJSONL, parsedDocs); err != nil {
			//the collection already holds the records, a failed dump is not fatal
			p.log.Error("Could not write jsonl dump", "path", p.cfg.OutputJSONL, "error", err)
		}
	}

	p.log.Info("Ingestion run finished",
		"filesProcessed", summary.FilesProcessed,
		"filesSkipped", summary.FilesSkipped,
		"recordsWritten", summary.RecordsWritten)
	return summary, nil
}

func (p *Pipeline) ingestFile(ctx context.Context, relName string) (docModel.Document, int, error) {
	doc, err := ReadMarkdownDocument(filepath.Join(p.cfg.SourceDir, relName), relName)
	if err != nil {
		return docModel.Document{}, 0, err
	}

	chunks := PrepareChunks(doc, p.cfg.ChunkSize, p.cfg.ChunkOverlap, p.cfg.EmbeddingModel)
	p.log.Debug("Prepared chunks", "file", relName, "chunks", len(chunks))
	if len(chunks) == 0 {
		return doc, 0, nil
	}

	written, err := BatchIngest(ctx, p.cfg.Collection, chunks, p.vectorDB, p.embedder)
	if err != nil {
		return docModel.Document{}, written, err
	}
	return doc, written, nil
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

// listMarkdownFiles returns candidate file names relative to the source dir,
// top-level only unless Recursive is set.
func (p *Pipeline) listMarkdownFiles() ([]string, error) {
	var files []string

	if !p.cfg.Recursive {
		entries, err := os.ReadDir(p.cfg.SourceDir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && isMarkdown(entry.Name()) {
				files = append(files, entry.Name())
			}
		}
		return files, nil
	}

	err := filepath.WalkDir(p.cfg.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(p.cfg.SourceDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

// writeJSONLDump writes one compact json object per document, same shape the
// collection payload is built from. Useful for eyeballing what got ingested.
func writeJSONLDump(path string, docs []docModel.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return nil
}
