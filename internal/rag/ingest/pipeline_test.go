package ingest

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocsRAG/internal/domain/docModel"
)

func writeCorpusFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPipelineRun_MissingRoot(t *testing.T) {
	vdb := &mockVectorDB{}
	p := NewPipeline(&mockEmbedder{}, vdb, PipelineConfig{
		SourceDir: filepath.Join(t.TempDir(), "does-not-exist"),
	})

	summary, err := p.Run(context.Background())

	if err == nil {
		t.Fatal("expected a fatal error for a missing source directory")
	}
	if summary.RecordsWritten != 0 || summary.FilesProcessed != 0 {
		t.Errorf("nothing should be written on a fatal error: %+v", summary)
	}
	if len(vdb.createdCollections) != 0 {
		t.Error("collection should not be touched when the root is missing")
	}
}

func TestPipelineRun_SourceIsAFile(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "single.md", "content")

	p := NewPipeline(&mockEmbedder{}, &mockVectorDB{}, PipelineConfig{
		SourceDir: filepath.Join(dir, "single.md"),
	})

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected an error when the source path is a plain file")
	}
}

func TestPipelineRun_EmptyDirectory(t *testing.T) {
	vdb := &mockVectorDB{}
	p := NewPipeline(&mockEmbedder{}, vdb, PipelineConfig{SourceDir: t.TempDir(), Collection: "docs"})

	summary, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("an empty corpus is a valid run: %v", err)
	}
	if summary.FilesProcessed != 0 || summary.FilesSkipped != 0 || summary.RecordsWritten != 0 {
		t.Errorf("want an all-zero summary, got %+v", summary)
	}
	if len(vdb.createdCollections) != 1 || vdb.createdCollections[0] != "docs" {
		t.Errorf("collection should still be initialized, got %v", vdb.createdCollections)
	}
}

func TestPipelineRun_CollectionInitFails(t *testing.T) {
	vdb := &mockVectorDB{
		OnCreateCollection: func(ctx context.Context, name string) error {
			return errors.New("connection refused")
		},
	}
	p := NewPipeline(&mockEmbedder{}, vdb, PipelineConfig{SourceDir: t.TempDir()})

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected a fatal error when the collection cannot be created")
	}
}

func TestPipelineRun_CountsAllChunks(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "short.md", "One small document.")
	writeCorpusFile(t, dir, "long.md", strings.Repeat("Semantic search needs chunks. ", 40))
	writeCorpusFile(t, dir, "notes.txt", "not markdown, must be ignored")

	vdb := &mockVectorDB{}
	p := NewPipeline(&mockEmbedder{}, vdb, PipelineConfig{
		SourceDir: dir,
		ChunkSize: 200,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.FilesProcessed != 2 {
		t.Errorf("want 2 markdown files processed, got %d", summary.FilesProcessed)
	}
	if summary.FilesSkipped != 0 {
		t.Errorf("want 0 skipped, got %d", summary.FilesSkipped)
	}
	if summary.RecordsWritten != len(vdb.upserted) {
		t.Errorf("summary says %d records, collection got %d", summary.RecordsWritten, len(vdb.upserted))
	}
	if summary.RecordsWritten < 3 {
		t.Errorf("the long file should split into several chunks, total got %d", summary.RecordsWritten)
	}
}

func TestPipelineRun_CountsPartialWrites(t *testing.T) {
	dir := t.TempDir()
	// Enough chunks for several upsert batches.
	writeCorpusFile(t, dir, "huge.md", strings.Repeat("Every batch counts toward the summary. ", 600))

	var calls int
	vdb := &mockVectorDB{
		OnUpsertBatch: func(ctx context.Context, name string, c []docModel.DocChunk, v [][]float32) error {
			calls++
			if calls > 1 {
				return errors.New("qdrant unavailable")
			}
			return nil
		},
	}
	p := NewPipeline(&mockEmbedder{}, vdb, PipelineConfig{
		SourceDir:    dir,
		ChunkSize:    100,
		ChunkOverlap: 10,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("a failing file must not abort the run: %v", err)
	}

	if summary.FilesSkipped != 1 || summary.FilesProcessed != 0 {
		t.Errorf("the file failed mid-ingest and counts as skipped, got %+v", summary)
	}
	if summary.RecordsWritten != len(vdb.upserted) {
		t.Errorf("summary says %d records, collection got %d", summary.RecordsWritten, len(vdb.upserted))
	}
	if summary.RecordsWritten == 0 {
		t.Error("the batch upserted before the failure should be counted")
	}
}

func TestPipelineRun_SkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "good.md", "Readable content.")
	// A dangling symlink passes enumeration but fails on read.
	if err := os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "broken.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	vdb := &mockVectorDB{}
	p := NewPipeline(&mockEmbedder{}, vdb, PipelineConfig{SourceDir: dir})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("a bad file must not abort the run: %v", err)
	}
	if summary.FilesProcessed != 1 || summary.FilesSkipped != 1 {
		t.Errorf("want 1 processed / 1 skipped, got %+v", summary)
	}
	if len(vdb.upserted) != 1 {
		t.Errorf("only the readable file should land in the collection, got %d", len(vdb.upserted))
	}
}

func TestPipelineRun_RecursiveWalk(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "top.md", "Top level doc.")
	sub := filepath.Join(dir, "concepts")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeCorpusFile(t, sub, "nested.md", "Nested doc.")

	flat := NewPipeline(&mockEmbedder{}, &mockVectorDB{}, PipelineConfig{SourceDir: dir})
	summary, err := flat.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.FilesProcessed != 1 {
		t.Errorf("non-recursive run should see 1 file, got %d", summary.FilesProcessed)
	}

	deep := NewPipeline(&mockEmbedder{}, &mockVectorDB{}, PipelineConfig{SourceDir: dir, Recursive: true})
	summary, err = deep.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.FilesProcessed != 2 {
		t.Errorf("recursive run should see 2 files, got %d", summary.FilesProcessed)
	}
}

func TestPipelineRun_WritesJSONLDump(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "a.md", "First doc.")
	writeCorpusFile(t, dir, "b.md", "Second doc.")
	dump := filepath.Join(t.TempDir(), "out.jsonl")

	p := NewPipeline(&mockEmbedder{}, &mockVectorDB{}, PipelineConfig{
		SourceDir:   dir,
		OutputJSONL: dump,
	})
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(dump)
	if err != nil {
		t.Fatalf("dump file missing: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("want one json line per document, got %d", lines)
	}
}

func TestPipelineRun_RerunsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "stable.md", strings.Repeat("Reruns must hit the same ids. ", 30))

	collect := func() []string {
		vdb := &mockVectorDB{}
		p := NewPipeline(&mockEmbedder{}, vdb, PipelineConfig{SourceDir: dir, ChunkSize: 200})
		if _, err := p.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		ids := make([]string, 0, len(vdb.upserted))
		for _, c := range vdb.upserted {
			ids = append(ids, c.ChunkId)
		}
		return ids
	}

	first := collect()
	second := collect()

	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("runs disagree on record count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("record %d changed id between runs: %s vs %s", i, first[i], second[i])
		}
	}
}
