package ingest

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/akolanti/DocsRAG/internal/domain/docModel"
)

func testDoc(name string, content string) docModel.Document {
	return docModel.Document{
		Id:                  name,
		Name:                name,
		Content:             content,
		LastIngestTimestamp: time.Now(),
		ContentType:         docModel.MD,
	}
}

func TestSplitTextIntoChunks_ShortText(t *testing.T) {
	chunks := splitTextIntoChunks("a short document", 1000, 150)

	if len(chunks) != 1 {
		t.Fatalf("want exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "a short document" {
		t.Errorf("content changed: %q", chunks[0])
	}
}

func TestSplitTextIntoChunks_LongText(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	text := b.String()

	chunks := splitTextIntoChunks(text, 200, 50)

	if len(chunks) < 2 {
		t.Fatalf("expected the text to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if c == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
	// Every chunk after the first starts with the tail of the previous one.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-50:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not carry overlap from chunk %d", i, i-1)
		}
	}
}

func TestSplitTextIntoChunks_OversizedParagraph(t *testing.T) {
	// A single paragraph longer than the limit has no "\n\n" inside it, so
	// the splitter must fall through to the next separators to stay bounded.
	text := strings.Repeat("a", 1500) + "\n\n" + "tail paragraph"

	chunks := splitTextIntoChunks(text, 1000, 150)

	if len(chunks) < 2 {
		t.Fatalf("expected the oversized paragraph to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 1000 {
			t.Errorf("chunk %d has length %d, above the 1000 limit", i, len(c))
		}
	}
	joined := strings.Join(chunks, "")
	if !strings.Contains(joined, "tail paragraph") {
		t.Error("trailing paragraph lost during split")
	}
	if strings.Count(joined, "a") < 1500 {
		t.Errorf("oversized paragraph truncated: %d of 1500 chars survive", strings.Count(joined, "a"))
	}
}

func TestSplitTextIntoChunks_AllChunksBounded(t *testing.T) {
	texts := map[string]string{
		"no separators at all":  strings.Repeat("x", 3210),
		"single words":          strings.Repeat("word ", 900),
		"long lines":            strings.Repeat(strings.Repeat("y", 450)+"\n", 12),
		"sentences then a blob": strings.Repeat("A sentence here. ", 40) + strings.Repeat("z", 2500),
		"paragraphs of prose":   strings.Repeat(strings.Repeat("Some prose. ", 30)+"\n\n", 8),
	}
	for name, text := range texts {
		for i, c := range splitTextIntoChunks(text, 1000, 150) {
			if len(c) > 1000 {
				t.Errorf("%s: chunk %d has length %d, above the limit", name, i, len(c))
			}
		}
	}
}

func TestPrepareChunks_EmptyContent(t *testing.T) {
	if got := PrepareChunks(testDoc("empty.md", "   \n  "), 1000, 150, "test-model"); got != nil {
		t.Errorf("blank document should produce no chunks, got %d", len(got))
	}
}

func TestPrepareChunks_StableIds(t *testing.T) {
	doc := testDoc("agents.md", strings.Repeat("Agents call tools in a loop. ", 80))

	first := PrepareChunks(doc, 300, 50, "test-model")
	second := PrepareChunks(doc, 300, 50, "test-model")

	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("runs disagree on chunk count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ChunkId != second[i].ChunkId {
			t.Errorf("chunk %d id changed between runs: %s vs %s", i, first[i].ChunkId, second[i].ChunkId)
		}
		if first[i].ChunkOrder != i {
			t.Errorf("chunk %d has order %d", i, first[i].ChunkOrder)
		}
	}

	other := PrepareChunks(testDoc("other.md", doc.Content), 300, 50, "test-model")
	if other[0].ChunkId == first[0].ChunkId {
		t.Error("different documents share a chunk id")
	}
}

func TestBatchIngest_UpsertsEveryChunk(t *testing.T) {
	doc := testDoc("long.md", strings.Repeat("Planners decompose a goal into steps. ", 120))
	chunks := PrepareChunks(doc, 250, 40, "test-model")

	vdb := &mockVectorDB{}
	var embedded int
	emb := &mockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, texts []string, isHuge bool) ([][]float32, error) {
			embedded += len(texts)
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{float32(i)}
			}
			return vectors, nil
		},
	}

	written, err := BatchIngest(context.Background(), "docs", chunks, vdb, emb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embedded != len(chunks) {
		t.Errorf("embedded %d texts, want %d", embedded, len(chunks))
	}
	if len(vdb.upserted) != len(chunks) {
		t.Errorf("upserted %d chunks, want %d", len(vdb.upserted), len(chunks))
	}
	if written != len(chunks) {
		t.Errorf("reported %d records written, want %d", written, len(chunks))
	}
}

func TestBatchIngest_EmbeddingFailure(t *testing.T) {
	chunks := PrepareChunks(testDoc("a.md", "some content"), 1000, 150, "test-model")

	emb := &mockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, texts []string, isHuge bool) ([][]float32, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	vdb := &mockVectorDB{}

	written, err := BatchIngest(context.Background(), "docs", chunks, vdb, emb)
	if err == nil {
		t.Fatal("expected embedding failure to propagate")
	}
	if len(vdb.upserted) != 0 {
		t.Errorf("nothing should be upserted after an embedding failure, got %d", len(vdb.upserted))
	}
	if written != 0 {
		t.Errorf("reported %d records written, want 0", written)
	}
}

func TestBatchIngest_UpsertFailure(t *testing.T) {
	chunks := PrepareChunks(testDoc("a.md", "some content"), 1000, 150, "test-model")

	vdb := &mockVectorDB{
		OnUpsertBatch: func(ctx context.Context, name string, c []docModel.DocChunk, v [][]float32) error {
			return errors.New("disk full")
		},
	}

	if _, err := BatchIngest(context.Background(), "docs", chunks, vdb, &mockEmbedder{}); err == nil {
		t.Fatal("expected upsert failure to propagate")
	}
}

func TestBatchIngest_PartialWriteIsCounted(t *testing.T) {
	// Three batches worth of chunks; the second upsert fails, so only the
	// first batch should count as written.
	chunks := make([]docModel.DocChunk, config.IngestBatchSize*2+10)
	for i := range chunks {
		chunks[i] = docModel.DocChunk{ChunkId: strconv.Itoa(i), Chunk: "text", ChunkOrder: i}
	}

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

	written, err := BatchIngest(context.Background(), "docs", chunks, vdb, &mockEmbedder{})
	if err == nil {
		t.Fatal("expected the failing batch to surface an error")
	}
	if written != config.IngestBatchSize {
		t.Errorf("want the first batch (%d records) counted, got %d", config.IngestBatchSize, written)
	}
}

func TestGetDocType(t *testing.T) {
	cases := map[string]docModel.DocType{
		"notes.md":       docModel.MD,
		"NOTES.MARKDOWN": docModel.MD,
		"paper.pdf":      docModel.PDF,
		"report.docx":    docModel.DOCX,
		"plain.txt":      docModel.DOCX,
		"image.png":      docModel.ERR,
	}
	for path, want := range cases {
		if got := getDocType(path); got != want {
			t.Errorf("getDocType(%q) = %v, want %v", path, got, want)
		}
	}
}
