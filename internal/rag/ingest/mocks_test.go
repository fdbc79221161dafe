package ingest

import (
	"context"

	"github.com/akolanti/DocsRAG/internal/domain/docModel"
)

type mockEmbedder struct {
	OnBatchEmbedding func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks, isHuge)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

type mockVectorDB struct {
	OnCreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []docModel.DocChunk, vectors [][]float32) error

	createdCollections []string
	upserted           []docModel.DocChunk
}

func (m *mockVectorDB) Search(ctx context.Context, v []float32, limit uint64) ([]docModel.SearchHit, error) {
	return nil, nil
}

func (m *mockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	return "", false, nil
}

func (m *mockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, answer string) error {
	return nil
}

func (m *mockVectorDB) CreateCollection(ctx context.Context, name string) error {
	m.createdCollections = append(m.createdCollections, name)
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *mockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []docModel.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		if err := m.OnUpsertBatch(ctx, name, chunks, vectors); err != nil {
			return err
		}
	}
	m.upserted = append(m.upserted, chunks...)
	return nil
}
