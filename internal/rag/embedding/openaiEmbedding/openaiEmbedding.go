package openaiEmbedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/DocsRAG/internal/config"
	"github.com/akolanti/DocsRAG/internal/customHttpClient"
	"github.com/akolanti/DocsRAG/internal/rag/embedding"
	"github.com/akolanti/DocsRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

// the api caps a single embeddings request at 2048 inputs
const maxInputsPerRequest = 2048

type client struct {
	openAI *openai.Client
	model  string
}

func newOpenAIEmbedder(apikey string, modelName string) {
	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.GetPooledClient()),
	)
	embeddingClient = &client{
		openAI: &c,
		model:  modelName,
	}
	logger.Debug("OpenAI Embedding model name: " + modelName)
	logger.Info("OpenAI Embedding client created")
}

func GetOpenAIEmbeddingClient(modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("Empty OpenAI api key")
			return
		}
		newOpenAIEmbedder(apikey, modelName)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{openAI: embeddingClient.openAI, model: embeddingClient.model}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.doCall(ctx, []string{query})
	if err != nil {
		log.Error("Error getting Embedding from OpenAI", "error", err.Error())
		return nil, err
	}
	return res[0], nil
}

// BatchEmbedding embeds the chunks in request-sized slices. The sdk already
// retries transient failures and rate limits with its own backoff, so there is
// no extra retry loop here.
func (c *client) BatchEmbedding(ctx context.Context, chunks []string, isHugeDataSet bool) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var results [][]float32
	for i := 0; i < len(chunks); i += maxInputsPerRequest {
		end := i + maxInputsPerRequest
		if end > len(chunks) {
			end = len(chunks)
		}

		log.Debug("Starting embedding call", "inputs", end-i)
		vectors, err := c.doCall(ctx, chunks[i:end])
		if err != nil {
			log.Error("Error getting Embeddings from OpenAI", "error", err.Error())
			return nil, err
		}
		results = append(results, vectors...)
	}
	return results, nil
}

func (c *client) doCall(ctx context.Context, inputs []string) ([][]float32, error) {
	res, err := c.openAI.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(config.EmbeddingOutputDimensionality)),
	})
	if err != nil {
		return nil, err
	}
	if len(res.Data) != len(inputs) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(res.Data), len(inputs))
	}

	vectors := make([][]float32, len(res.Data))
	for _, d := range res.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}
