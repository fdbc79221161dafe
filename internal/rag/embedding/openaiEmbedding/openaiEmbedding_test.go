package openaiEmbedding

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/DocsRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// stubClient points the sdk at a local server returning the given body.
func stubClient(t *testing.T, body string) *client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	c := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL+"/"),
	)
	logger = logger_i.NewLogger("openai_embedding")
	return &client{openAI: &c, model: "text-embedding-3-small"}
}

func TestGetEmbedding_EmptyResponse(t *testing.T) {
	c := stubClient(t, `{"object":"list","data":[],"model":"text-embedding-3-small","usage":{"prompt_tokens":0,"total_tokens":0}}`)

	vec, err := c.GetEmbedding(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error when the provider returns no embeddings")
	}
	if vec != nil {
		t.Errorf("no vector should come back with an error, got %d dims", len(vec))
	}
}

func TestBatchEmbedding_ShortResponse(t *testing.T) {
	c := stubClient(t, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2]}],"model":"text-embedding-3-small","usage":{"prompt_tokens":2,"total_tokens":2}}`)

	_, err := c.BatchEmbedding(context.Background(), []string{"one", "two"}, false)
	if err == nil {
		t.Fatal("expected an error when the provider returns fewer embeddings than inputs")
	}
}
