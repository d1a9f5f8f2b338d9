package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarai/discovery-service/internal/config"
)

func newTestOllama(serverURL, model string) *OllamaClient {
	return NewOllamaClient(config.OllamaConfig{
		BaseURL:      serverURL,
		Model:        model,
		Timeout:      5 * time.Second,
		ProbeTimeout: 2 * time.Second,
	}, zerolog.Nop())
}

func TestOllamaAvailable(t *testing.T) {
	t.Run("model installed with tag suffix", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"models": []map[string]string{
					{"name": "llama3.2:latest"},
					{"name": "mistral:7b"},
				},
			})
		}))
		defer server.Close()

		client := newTestOllama(server.URL, "llama3.2")
		assert.True(t, client.Available(context.Background()))
	})

	t.Run("model missing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"models": []map[string]string{{"name": "mistral:7b"}},
			})
		}))
		defer server.Close()

		client := newTestOllama(server.URL, "llama3.2")
		assert.False(t, client.Available(context.Background()))
	})

	t.Run("server unreachable", func(t *testing.T) {
		client := newTestOllama("http://127.0.0.1:1", "llama3.2")
		assert.False(t, client.Available(context.Background()))
	})

	t.Run("non-200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := newTestOllama(server.URL, "llama3.2")
		assert.False(t, client.Available(context.Background()))
	})
}

func TestOllamaSummarize(t *testing.T) {
	t.Run("sends chat request and trims response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/chat", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var req ollamaChatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "llama3.2", req.Model)
			assert.False(t, req.Stream)
			assert.Equal(t, 0.3, req.Options.Temperature)
			assert.Equal(t, 300, req.Options.NumPredict)
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "user", req.Messages[0].Role)

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"message": map[string]string{"role": "assistant", "content": "  The paper shows X.  "},
			})
		}))
		defer server.Close()

		client := newTestOllama(server.URL, "llama3.2")
		summary, err := client.Summarize(context.Background(), "summarize this")
		require.NoError(t, err)
		assert.Equal(t, "The paper shows X.", summary)
	})

	t.Run("non-200 wraps a call error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestOllama(server.URL, "llama3.2")
		_, err := client.Summarize(context.Background(), "prompt")
		require.Error(t, err)

		var callErr *CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, "ollama", callErr.Provider)
		assert.False(t, callErr.Timeout)
	})

	t.Run("context cancellation surfaces as timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			time.Sleep(500 * time.Millisecond)
		}))
		defer server.Close()

		client := newTestOllama(server.URL, "llama3.2")
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Summarize(ctx, "prompt")
		require.Error(t, err)
		assert.True(t, IsTimeout(err))
	})
}

func TestStripModelTag(t *testing.T) {
	assert.Equal(t, "llama3.2", stripModelTag("llama3.2:latest"))
	assert.Equal(t, "llama3.2", stripModelTag("llama3.2"))
	assert.Equal(t, "mistral", stripModelTag("mistral:7b-instruct"))
}
