package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatHandler serves an OpenAI-compatible /v1/chat/completions endpoint.
func chatHandler(t *testing.T, content string, check func(req map[string]any)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(req)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   req["model"],
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}
}

func TestNewOpenAIGenerator_Unavailable(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIConfig{Model: "", BaseURL: "http://localhost:8080/v1"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewOpenAIGenerator(OpenAIConfig{Model: "gpt-4o-mini"})
	assert.ErrorIs(t, err, ErrUnavailable, "hosted API without a credential")

	_, err = NewOpenAIGenerator(OpenAIConfig{Model: "llama3", BaseURL: "http://localhost:11434/v1"})
	assert.NoError(t, err, "self-hosted endpoints need no credential")
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	ts := httptest.NewServer(chatHandler(t, "1) Impacted products\n- Bike", func(req map[string]any) {
		assert.Equal(t, "google/flan-t5-base", req["model"])
		assert.EqualValues(t, 128, req["max_tokens"])
		assert.EqualValues(t, 0, req["seed"], "deterministic requests pin the seed")
		_, hasTemp := req["temperature"]
		assert.False(t, hasTemp, "zero temperature is the server default and is omitted")

		msgs := req["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		user := msgs[1].(map[string]any)
		assert.Equal(t, "user", user["role"])
		assert.Equal(t, "the prompt", user["content"])
	}))
	defer ts.Close()

	g, err := NewOpenAIGenerator(OpenAIConfig{BaseURL: ts.URL + "/v1/", Model: "google/flan-t5-base", Credential: "hf_test"})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "the prompt", Options{MaxOutputLength: 128, Deterministic: true})
	require.NoError(t, err)
	assert.Equal(t, "1) Impacted products\n- Bike", out)
}

func TestOpenAIGenerator_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"model is loading","type":"server_error"}}`))
	}))
	defer ts.Close()

	g, err := NewOpenAIGenerator(OpenAIConfig{BaseURL: ts.URL + "/v1", Model: "m"})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "p", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is loading")
}

func TestOpenAIGenerator_ThroughGenerator(t *testing.T) {
	ts := httptest.NewServer(chatHandler(t, "", nil))
	defer ts.Close()

	text, err := NewOpenAIGenerator(OpenAIConfig{BaseURL: ts.URL + "/v1", Model: "m"})
	require.NoError(t, err)

	out := New(text, Config{}).Summarize(context.Background(), "Acme", "EVIDENCE")
	assert.True(t, IsPlaceholder(out), "empty completions become a placeholder")
}
