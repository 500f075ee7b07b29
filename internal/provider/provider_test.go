package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVendorConfig(t *testing.T) {
	tests := map[string]Type{
		"":          TypeUnknown,
		"auto":      TypeUnknown,
		"OpenAI":    TypeOpenAI,
		" vllm ":    TypeVLLM,
		"ollama":    TypeOllama,
		"llamacpp":  TypeLlamaCpp,
		"llama.cpp": TypeLlamaCpp,
		"mystery":   TypeUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseVendorConfig(in), in)
	}
}

func TestDetect_FromURL(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, TypeOpenAI, Detect(ctx, "https://api.openai.com/v1"))
	assert.Equal(t, TypeOpenAI, Detect(ctx, "https://openrouter.ai/api"))
	assert.Equal(t, TypeOllama, Detect(ctx, "http://ollama.lab"))
	assert.Equal(t, TypeOllama, Detect(ctx, "http://10.0.0.2:11434"))
	assert.Equal(t, TypeVLLM, Detect(ctx, "http://vllm.lab/"))
	assert.Equal(t, TypeLlamaCpp, Detect(ctx, "http://llama-server.lab"))
}

func TestDetect_Probe(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.Write([]byte(`{"models":[]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer ollama.Close()

	openaiLike := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/models" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.NotFound(w, r)
	}))
	defer openaiLike.Close()

	nothing := httptest.NewServer(http.NotFoundHandler())
	defer nothing.Close()

	ctx := context.Background()
	assert.Equal(t, TypeOllama, Detect(ctx, ollama.URL))
	assert.Equal(t, TypeVLLM, Detect(ctx, openaiLike.URL))
	assert.Equal(t, TypeUnknown, Detect(ctx, nothing.URL))
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), "", "", "")
	require.Error(t, err)

	p, err := New(context.Background(), "https://api.openai.com/v1/", "", "")
	require.NoError(t, err)
	assert.Equal(t, TypeOpenAI, p.Info().Type)
	assert.Equal(t, "https://api.openai.com", p.Info().Host)
	assert.True(t, p.NeedsKey())

	p.SetAPIKey("sk-test")
	assert.False(t, p.NeedsKey())

	local, err := NewWithType(TypeUnknown, "http://localhost:8000", "")
	require.NoError(t, err)
	assert.Equal(t, TypeVLLM, local.Info().Type)
	assert.False(t, local.NeedsKey())
}

func TestDetectModels(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/v1/models":
			w.Write([]byte(`{"data":[{"id":"gpt-4o-mini"},{"id":"gpt-4o"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p, err := NewWithType(TypeOpenAI, srv.URL, "sk-test")
	require.NoError(t, err)

	models, err := p.DetectModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4o"}, models)
	assert.Equal(t, models, p.Info().Models)
	assert.Equal(t, "Bearer sk-test", auth)
}

func TestDetectModels_OllamaFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.Write([]byte(`{"models":[{"name":"qwen2.5:7b"}]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p, err := NewWithType(TypeOllama, srv.URL, "")
	require.NoError(t, err)

	models, err := p.DetectModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"qwen2.5:7b"}, models)

	vllm, err := NewWithType(TypeVLLM, srv.URL, "")
	require.NoError(t, err)
	_, err = vllm.DetectModels(context.Background())
	assert.Error(t, err)
}

func TestSelectModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"served-model"}]}`))
	}))
	defer srv.Close()

	p, err := NewWithType(TypeVLLM, srv.URL, "")
	require.NoError(t, err)

	model, err := p.SelectModel(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "served-model", model)
	assert.Equal(t, "served-model", p.Info().Model)

	model, err = p.SelectModel(context.Background(), "pinned")
	require.NoError(t, err)
	assert.Equal(t, "pinned", model)

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer empty.Close()

	p2, _ := NewWithType(TypeVLLM, empty.URL, "")
	_, err = p2.SelectModel(context.Background(), "")
	assert.Error(t, err)
}

func shortBackoff(t *testing.T) {
	saved := initialBackoff
	initialBackoff = time.Millisecond
	t.Cleanup(func() { initialBackoff = saved })
}

func TestSelectModel_RetriesServerErrors(t *testing.T) {
	shortBackoff(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[{"id":"warm-model"}]}`))
	}))
	defer srv.Close()

	p, err := NewWithType(TypeVLLM, srv.URL, "")
	require.NoError(t, err)

	model, err := p.SelectModel(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "warm-model", model)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSelectModel_ClientErrorsAreNotRetried(t *testing.T) {
	shortBackoff(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, err := NewWithType(TypeVLLM, srv.URL, "")
	require.NoError(t, err)

	_, err = p.SelectModel(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status: 401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(nil))
	assert.True(t, isRetryable(&statusError{Code: 502}))
	assert.False(t, isRetryable(fmt.Errorf("wrapped: %w", &statusError{Code: 404})))
	assert.True(t, isRetryable(errors.New("dial tcp 10.0.0.1:8000: connect: connection refused")))
	assert.False(t, isRetryable(errors.New("decode response: invalid character")))
}
