// Package provider resolves which chat-completion backend the agent talks to
// and builds OpenAI-compatible clients for it.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultConnectTimeout = 10 * time.Second
)

// Provider is a configured chat-completion backend.
type Provider struct {
	info       *Info
	httpClient *http.Client
	apiKey     string
}

// New creates a provider for host. If vendor is empty or "auto" the backend
// type is detected from the URL and, failing that, by probing the server.
func New(ctx context.Context, host, vendor, apiKey string) (*Provider, error) {
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}

	providerType := ParseVendorConfig(vendor)
	if providerType == TypeUnknown {
		providerType = Detect(ctx, host)
	}
	return NewWithType(providerType, host, apiKey)
}

// NewWithType creates a provider with an explicit type (no auto-detection).
// Unknown types are treated as a generic vLLM-style server, the most
// compatible choice.
func NewWithType(providerType Type, host, apiKey string) (*Provider, error) {
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if providerType == TypeUnknown {
		providerType = TypeVLLM
	}

	host = strings.TrimSuffix(strings.TrimSuffix(host, "/"), "/v1")

	return &Provider{
		info: &Info{
			Type:    providerType,
			Name:    providerType.DisplayName(),
			Host:    host,
			APIPath: "/v1",
		},
		httpClient: newHTTPClient(),
		apiKey:     apiKey,
	}, nil
}

// Info returns provider metadata
func (p *Provider) Info() *Info {
	return p.info
}

// SetModel sets the active model
func (p *Provider) SetModel(model string) {
	p.info.Model = model
}

// SetAPIKey replaces the key used by clients created afterwards.
func (p *Provider) SetAPIKey(key string) {
	p.apiKey = key
}

// NeedsKey reports whether the backend cannot be used without an API key.
func (p *Provider) NeedsKey() bool {
	return p.info.Type.Hosted() && p.apiKey == ""
}

// CreateClient returns an OpenAI-compatible client
func (p *Provider) CreateClient() *openai.Client {
	config := openai.DefaultConfig(p.apiKey)
	config.BaseURL = p.info.Host + p.info.APIPath
	config.HTTPClient = p.httpClient
	return openai.NewClientWithConfig(config)
}

// DetectModels lists the models the server offers. The OpenAI-compatible
// /v1/models endpoint is tried first; Ollama servers fall back to /api/tags.
func (p *Provider) DetectModels(ctx context.Context) ([]string, error) {
	models, err := p.detectModelsOpenAI(ctx)
	if err == nil && len(models) > 0 {
		return models, nil
	}
	if p.info.Type != TypeOllama {
		return models, err
	}
	return p.detectModelsOllama(ctx)
}

// SelectModel picks the model to use: the configured one when set, otherwise
// the first model the server reports.
func (p *Provider) SelectModel(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		p.SetModel(configured)
		return configured, nil
	}

	models, err := withRetry(ctx, "model detection", func() ([]string, error) {
		return p.DetectModels(ctx)
	})
	if err != nil {
		return "", fmt.Errorf("failed to detect model and no fallback configured: %w", err)
	}
	if len(models) == 0 {
		return "", fmt.Errorf("no models available and no fallback configured")
	}
	p.SetModel(models[0])
	return models[0], nil
}

func (p *Provider) detectModelsOpenAI(ctx context.Context) ([]string, error) {
	var modelsResp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := p.getJSON(ctx, p.info.Host+"/v1/models", &modelsResp); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		models = append(models, m.ID)
	}
	p.info.Models = models
	return models, nil
}

func (p *Provider) detectModelsOllama(ctx context.Context) ([]string, error) {
	var tagsResp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := p.getJSON(ctx, p.info.Host+"/api/tags", &tagsResp); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(tagsResp.Models))
	for _, m := range tagsResp.Models {
		models = append(models, m.Name)
	}
	p.info.Models = models
	return models, nil
}

func (p *Provider) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// newHTTPClient creates an HTTP client for LLM API requests. The request
// deadline comes from the caller's context.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   defaultConnectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
