package provider

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// hostedDomains are API hosts that always require a key.
var hostedDomains = []string{
	"api.openai.com",
	"openrouter.ai",
	"api.groq.com",
	"api.together.xyz",
	"api.deepseek.com",
}

// Detect identifies the backend type from the host URL, probing the server
// when the URL gives no hint.
func Detect(ctx context.Context, host string) Type {
	host = strings.TrimSuffix(host, "/")
	hostLower := strings.ToLower(host)

	for _, domain := range hostedDomains {
		if strings.Contains(hostLower, domain) {
			return TypeOpenAI
		}
	}
	if strings.Contains(hostLower, "ollama") || strings.Contains(hostLower, ":11434") {
		return TypeOllama
	}
	if strings.Contains(hostLower, "vllm") {
		return TypeVLLM
	}
	if strings.Contains(hostLower, "llama") {
		return TypeLlamaCpp
	}

	// Ollama has a unique /api/tags endpoint
	if probeEndpoint(ctx, host, "/api/tags") {
		return TypeOllama
	}
	if probeEndpoint(ctx, host, "/v1/models") {
		return TypeVLLM
	}

	return TypeUnknown
}

// probeEndpoint checks if an endpoint responds. 401/403 still mean the
// endpoint exists.
func probeEndpoint(ctx context.Context, host, path string) bool {
	client := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 3 * time.Second,
			}).DialContext,
		},
	}

	url := strings.TrimSuffix(host, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 500 && resp.StatusCode != http.StatusNotFound
}

// ParseVendorConfig parses a vendor string from config into a Type.
// TypeUnknown means the backend should be auto-detected.
func ParseVendorConfig(vendor string) Type {
	switch strings.ToLower(strings.TrimSpace(vendor)) {
	case "openai", "hosted":
		return TypeOpenAI
	case "vllm":
		return TypeVLLM
	case "ollama":
		return TypeOllama
	case "llama.cpp", "llamacpp", "llama":
		return TypeLlamaCpp
	default:
		return TypeUnknown
	}
}
