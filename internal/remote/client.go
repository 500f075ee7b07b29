// Package remote relays commands to a peer Nexus instance over HTTP and
// implements the peer side of that exchange.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tara-vision/nexus/internal/logger"
)

const (
	defaultTimeout = 10 * time.Second
	// DefaultURL is used when no remote endpoint has been configured.
	DefaultURL = "http://127.0.0.1:8080"
	// NoOutput is returned when the peer answers without an output field.
	NoOutput = "[No Output]"
)

// ExecuteRequest is the body of POST /execute.
type ExecuteRequest struct {
	Command string `json:"command"`
}

// ExecuteResponse is the peer's answer. Output is a pointer so an absent
// field can be told apart from an empty one.
type ExecuteResponse struct {
	Output   *string `json:"output,omitempty"`
	Error    string  `json:"error,omitempty"`
	ExitCode *int    `json:"returncode,omitempty"`
}

// Client sends commands to a remote peer.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a client with the given request timeout, or the default
// when timeout is zero.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:    4,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

// Run executes command on the peer at baseURL and returns its output. All
// failures are reported as "Error: ..." text so the caller can hand them to
// the model like any other tool result.
func (c *Client) Run(ctx context.Context, baseURL, command string) string {
	out, err := c.execute(ctx, baseURL, command)
	if err != nil {
		logger.Warn("remote execution failed", "url", baseURL, "error", err)
		return "Error: " + err.Error()
	}
	return out
}

func (c *Client) execute(ctx context.Context, baseURL, command string) (string, error) {
	body, err := json.Marshal(ExecuteRequest{Command: command})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := strings.TrimSuffix(baseURL, "/") + "/execute"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("connecting to remote server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("Server responded with status %d", resp.StatusCode)
	}

	var payload ExecuteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	switch {
	case payload.Output != nil && *payload.Output != "":
		return *payload.Output, nil
	case payload.Error != "":
		return "", fmt.Errorf("remote: %s", payload.Error)
	case payload.ExitCode != nil && *payload.ExitCode != 0:
		return fmt.Sprintf("Error: Command exited with code %d", *payload.ExitCode), nil
	default:
		return NoOutput, nil
	}
}
