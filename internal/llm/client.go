package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Classified gateway failures. The underlying cause is preserved in the error
// text; callers branch on the sentinel via errors.Is and surface the rest.
var (
	ErrBackendUnavailable = errors.New("llm backend unavailable")
	ErrBackendTimeout     = errors.New("llm backend timeout")
	ErrBackendProtocol    = errors.New("llm backend protocol error")
)

// Config is the explicit gateway configuration; there is no process-wide
// default endpoint or model.
type Config struct {
	BaseURL string        // e.g. "http://localhost:11434"
	Model   string        // e.g. "llama3.1"
	Timeout time.Duration // per-call bound; zero means DefaultTimeout
}

const DefaultTimeout = 60 * time.Second

// Client issues non-streaming generate calls against an Ollama-compatible
// backend. It performs no retries; retry policy belongs to the caller.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends the prompt and returns the backend's generated text.
// The call is bounded by the configured timeout; on expiry the caller gets
// ErrBackendTimeout, on connection failure ErrBackendUnavailable, and
// ErrBackendProtocol when the backend answers without a usable response field.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:       c.cfg.Model,
		Prompt:      prompt,
		Stream:      false,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.cfg.BaseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(callCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrBackendProtocol, resp.StatusCode, string(body))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrBackendProtocol, err)
	}
	if out.Response == "" {
		return "", fmt.Errorf("%w: response field missing or empty", ErrBackendProtocol)
	}

	slog.DebugContext(ctx, "Generate call completed",
		"model", c.cfg.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_chars", len(out.Response))

	return out.Response, nil
}

// classifyTransportError separates timeouts from connection failures; both
// come back from http.Client.Do as a single *url.Error. Caller cancellation
// is not a backend failure and passes through unclassified.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("generate cancelled: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}
