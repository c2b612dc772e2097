package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrProviderUnavailable wraps any transport or remote failure from the
// embedding API. Callers use errors.Is to distinguish "the provider is
// down" from programming errors and degrade per item instead of aborting.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// Provider turns text into a fixed-length embedding vector. Embed is
// fallible by contract: hydration treats each failure as a skipped item.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
	Dimension() int
}

// Client calls an OpenAI-compatible embeddings endpoint (POST a model name
// and input text to {baseURL}/v1/embeddings, get float vectors back).
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

// NewClient creates an embedding API client. dimension must match the
// configured model's output size; every response is checked against it.
func NewClient(baseURL, apiKey, model string, dimension int) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ModelName returns the configured embedding model identifier.
func (c *Client) ModelName() string { return c.model }

// Dimension returns the configured embedding output size.
func (c *Client) Dimension() int { return c.dimension }

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed requests a vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embeddingRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	url := c.baseURL + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, body)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrProviderUnavailable, err)
	}

	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrProviderUnavailable)
	}

	vec := parsed.Data[0].Embedding
	if len(vec) != c.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), c.dimension)
	}

	return vec, nil
}
