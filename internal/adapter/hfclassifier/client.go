// Package hfclassifier provides a client for a hosted text-classification
// model (Hugging Face inference API shape), used to categorize tasks.
package hfclassifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/progressor-app/progressor/internal/config"
	"github.com/progressor-app/progressor/internal/resilience"
)

// Client calls a hosted sequence-classification model.
type Client struct {
	baseURL    string
	token      string
	model      string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a new classification client from config.
func NewClient(cfg config.Classifier) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

type classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the highest-scoring category label for the text.
func (c *Client) Classify(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return "", fmt.Errorf("marshal input: %w", err)
	}

	data, err := c.doRequest(ctx, "/models/"+c.model, body)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}

	// The inference API nests results one level per input.
	var result [][]classification
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result) == 0 || len(result[0]) == 0 {
		return "", fmt.Errorf("empty classification response")
	}

	best := result[0][0]
	for _, cl := range result[0][1:] {
		if cl.Score > best.Score {
			best = cl
		}
	}
	return best.Label, nil
}

func (c *Client) doRequest(ctx context.Context, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("inference API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
