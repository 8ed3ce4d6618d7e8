// Package hf provides a HuggingFace Inference API question-answering client.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client calls a hosted extractive question-answering model, e.g.
// deepset/roberta-base-squad2.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
}

// Config configures the inference client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a question-answering client using the provided
// configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if cfg.Model == "" {
		cfg.Model = "deepset/roberta-base-squad2"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
	}, nil
}

// Name returns the identifier of this answerer implementation.
func (c *Client) Name() string { return "hf" }

// Answer sends (question, context) to the model and returns the extracted
// answer span. Transient statuses (429, 5xx, model loading) are retried with
// backoff.
func (c *Client) Answer(ctx context.Context, question, contextText string) (string, error) {
	type inputs struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	}
	body := struct {
		Inputs inputs `json:"inputs"`
	}{Inputs: inputs{Question: question, Context: contextText}}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.model)
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		data, _ := json.Marshal(body)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() == nil && attempt < c.maxRetries {
				time.Sleep(retryDelay(attempt))
				continue
			}
			return "", err
		}

		// 503 while the hosted model is still loading is transient.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			if attempt < c.maxRetries {
				time.Sleep(retryDelay(attempt))
				continue
			}
			return "", fmt.Errorf("question answering failed: %s", resp.Status)
		}
		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return "", fmt.Errorf("question answering failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			if attempt < c.maxRetries {
				time.Sleep(retryDelay(attempt))
				continue
			}
			return "", err
		}
		var out struct {
			Answer string  `json:"answer"`
			Score  float64 `json:"score"`
		}
		if err := json.Unmarshal(payload, &out); err == nil && out.Answer != "" {
			return out.Answer, nil
		}
		if attempt < c.maxRetries {
			time.Sleep(retryDelay(attempt))
			continue
		}
		return "", errors.New("no answer returned")
	}
	return "", errors.New("no answer returned")
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
