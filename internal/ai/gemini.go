// Package ai integrates the generative-AI provider behind a small interface
// so the suggestion flow can be tested without network access.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Suggestion is the structured reply relayed to clients.
type Suggestion struct {
	Suggestion string `json:"suggestion"`
	Category   string `json:"category"`
	Priority   string `json:"priority"`
}

// DefaultSuggestion is returned whenever the provider cannot produce one, so
// the endpoint always yields a well-formed suggestion object.
func DefaultSuggestion() Suggestion {
	return Suggestion{
		Suggestion: "AI service is currently unavailable. Please try again later.",
		Category:   "General",
		Priority:   "medium",
	}
}

// Generator abstracts the provider API.
type Generator interface {
	ListModels(ctx context.Context) ([]string, error)
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
}

// Config configures the Gemini HTTP client.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiClient calls the Google generative language REST API.
type GeminiClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewGeminiClient builds a client; HTTPClient defaults to http.DefaultClient.
func NewGeminiClient(cfg Config) *GeminiClient {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
	}
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ListModels returns the model names this key can use for content generation.
func (c *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	if c.apiKey == "" {
		return nil, errors.New("api key not configured")
	}

	url := fmt.Sprintf("%s/v1beta/models?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		return nil, fmt.Errorf("list models: status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}

	var payload struct {
		Models []struct {
			Name                       string   `json:"name"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(payload.Models))
	for _, m := range payload.Models {
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				models = append(models, strings.TrimPrefix(m.Name, "models/"))
				break
			}
		}
	}
	return models, nil
}

// GenerateContent sends a prompt to the given model and returns its raw text reply.
func (c *GeminiClient) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("api key not configured")
	}

	reqBody, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		return "", fmt.Errorf("generate content: status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}

	var payload struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	if len(payload.Candidates) == 0 {
		return "", errors.New("generate content: empty response")
	}

	var text strings.Builder
	for _, part := range payload.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// SelectModel picks the preferred model from the available list: the fastest
// "flash" variant first, then "pro", then the first listed.
func SelectModel(models []string, fallback string) string {
	for _, m := range models {
		if strings.Contains(m, "flash") {
			return m
		}
	}
	for _, m := range models {
		if strings.Contains(m, "pro") {
			return m
		}
	}
	if len(models) > 0 {
		return models[0]
	}
	return fallback
}

// DetectModel resolves the model to use at startup. Any listing failure falls
// back to the configured default.
func DetectModel(ctx context.Context, g Generator, fallback string, logger *zap.Logger) string {
	models, err := g.ListModels(ctx)
	if err != nil {
		logger.Warn("model auto-detection failed, using default",
			zap.String("model", fallback), zap.Error(err))
		return fallback
	}
	model := SelectModel(models, fallback)
	logger.Info("selected generation model", zap.String("model", model), zap.Int("available", len(models)))
	return model
}
