package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 60 * time.Second

// OpenAI implements domain.Generator against OpenAI-compatible
// chat-completions APIs. Sampling parameters are fixed at construction;
// callers only supply the prompt.
type OpenAI struct {
	apiKey      string
	apiBase     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
	logger      *slog.Logger
}

type OpenAIConfig struct {
	APIKey      string
	APIBase     string
	Model       string
	MaxTokens   int
	Temperature float64
	Logger      *slog.Logger
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &OpenAI{
		apiKey:      cfg.APIKey,
		apiBase:     cfg.APIBase,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      SharedHTTPClient(defaultHTTPTimeout),
		logger:      cfg.Logger,
	}
}

func (o *OpenAI) Name() string { return "openai" }

type oaiRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	N           int          `json:"n,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponse struct {
	Choices []oaiChoice `json:"choices"`
	Usage   oaiUsage    `json:"usage"`
}

type oaiChoice struct {
	Message      oaiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type oaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generate sends the prompt as a single user message and returns the
// first choice's content.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	temp := o.temperature
	body := oaiRequest{
		Model:       o.model,
		Messages:    []oaiMessage{{Role: "user", Content: prompt}},
		MaxTokens:   o.maxTokens,
		N:           1,
		Temperature: &temp,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	buildReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", o.apiBase+"/chat/completions", bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
		return req, nil
	}

	start := time.Now()
	resp, err := DoWithRetry(ctx, o.client, ChatRetryPolicy, buildReq, o.logger)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai %d: %s", resp.StatusCode, string(respBody))
	}

	var oaiResp oaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaiResp); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	if len(oaiResp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices")
	}

	o.logger.Debug("model response received",
		"model", o.model,
		"latency_ms", time.Since(start).Milliseconds(),
		"total_tokens", oaiResp.Usage.TotalTokens,
	)

	return oaiResp.Choices[0].Message.Content, nil
}
