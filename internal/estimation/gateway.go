// internal/estimation/gateway.go

// Package estimation talks to the completion gateway that turns meal text or
// photos into nutrition estimates.
package estimation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"macro-log/internal/logger"
	"macro-log/internal/models"
)

type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GatewayClient calls the OpenRouter gateway through the MCP proxy.
type GatewayClient struct {
	httpClient *http.Client
	proxyURL   string
	apiKey     string
	model      string
	log        *logger.Logger
}

func NewGatewayClient(cfg Config, log *logger.Logger) *GatewayClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &GatewayClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		proxyURL:   cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		log:        log.Named("estimation"),
	}
}

// EstimateFromText estimates a typed meal description.
func (c *GatewayClient) EstimateFromText(ctx context.Context, req models.TextEstimationRequest) (*models.EstimationResult, error) {
	messages := []map[string]interface{}{
		{"role": "user", "content": textPrompt(req.Description)},
	}
	content, err := c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return parseResult(content, false)
}

// EstimateFromImage estimates a photographed meal. When no food is visible
// it returns the not-food sentinel rather than an error.
func (c *GatewayClient) EstimateFromImage(ctx context.Context, req models.ImageEstimationRequest) (*models.EstimationResult, error) {
	messages := []map[string]interface{}{
		{
			"role": "user",
			"content": []map[string]interface{}{
				{"type": "text", "text": imagePrompt(req.Title, req.Description)},
				{"type": "image_url", "image_url": map[string]string{"url": req.ImageRef}},
			},
		},
	}
	content, err := c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return parseResult(content, true)
}

func (c *GatewayClient) complete(ctx context.Context, messages []map[string]interface{}) (string, error) {
	completionRequest := map[string]interface{}{
		"model":         c.model,
		"system_prompt": systemPrompt,
		"messages":      messages,
		"max_tokens":    2000,
		"temperature":   0.1,
	}
	start := time.Now()
	text, err := c.callGateway(ctx, "create_completion", completionRequest)
	if err != nil {
		c.log.Warn("gateway call failed", "error", err, "elapsed", time.Since(start))
		return "", err
	}
	c.log.Debug("gateway call finished", "elapsed", time.Since(start), "bytes", len(text))

	// The gateway wraps the completion as {"content": "..."}; accept a bare
	// completion too.
	if gjson.Valid(text) {
		if content := gjson.Get(text, "content"); content.Type == gjson.String {
			return content.String(), nil
		}
	}
	return text, nil
}

func (c *GatewayClient) callGateway(ctx context.Context, toolName string, args interface{}) (string, error) {
	url := fmt.Sprintf("%s/openrouter-gateway", c.proxyURL)

	requestData := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", &models.EstimationFailure{Kind: models.FailureParse, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &models.EstimationFailure{Kind: models.FailureNetwork, Err: fmt.Errorf("failed to create HTTP request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &models.EstimationFailure{Kind: models.FailureNetwork, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.EstimationFailure{Kind: models.FailureNetwork, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &models.EstimationFailure{Kind: models.FailureStatus,
			Err: fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))}
	}
	if !gjson.ValidBytes(body) {
		return "", &models.EstimationFailure{Kind: models.FailureParse, Err: errors.New("gateway returned invalid JSON")}
	}
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return "", &models.EstimationFailure{Kind: models.FailureStatus, Err: fmt.Errorf("gateway error: %s", msg.String())}
	}
	text := gjson.GetBytes(body, "result.content.0.text")
	if text.Type != gjson.String {
		return "", &models.EstimationFailure{Kind: models.FailureParse, Err: errors.New("unexpected response format")}
	}
	return text.String(), nil
}
