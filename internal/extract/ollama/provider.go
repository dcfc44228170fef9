// Package ollama implements models.Extractor against a local Ollama server
// using JSON mode; local models have no tool calling, so the schema is
// spelled out in the prompt instead.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/meetscribe/meetscribe/internal/config"
	"github.com/meetscribe/meetscribe/pkg/models"
)

const systemPrompt = `You are an AI assistant that extracts action items from meeting transcripts.

Respond with a single JSON object and nothing else, in exactly this shape:
{"items": [{"action": "...", "owner": "...", "deadline": "...", "priority": "high|medium|low"}], "highlights": ["..."]}

Extract all tasks, commitments, and action items mentioned in the transcript. For each, identify the action, the responsible owner, the deadline, and a priority of high, medium, or low. Include 2-4 short highlight sentences. Be thorough and extract all actionable items, even if some information is implicit.`

// Provider implements models.Extractor using Ollama.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *Provider) Name() string { return "ollama" }

func (p *Provider) Extract(ctx context.Context, transcript string) (models.ExtractionResult, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: transcript},
		},
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("marshal extraction request: %w", err)
	}

	u := fmt.Sprintf("%s/api/chat", strings.TrimSuffix(p.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.ExtractionResult{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return models.ExtractionResult{}, fmt.Errorf("%w: status %d: %s",
			models.ErrProviderUnavailable, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return models.ExtractionResult{}, fmt.Errorf("%w: decode response: %v", models.ErrMalformedResponse, err)
	}

	var result models.ExtractionResult
	if err := json.Unmarshal([]byte(chatResp.Message.Content), &result); err != nil {
		return models.ExtractionResult{}, fmt.Errorf("%w: decode message content: %v", models.ErrMalformedResponse, err)
	}

	return result, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", models.ErrExtractionTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", models.ErrExtractionTimeout, err)
	}

	return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
}

// --- wire types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Format   string        `json:"format,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

var _ models.Extractor = (*Provider)(nil)
