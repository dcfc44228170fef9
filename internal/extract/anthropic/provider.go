// Package anthropic implements models.Extractor against the Anthropic
// Messages API, forcing a tool-use block to constrain the output schema.
package anthropic

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

const apiVersion = "2023-06-01"

const systemPrompt = `You are an AI assistant that extracts action items from meeting transcripts.

Extract all tasks, commitments, and action items mentioned in the transcript. For each action item identify the specific action, who is responsible, the deadline, and a priority of high, medium, or low. Also produce 2-4 short highlight sentences summarizing the meeting. Be thorough and extract all actionable items, even if some information is implicit.`

const inputSchema = `{
  "type": "object",
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "action": {"type": "string"},
          "owner": {"type": "string"},
          "deadline": {"type": "string"},
          "priority": {"type": "string", "enum": ["high", "medium", "low"]}
        },
        "required": ["action", "owner", "deadline", "priority"],
        "additionalProperties": false
      }
    },
    "highlights": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["items"],
  "additionalProperties": false
}`

// Provider implements models.Extractor using Anthropic.
type Provider struct {
	cfg    config.AnthropicConfig
	client *http.Client
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Extract(ctx context.Context, transcript string) (models.ExtractionResult, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     p.cfg.Model,
		MaxTokens: 4096,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: transcript},
		},
		Tools: []tool{{
			Name:        "extract_action_items",
			Description: "Extract action items from a meeting transcript",
			InputSchema: json.RawMessage(inputSchema),
		}},
		ToolChoice: toolChoice{Type: "tool", Name: "extract_action_items"},
	})
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("marshal extraction request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/messages", strings.TrimSuffix(p.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
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

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return models.ExtractionResult{}, fmt.Errorf("%w: decode response: %v", models.ErrMalformedResponse, err)
	}

	for _, block := range msgResp.Content {
		if block.Type != "tool_use" {
			continue
		}
		var result models.ExtractionResult
		if err := json.Unmarshal(block.Input, &result); err != nil {
			return models.ExtractionResult{}, fmt.Errorf("%w: decode tool input: %v", models.ErrMalformedResponse, err)
		}
		return result, nil
	}

	return models.ExtractionResult{}, fmt.Errorf("%w: no tool_use block in response", models.ErrMalformedResponse)
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

type messagesRequest struct {
	Model      string     `json:"model"`
	MaxTokens  int        `json:"max_tokens"`
	System     string     `json:"system"`
	Messages   []message  `json:"messages"`
	Tools      []tool     `json:"tools"`
	ToolChoice toolChoice `json:"tool_choice"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Input json.RawMessage `json:"input"`
}

var _ models.Extractor = (*Provider)(nil)
