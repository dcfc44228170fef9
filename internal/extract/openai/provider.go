// Package openai implements models.Extractor against the OpenAI
// chat-completions API, using a forced function call to constrain the
// output to the action-item schema.
package openai

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

Extract all tasks, commitments, and action items mentioned in the transcript. For each action item:
- Identify the specific action/task
- Determine who is responsible (owner)
- Extract or infer the deadline/due date
- Assess the priority level (high, medium, or low)

Also produce 2-4 short highlight sentences summarizing the key points of the meeting.

Be thorough and extract all actionable items, even if some information is implicit.`

// toolSchema constrains the model output to the required item shape: string
// action/owner/deadline plus the three-value priority enum.
const toolSchema = `{
  "type": "object",
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "action": {"type": "string", "description": "The specific action or task to be completed"},
          "owner": {"type": "string", "description": "The person responsible for the action"},
          "deadline": {"type": "string", "description": "When the action should be completed (e.g., 'Friday', 'Next week', 'By EOD')"},
          "priority": {"type": "string", "enum": ["high", "medium", "low"], "description": "The priority level of the action item"}
        },
        "required": ["action", "owner", "deadline", "priority"],
        "additionalProperties": false
      }
    },
    "highlights": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Short summary sentences of the meeting's key points"
    }
  },
  "required": ["items"],
  "additionalProperties": false
}`

// Provider implements models.Extractor using OpenAI.
type Provider struct {
	cfg    config.OpenAIConfig
	client *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Extract(ctx context.Context, transcript string) (models.ExtractionResult, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: transcript},
		},
		Tools: []tool{{
			Type: "function",
			Function: toolFunction{
				Name:        "extract_action_items",
				Description: "Extract action items from a meeting transcript",
				Parameters:  json.RawMessage(toolSchema),
			},
		}},
		ToolChoice: toolChoice{
			Type:     "function",
			Function: toolChoiceFunction{Name: "extract_action_items"},
		},
	})
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("marshal extraction request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/chat/completions", strings.TrimSuffix(p.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
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

	if len(chatResp.Choices) == 0 || len(chatResp.Choices[0].Message.ToolCalls) == 0 {
		return models.ExtractionResult{}, fmt.Errorf("%w: no tool call in response", models.ErrMalformedResponse)
	}

	args := chatResp.Choices[0].Message.ToolCalls[0].Function.Arguments
	var result models.ExtractionResult
	if err := json.Unmarshal([]byte(args), &result); err != nil {
		return models.ExtractionResult{}, fmt.Errorf("%w: decode tool arguments: %v", models.ErrMalformedResponse, err)
	}

	return result, nil
}

// classifyError maps transport-level errors to sentinel errors.
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
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Tools      []tool        `json:"tools"`
	ToolChoice toolChoice    `json:"tool_choice"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type toolChoice struct {
	Type     string             `json:"type"`
	Function toolChoiceFunction `json:"function"`
}

type toolChoiceFunction struct {
	Name string `json:"name"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

var _ models.Extractor = (*Provider)(nil)
