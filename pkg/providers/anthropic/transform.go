package anthropic

import (
	"fmt"
	"strings"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers"
)

// DefaultMaxTokens is sent when the request leaves MaxTokens unset; the
// Messages API requires it.
const DefaultMaxTokens = 1024

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// transformRequest moves system messages into the top-level system field.
// JSON mode has no direct equivalent and is expressed in the system prompt.
func transformRequest(req *providers.CompletionRequest) *messagesRequest {
	out := &messagesRequest{
		Model:       req.Model,
		Messages:    make([]message, 0, len(req.Messages)),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = DefaultMaxTokens
	}

	var system []string
	for _, m := range req.Messages {
		if m.Role == providers.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		out.Messages = append(out.Messages, message{Role: m.Role, Content: m.Content})
	}
	if req.JSONMode {
		system = append(system, "Respond with a single JSON object and nothing else.")
	}
	out.System = strings.Join(system, "\n\n")
	return out
}

func transformResponse(resp *messagesResponse) (*providers.CompletionResponse, error) {
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("response contains no text content")
	}

	return &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      text.String(),
		FinishReason: normalizeStopReason(resp.StopReason),
		Usage: providers.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

func normalizeStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence", "":
		return providers.FinishReasonStop
	case "max_tokens":
		return providers.FinishReasonLength
	default:
		return reason
	}
}
