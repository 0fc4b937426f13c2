package collaborator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers"
)

// LLM is a collaborator backed by a chat completion provider.
type LLM struct {
	provider  providers.Provider
	model     string
	maxTokens int
	logger    *slog.Logger
}

// NewLLM creates a model-backed collaborator.
func NewLLM(provider providers.Provider, model string, maxTokens int, logger *slog.Logger) (*LLM, error) {
	if provider == nil {
		return nil, errors.New("provider cannot be nil")
	}
	if model == "" {
		return nil, errors.New("model is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLM{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.With("component", "collaborator.llm", "provider", provider.GetName()),
	}, nil
}

// Name implements Collaborator.
func (l *LLM) Name() string {
	return l.provider.GetName()
}

// Extract implements Collaborator. Output that does not decode into the
// claim schema is an error; individual malformed facts are dropped.
func (l *LLM) Extract(ctx context.Context, text string, hints Hints) (claim.Facts, error) {
	prompts := extractMessages(text, hints)
	content, err := l.complete(ctx, prompts[0], prompts[1], true)
	if err != nil {
		return claim.Facts{}, err
	}

	facts, err := decodeFacts(content)
	if err != nil {
		return claim.Facts{}, err
	}

	facts.Normalize()
	if err := facts.Validate(); err != nil {
		var verr claim.ValidationError
		if errors.As(err, &verr) {
			fields := make([]string, 0, len(verr.Errors))
			for _, fe := range verr.Errors {
				fields = append(fields, fe.Field)
			}
			l.logger.Debug("dropping invalid extracted facts", "fields", fields)
			facts = facts.Without(fields...)
		}
	}
	return facts, nil
}

// Narrate implements Collaborator.
func (l *LLM) Narrate(ctx context.Context, result *eligibility.Result, analysis *planintel.Analysis) (string, error) {
	if result == nil {
		return "", errors.New("result cannot be nil")
	}
	prompts, err := narrateMessages(result, analysis)
	if err != nil {
		return "", err
	}
	return l.complete(ctx, prompts[0], prompts[1], false)
}

func (l *LLM) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	resp, err := l.provider.SendCompletion(ctx, &providers.CompletionRequest{
		Model: l.model,
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: system},
			{Role: providers.RoleUser, Content: user},
		},
		MaxTokens: l.maxTokens,
		JSONMode:  jsonMode,
	})
	if err != nil {
		return "", err
	}

	l.logger.Debug("completion received",
		"model", resp.Model,
		"total_tokens", resp.Usage.TotalTokens,
		"finish_reason", resp.FinishReason,
	)

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// decodeFacts decodes a model reply into facts. Code fences and prose
// around the object are ignored. Keys outside the schema are ignored and a
// key whose value has the wrong type is skipped without failing the rest.
func decodeFacts(content string) (claim.Facts, error) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end < start {
		return claim.Facts{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformedResponse)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return claim.Facts{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var facts claim.Facts
	for key, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		single, err := json.Marshal(map[string]json.RawMessage{key: value})
		if err != nil {
			continue
		}
		var patch claim.Facts
		if err := json.Unmarshal(single, &patch); err != nil {
			continue
		}
		facts.Merge(patch)
	}
	return facts, nil
}
