// Package llm wraps the OpenAI client as the engine's text-generation
// collaborator. Retry and backoff live here, not in the engine: a request
// that exhausts its attempts surfaces one error and the session is left for
// the user to retry.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultModel     = "gpt-5-2025-08-07"
	defaultMaxTokens = 400
	maxAttempts      = 3
	baseBackoff      = 500 * time.Millisecond
)

type Service struct {
	client *openai.Client
	model  string
	log    *zap.Logger
	tracer trace.Tracer
}

func NewService(apiKey, model string, log *zap.Logger) *Service {
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Service{
		client: &client,
		model:  model,
		log:    log,
		tracer: otel.Tracer("llm-service"),
	}
}

// Generate produces one in-character reply. The recent transcript is folded
// into the prompt as context; userText is the line being answered.
func (s *Service) Generate(ctx context.Context, systemPrompt string, history []string, userText string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "llm.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.system", "openai"),
			attribute.String("gen_ai.request.model", s.model),
			attribute.Int("gen_ai.request.max_tokens", defaultMaxTokens),
		),
	)
	defer span.End()

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(history, userText)),
		},
		MaxCompletionTokens: openai.Int(int64(defaultMaxTokens)),
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		resp, err := s.client.Chat.Completions.New(ctx, req)
		if err == nil && len(resp.Choices) == 0 {
			err = fmt.Errorf("completion returned no choices")
		}
		if err == nil {
			text := strings.TrimSpace(resp.Choices[0].Message.Content)
			s.log.Debug("completion",
				zap.Duration("took", time.Since(start)),
				zap.Int("attempt", attempt),
				zap.Int("chars", len(text)))
			span.SetAttributes(attribute.Int("gen_ai.response.length", len(text)))
			return text, nil
		}

		lastErr = err
		s.log.Debug("completion attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr))
		if attempt < maxAttempts {
			select {
			case <-time.After(baseBackoff << (attempt - 1)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", maxAttempts, lastErr)
}

func buildUserPrompt(history []string, userText string) string {
	if len(history) == 0 {
		return userText
	}
	var b strings.Builder
	b.WriteString("RECENT CONVERSATION:\n")
	for _, line := range history {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nUser: ")
	b.WriteString(userText)
	return b.String()
}
