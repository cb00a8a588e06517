// internal/ai/service.go
//
// Thinking-partner chat service.
//
// Context
// -------
// The Guided Turns flow is scripted; the free-form "thinking partner"
// endpoint is not.  It hands the running conversation to a chat model
// through a compiled eino chain (system prompt → history placeholder →
// user query) and returns one plain-text reply.  The service is optional:
// when no model credentials are configured, the handler reports
// unavailable instead of failing mid-conversation.

package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/pocketrocks/pocketrocks/internal/config"
)

// Message is one prior conversation entry.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Service wraps the compiled chat chain.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the chat model and compiles the chain once at boot.
func NewService(ctx context.Context, cfg config.AI) (*Service, error) {
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("ai: compile chat chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Reply generates one assistant turn for the conversation.  The last user
// utterance travels as the query; everything before it as history.
func (s *Service) Reply(ctx context.Context, history []Message, userText string) (string, error) {
	input := map[string]any{
		"system":  systemPrompt,
		"history": historyMessages(history),
		"query":   userText,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("ai: run chat chain: %w", err)
	}

	zap.S().Debugw("thinking partner reply", "chars", len(response.Content))
	if response.Content == "" {
		return "Tell me a bit more.", nil
	}
	return response.Content, nil
}

// historyLimit keeps prompts bounded on long conversations.
const historyLimit = 10

func historyMessages(history []Message) []*schema.Message {
	if len(history) == 0 {
		return nil
	}
	start := 0
	if len(history) > historyLimit {
		start = len(history) - historyLimit
	}

	out := make([]*schema.Message, 0, len(history)-start)
	for _, m := range history[start:] {
		switch m.Role {
		case "assistant":
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}
