package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/ocanamx/salud-rural/backend/internal/config"
	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
)

// Request is one gateway invocation: a system instruction, the prior
// transcript and the latest query. Schema, when set, describes the JSON
// shape the caller expects back and is appended to the system prompt.
type Request struct {
	System  string
	History []chat.Message
	Query   string
	Schema  string
}

// Client is implemented by anything able to answer a prompt. Services
// depend on this interface so tests can script responses.
type Client interface {
	Ask(ctx context.Context, req Request) (string, error)
}

// Service runs requests through a compiled prompt -> model chain.
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewService compiles the chat chain for the configured model.
func NewService(ctx context.Context, cfg config.GatewayConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
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
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{chain: runnable, timeout: timeout}, nil
}

// Ask runs one blocking model invocation under the configured timeout.
// Timeout expiry is reported as a plain gateway failure.
func (s *Service) Ask(ctx context.Context, req Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	system := req.System
	if req.Schema != "" {
		system = system + "\n\nResponde únicamente con un objeto JSON con esta forma: " + req.Schema
	}

	input := map[string]any{
		"system":  system,
		"history": buildHistoryMessages(req.History),
		"query":   req.Query,
	}

	response, err := s.chain.Invoke(callCtx, input)
	if err != nil {
		return "", fmt.Errorf("gateway invocation failed: %w", err)
	}

	return strings.TrimSpace(response.Content), nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
