// Package openai implements llm.Client for chat-completion style APIs.
//
// Both OpenAI and Groq expose the same /chat/completions wire shape, so a
// single client serves both: Groq is this client with its base URL and model
// swapped in. The judge instruction travels as a leading system message and
// all transcript roles are kept role-for-role.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rgann/gatekeeper/llm"
)

// Client implements the llm.Client interface for chat-completion APIs.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a chat-completion client.
// If baseURL is empty, the official OpenAI endpoint is used.
func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Submit implements llm.Client. It issues exactly one chat-completion call
// and returns the first choice's message content.
func (c *Client) Submit(ctx context.Context, req *llm.Request) (string, error) {
	if req == nil {
		return "", fmt.Errorf("request is required")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.Instruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instruction,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, toChatMessage(msg))
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   llm.MaxReplyTokens,
		Temperature: llm.Temperature,
	}

	chatResp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", convertError(err)
	}

	if len(chatResp.Choices) == 0 {
		return "", llm.NewEmptyResponseError("provider returned no choices")
	}
	content := chatResp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", llm.NewEmptyResponseError("provider returned an empty reply")
	}

	return content, nil
}

// toChatMessage converts a neutral message to the wire role names. The chat
// shape accepts an inline system role, so roles map one-to-one.
func toChatMessage(msg llm.Message) openai.ChatCompletionMessage {
	var role string
	switch msg.Role {
	case llm.RoleAssistant:
		role = openai.ChatMessageRoleAssistant
	case llm.RoleSystem:
		role = openai.ChatMessageRoleSystem
	default:
		role = openai.ChatMessageRoleUser
	}
	return openai.ChatCompletionMessage{Role: role, Content: msg.Content}
}

// convertError normalizes go-openai errors into llm.Error values.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	// Non-success status with a parseable error envelope.
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "provider request failed"
		}
		return llm.NewProviderRejectedError(message, apiErr.HTTPStatusCode, err)
	}

	// Non-success status whose body could not be parsed as an error envelope.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewProviderRejectedError("provider request failed", reqErr.HTTPStatusCode, err)
	}

	// Anything else is a transport problem: unreachable endpoint, aborted
	// connection, malformed response.
	return llm.NewTransportFailureError("network error or invalid API endpoint", err)
}

var _ llm.Client = (*Client)(nil)
