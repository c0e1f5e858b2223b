// Package gemini implements llm.Client for the Gemini generateContent API.
//
// The wire shape differs from chat-completion providers in a few ways:
//
//   - The judge instruction goes in a top-level "system_instruction" field,
//     not in the message list
//   - The transcript becomes a "contents" list of role/parts entries with
//     only "user" and "model" roles; system entries are dropped because they
//     ride the instruction channel instead
//   - The credential is a "key" query parameter, not a bearer header
//   - Generation parameters nest under "generationConfig"
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/samber/lo"

	"github.com/rgann/gatekeeper/llm"
)

// DefaultBaseURL for the Gemini REST API.
// Submit appends /v1beta/models/{model}:generateContent.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

type generateRequest struct {
	SystemInstruction *systemInstruction `json:"system_instruction,omitempty"`
	Contents          []content          `json:"contents"`
	GenerationConfig  generationConfig   `json:"generationConfig"`
}

type systemInstruction struct {
	Parts []part `json:"parts"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

// errorEnvelope is the provider's error body on non-success statuses.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client implements the llm.Client interface for Gemini.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Gemini client.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit implements llm.Client. It issues exactly one generateContent call
// and returns the first candidate's first part text.
func (c *Client) Submit(ctx context.Context, req *llm.Request) (string, error) {
	if req == nil {
		return "", fmt.Errorf("request is required")
	}

	body, err := json.Marshal(mapRequest(req))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", llm.NewTransportFailureError("network error or invalid API endpoint", err)
	}
	defer resp.Body.Close() //nolint:errcheck // No remedy for body close errors

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.NewTransportFailureError("failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", convertStatusError(resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", llm.NewTransportFailureError("malformed response body", err)
	}

	text := extractText(genResp)
	if text == "" {
		return "", llm.NewEmptyResponseError("provider returned an empty reply")
	}
	return text, nil
}

// mapRequest translates a neutral request into Gemini's native format.
// System entries are excluded from contents; the instruction channel carries
// that role. The caller's messages are never mutated, only re-mapped here.
func mapRequest(req *llm.Request) generateRequest {
	var sysInst *systemInstruction
	if req.Instruction != "" {
		sysInst = &systemInstruction{Parts: []part{{Text: req.Instruction}}}
	}

	contents := lo.FilterMap(req.Messages, func(msg llm.Message, _ int) (content, bool) {
		if msg.Role == llm.RoleSystem {
			return content{}, false
		}
		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "model"
		}
		return content{Role: role, Parts: []part{{Text: msg.Content}}}, true
	})

	return generateRequest{
		SystemInstruction: sysInst,
		Contents:          contents,
		GenerationConfig: generationConfig{
			MaxOutputTokens: llm.MaxReplyTokens,
			Temperature:     llm.Temperature,
		},
	}
}

func extractText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}

// convertStatusError surfaces the provider's own message when its error
// envelope parses, and a generic failure otherwise.
func convertStatusError(statusCode int, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return llm.NewProviderRejectedError(envelope.Error.Message, statusCode, nil)
	}
	return llm.NewProviderRejectedError("provider request failed", statusCode, nil)
}

var _ llm.Client = (*Client)(nil)
