// Package gateway dispatches a conversation to one of the supported LLM
// providers and normalizes the outcome.
//
// The gateway itself is stateless: every Submit builds a fresh provider
// client from the supplied credential, issues one call, and returns either
// the reply text or a *llm.Error. Adding a provider means adding one client
// implementation and one arm in the dispatch below; nothing upstream changes.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rgann/gatekeeper/llm"
	"github.com/rgann/gatekeeper/llm/gemini"
	"github.com/rgann/gatekeeper/llm/openai"
)

// Default models and endpoints per provider. Models match what the game was
// tuned against; base URLs are overridable for proxies and tests.
const (
	OpenAIModel = "gpt-4o-mini"
	GroqModel   = "llama-3.3-70b-versatile"
	GeminiModel = "gemini-2.5-flash"

	GroqBaseURL = "https://api.groq.com/openai/v1"
)

// Config holds per-provider overrides. Zero values select the official
// endpoints and default models.
type Config struct {
	OpenAIBaseURL string
	OpenAIModel   string
	GroqBaseURL   string
	GroqModel     string
	GeminiBaseURL string
	GeminiModel   string
}

// Gateway submits conversations to a selected provider.
type Gateway struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates a Gateway with the given overrides.
func New(logger zerolog.Logger, cfg Config) *Gateway {
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = OpenAIModel
	}
	if cfg.GroqBaseURL == "" {
		cfg.GroqBaseURL = GroqBaseURL
	}
	if cfg.GroqModel == "" {
		cfg.GroqModel = GroqModel
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = GeminiModel
	}
	return &Gateway{
		cfg:    cfg,
		logger: logger.With().Str("component", "gateway").Logger(),
	}
}

// Submit sends the transcript and instruction to the named provider and
// returns the judge's reply text.
//
// With an absent or empty credential it returns a missing-credential error
// before any client is built; no network call is made. All other failures
// come back as *llm.Error values from the provider client. The transcript is
// never mutated; provider clients re-map a local copy for the wire.
func (g *Gateway) Submit(ctx context.Context, transcript []llm.Message, instruction, credential, provider string) (string, error) {
	if credential == "" {
		return "", llm.NewMissingCredentialError("API key is missing, add it in settings")
	}

	client, err := g.client(credential, provider)
	if err != nil {
		return "", err
	}

	start := time.Now()
	reply, err := client.Submit(ctx, &llm.Request{
		Messages:    transcript,
		Instruction: instruction,
	})
	if err != nil {
		g.logger.Warn().
			Err(err).
			Str("provider", provider).
			Str("kind", string(llm.KindOf(err))).
			Msg("Submission failed")
		return "", err
	}

	g.logger.Debug().
		Str("provider", provider).
		Int("transcriptLen", len(transcript)).
		Dur("elapsed", time.Since(start)).
		Msg("Submission succeeded")
	return reply, nil
}

// client builds a provider client for one submission. An unknown provider is
// a caller bug and surfaces as a plain error, not a normalized llm.Error.
func (g *Gateway) client(credential, provider string) (llm.Client, error) {
	switch provider {
	case llm.ProviderOpenAI:
		client, err := openai.NewClient(credential, g.cfg.OpenAIBaseURL, g.cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		return client, nil
	case llm.ProviderGroq:
		client, err := openai.NewClient(credential, g.cfg.GroqBaseURL, g.cfg.GroqModel)
		if err != nil {
			return nil, err
		}
		return client, nil
	case llm.ProviderGemini:
		opts := []gemini.Option{}
		if g.cfg.GeminiBaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(g.cfg.GeminiBaseURL))
		}
		client, err := gemini.NewClient(credential, g.cfg.GeminiModel, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
