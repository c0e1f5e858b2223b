package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rgann/gatekeeper/llm"
)

const chatSuccessBody = `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"ACCESS GRANTED: well played."},"finish_reason":"stop"}]}`

const geminiSuccessBody = `{"candidates":[{"content":{"role":"model","parts":[{"text":"ACCESS GRANTED: well played."}]}}]}`

// newGateway points every provider at the given server so no test ever
// reaches a real endpoint.
func newGateway(srv *httptest.Server) *Gateway {
	return New(zerolog.Nop(), Config{
		OpenAIBaseURL: srv.URL + "/v1",
		GroqBaseURL:   srv.URL + "/v1",
		GeminiBaseURL: srv.URL,
	})
}

func TestSubmitRoundTripAllProviders(t *testing.T) {
	// The same transcript must yield the same normalized result whichever
	// provider serves it.
	transcript := []llm.Message{llm.NewMessage(llm.RoleUser, "hello")}

	cases := []struct {
		provider string
		body     string
	}{
		{llm.ProviderOpenAI, chatSuccessBody},
		{llm.ProviderGroq, chatSuccessBody},
		{llm.ProviderGemini, geminiSuccessBody},
	}

	for _, tc := range cases {
		t.Run(tc.provider, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			reply, err := newGateway(srv).Submit(context.Background(), transcript, "be terse", "test-key", tc.provider)
			if err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
			if reply != "ACCESS GRANTED: well played." {
				t.Errorf("Unexpected reply %q", reply)
			}
		})
	}
}

func TestSubmitMissingCredential(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	gw := newGateway(srv)
	for _, provider := range llm.Providers() {
		_, err := gw.Submit(context.Background(), nil, "judge", "", provider)
		if !llm.IsMissingCredential(err) {
			t.Errorf("Provider %s: expected missing credential error, got %v", provider, err)
		}
	}
	if hit {
		t.Error("Submit with an absent credential must not issue a network call")
	}
}

func TestSubmitProviderErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	_, err := newGateway(srv).Submit(context.Background(),
		[]llm.Message{llm.NewMessage(llm.RoleUser, "hi")}, "judge", "test-key", llm.ProviderOpenAI)
	if !llm.IsProviderRejected(err) {
		t.Fatalf("Expected provider rejection, got %v", err)
	}
	var llmErr *llm.Error
	if !errors.As(err, &llmErr) || llmErr.Message != "rate limited" {
		t.Errorf("Expected message \"rate limited\", got %v", err)
	}
}

func TestSubmitUnknownProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := newGateway(srv).Submit(context.Background(), nil, "judge", "test-key", "mystery")
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
	if llm.KindOf(err) != "" {
		t.Errorf("Unknown provider is a caller bug, not a normalized gateway error; got kind %q", llm.KindOf(err))
	}
}

func TestDefaultsApplied(t *testing.T) {
	gw := New(zerolog.Nop(), Config{})
	if gw.cfg.OpenAIModel != OpenAIModel {
		t.Errorf("Expected default OpenAI model, got %q", gw.cfg.OpenAIModel)
	}
	if gw.cfg.GroqModel != GroqModel {
		t.Errorf("Expected default Groq model, got %q", gw.cfg.GroqModel)
	}
	if gw.cfg.GroqBaseURL != GroqBaseURL {
		t.Errorf("Expected default Groq base URL, got %q", gw.cfg.GroqBaseURL)
	}
	if gw.cfg.GeminiModel != GeminiModel {
		t.Errorf("Expected default Gemini model, got %q", gw.cfg.GeminiModel)
	}
}
