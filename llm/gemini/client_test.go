package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rgann/gatekeeper/llm"
)

func successBody(text string) string {
	b, _ := json.Marshal(generateResponse{
		Candidates: []candidate{
			{Content: content{Role: "model", Parts: []part{{Text: text}}}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", "gemini-2.5-flash", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestSubmitSuccess(t *testing.T) {
	var captured generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("Expected credential in key query parameter, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		_, _ = w.Write([]byte(successBody("ACCESS GRANTED: fine.")))
	})

	reply, err := client.Submit(context.Background(), &llm.Request{
		Messages: []llm.Message{
			llm.NewMessage(llm.RoleUser, "hello"),
			llm.NewMessage(llm.RoleAssistant, "who goes there"),
		},
		Instruction: "be terse",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if reply != "ACCESS GRANTED: fine." {
		t.Errorf("Unexpected reply %q", reply)
	}

	if captured.SystemInstruction == nil || len(captured.SystemInstruction.Parts) != 1 ||
		captured.SystemInstruction.Parts[0].Text != "be terse" {
		t.Errorf("Expected instruction in system_instruction, got %+v", captured.SystemInstruction)
	}
	if len(captured.Contents) != 2 {
		t.Fatalf("Expected 2 contents, got %d", len(captured.Contents))
	}
	if captured.Contents[0].Role != "user" {
		t.Errorf("Expected role user, got %q", captured.Contents[0].Role)
	}
	if captured.Contents[1].Role != "model" {
		t.Errorf("Expected assistant remapped to model, got %q", captured.Contents[1].Role)
	}
	if captured.GenerationConfig.MaxOutputTokens != llm.MaxReplyTokens {
		t.Errorf("Expected maxOutputTokens %d, got %d", llm.MaxReplyTokens, captured.GenerationConfig.MaxOutputTokens)
	}
	if captured.GenerationConfig.Temperature != llm.Temperature {
		t.Errorf("Expected temperature %v, got %v", llm.Temperature, captured.GenerationConfig.Temperature)
	}
}

func TestSubmitDropsSystemEntries(t *testing.T) {
	var captured generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(successBody("ok")))
	})

	original := []llm.Message{
		llm.NewMessage(llm.RoleSystem, "earlier diagnostic"),
		llm.NewMessage(llm.RoleUser, "hello"),
	}
	_, err := client.Submit(context.Background(), &llm.Request{
		Messages:    original,
		Instruction: "judge",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// The system entry rides the instruction channel, never contents.
	if len(captured.Contents) != 1 {
		t.Fatalf("Expected 1 content, got %d", len(captured.Contents))
	}
	if captured.Contents[0].Role != "user" || captured.Contents[0].Parts[0].Text != "hello" {
		t.Errorf("Unexpected content %+v", captured.Contents[0])
	}

	// The caller's transcript is untouched.
	if original[0].Role != llm.RoleSystem || original[0].Content != "earlier diagnostic" {
		t.Error("Submit mutated the caller's transcript")
	}
}

func TestSubmitProviderRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := client.Submit(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hi")},
	})
	if !llm.IsProviderRejected(err) {
		t.Fatalf("Expected provider rejection, got %v", err)
	}
	if err.Error() != "API key not valid" {
		t.Errorf("Expected provider's own message, got %q", err.Error())
	}
}

func TestSubmitProviderRejectedUnparseableEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.Submit(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hi")},
	})
	if !llm.IsProviderRejected(err) {
		t.Fatalf("Expected provider rejection, got %v", err)
	}
	if err.Error() != "provider request failed" {
		t.Errorf("Expected generic failure message, got %q", err.Error())
	}
}

func TestSubmitEmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Submit(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hi")},
	})
	if !llm.IsEmptyResponse(err) {
		t.Fatalf("Expected empty response error, got %v", err)
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client, err := NewClient("test-key", "gemini-2.5-flash", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	srv.Close()

	_, err = client.Submit(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hi")},
	})
	if !llm.IsTransportFailure(err) {
		t.Fatalf("Expected transport failure, got %v", err)
	}
}

func TestSubmitMalformedSuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.Submit(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hi")},
	})
	if !llm.IsTransportFailure(err) {
		t.Fatalf("Expected transport failure for malformed body, got %v", err)
	}
}
