package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antoniostano/kyra/internal/prompt"
)

type capturedMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type capturedRequest struct {
	Model       string            `json:"model"`
	Temperature float32           `json:"temperature"`
	Messages    []capturedMessage `json:"messages"`
}

func completionBody(content string) string {
	return `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":` + mustJSON(content) + `},"finish_reason":"stop"}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestCompleteSendsOrderedMessagesAndTemperature(t *testing.T) {
	var got capturedRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("  a focused answer  ")))
	}))
	defer ts.Close()

	c := NewClient("test-key", ts.URL+"/v1", "test-model")
	msgs := []prompt.Message{
		{Role: prompt.RoleSystem, Content: "you are kyra"},
		{Role: prompt.RoleUser, Content: "old question"},
		{Role: prompt.RoleAssistant, Content: "old answer"},
		{Role: prompt.RoleUser, Content: "new question"},
	}

	reply, err := c.Complete(context.Background(), msgs, 0.4)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "a focused answer" {
		t.Fatalf("reply = %q, want trimmed choice content", reply)
	}

	if got.Model != "test-model" {
		t.Fatalf("request model = %q, want %q", got.Model, "test-model")
	}
	if got.Temperature != 0.4 {
		t.Fatalf("request temperature = %v, want 0.4", got.Temperature)
	}
	if len(got.Messages) != len(msgs) {
		t.Fatalf("len(request messages) = %d, want %d", len(got.Messages), len(msgs))
	}
	for i, m := range msgs {
		if got.Messages[i].Role != m.Role || got.Messages[i].Content != m.Content {
			t.Fatalf("request message %d = %+v, want %+v", i, got.Messages[i], m)
		}
	}
}

func TestCompleteEmptyChoicesReturnsSentinel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-2","object":"chat.completion","choices":[]}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", ts.URL+"/v1", "test-model")
	reply, err := c.Complete(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}, 0.4)
	if err != nil {
		t.Fatalf("Complete() error = %v, want nil for an empty but parseable response", err)
	}
	if reply != EmptyReplySentinel {
		t.Fatalf("reply = %q, want %q", reply, EmptyReplySentinel)
	}
}

func TestCompleteBlankContentReturnsSentinel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("   ")))
	}))
	defer ts.Close()

	c := NewClient("test-key", ts.URL+"/v1", "test-model")
	reply, err := c.Complete(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}, 0.4)
	if err != nil {
		t.Fatalf("Complete() error = %v, want nil", err)
	}
	if reply != EmptyReplySentinel {
		t.Fatalf("reply = %q, want %q", reply, EmptyReplySentinel)
	}
}

func TestCompleteTransportFailureIsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient("test-key", ts.URL+"/v1", "test-model")
	_, err := c.Complete(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}, 0.4)

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Complete() error = %v, want *UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusInternalServerError {
		t.Fatalf("StatusCode = %d, want %d", upstream.StatusCode, http.StatusInternalServerError)
	}
}

func TestCompleteUnreachableServerIsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	ts.Close() // connection refused from here on

	c := NewClient("test-key", ts.URL+"/v1", "test-model")
	_, err := c.Complete(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}, 0.4)

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Complete() error = %v, want *UpstreamError", err)
	}
	if upstream.StatusCode != 0 {
		t.Fatalf("StatusCode = %d, want 0 when the request never reached the server", upstream.StatusCode)
	}
}
