package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ewilliams-labs/musicmate/internal/adapters/llmchat"
	"github.com/ewilliams-labs/musicmate/internal/core/ports"
)

func TestClient_Call(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		wantSuccess  bool
		wantResult   string
		wantError    string
	}{
		{
			name:         "Success",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"{\"message\":\"Try these\",\"tracks\":[]}"}}`,
			wantSuccess:  true,
			wantResult:   `{"message":"Try these","tracks":[]}`,
		},
		{
			name:         "Server error",
			status:       http.StatusInternalServerError,
			responseBody: `{"error":"bad"}`,
			wantError:    "ollama: unexpected status 500: bad",
		},
		{
			name:         "Model not found",
			status:       http.StatusNotFound,
			responseBody: `not json`,
			wantError:    "ollama: unexpected status 404",
		},
		{
			name:         "Error in body",
			status:       http.StatusOK,
			responseBody: `{"error":"model is loading"}`,
			wantError:    "ollama: model is loading",
		},
		{
			name:         "Empty content",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"  "}}`,
			wantError:    "ollama: empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/chat" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if r.Method != http.MethodPost {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "llama3", time.Second, 10)
			resp, err := client.Call(context.Background(), "test message", "ignored", ports.AgentContext{SessionID: "s1"})
			if err != nil {
				t.Fatalf("unexpected transport error: %v", err)
			}

			if resp.Success != tt.wantSuccess {
				t.Fatalf("success: got %v, want %v (error %q)", resp.Success, tt.wantSuccess, resp.Error)
			}
			if resp.Error != tt.wantError {
				t.Fatalf("error: got %q, want %q", resp.Error, tt.wantError)
			}
			if !tt.wantSuccess {
				return
			}
			if resp.Result != tt.wantResult {
				t.Fatalf("result: got %v, want %q", resp.Result, tt.wantResult)
			}
			if gotRequest.Model != "llama3" {
				t.Fatalf("expected model llama3, got %q", gotRequest.Model)
			}
			if gotRequest.Format != "json" {
				t.Fatalf("expected format json, got %q", gotRequest.Format)
			}
			if len(gotRequest.Messages) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(gotRequest.Messages))
			}
			if gotRequest.Messages[0].Role != "system" || gotRequest.Messages[0].Content != llmchat.SystemPrompt {
				t.Fatalf("system prompt mismatch")
			}
			if gotRequest.Messages[1].Role != "user" || gotRequest.Messages[1].Content != "test message" {
				t.Fatalf("user message mismatch")
			}
		})
	}
}

func TestClient_CallReplaysHistory(t *testing.T) {
	var requests []chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		requests = append(requests, req)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"message\":\"ok\"}"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second, 10)
	ctx := context.Background()
	for _, msg := range []string{"first", "second"} {
		if _, err := client.Call(ctx, msg, "", ports.AgentContext{SessionID: "s1"}); err != nil {
			t.Fatalf("call: %v", err)
		}
	}
	if _, err := client.Call(ctx, "elsewhere", "", ports.AgentContext{SessionID: "s2"}); err != nil {
		t.Fatalf("call: %v", err)
	}

	if got := len(requests[1].Messages); got != 4 {
		t.Fatalf("second call: expected system + 2 history + user, got %d messages", got)
	}
	if requests[1].Messages[1].Content != "first" || requests[1].Messages[2].Role != "assistant" {
		t.Fatalf("history not replayed in order: %+v", requests[1].Messages)
	}
	if got := len(requests[2].Messages); got != 2 {
		t.Fatalf("other session must not see history, got %d messages", got)
	}
	if requests[0].Model != defaultModel {
		t.Fatalf("expected default model, got %q", requests[0].Model)
	}
}

func TestClient_CallTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, "llama3", time.Second, 0)
	if _, err := client.Call(context.Background(), "hi", "", ports.AgentContext{}); err == nil {
		t.Fatalf("expected transport error from closed server")
	}
}
