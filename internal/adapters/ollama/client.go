// Package ollama provides an agent adapter for the Ollama LLM service.
// It sends the conversation to a local Ollama instance and hands the
// model's raw reply back as the agent result.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ewilliams-labs/musicmate/internal/adapters/llmchat"
	"github.com/ewilliams-labs/musicmate/internal/core/ports"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	history    *llmchat.History
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// NewClient creates a client for the Ollama server at baseURL.
// historyTurns bounds the messages replayed per session.
func NewClient(baseURL, model string, timeout time.Duration, historyTurns int) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		history: llmchat.NewHistory(historyTurns),
	}
}

// Call implements ports.AgentCaller. The agent id is not used: the local
// model is the agent. Connection failures are returned as errors; problems
// reported by the server come back as an unsuccessful response.
func (c *Client) Call(ctx context.Context, utterance, agentID string, actx ports.AgentContext) (ports.AgentResponse, error) {
	conversation := c.history.Conversation(actx.SessionID, utterance)
	payload := chatRequest{
		Model:    c.model,
		Stream:   false,
		Format:   "json",
		Messages: make([]chatMessage, 0, len(conversation)),
	}
	for _, m := range conversation {
		payload.Messages = append(payload.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.AgentResponse{}, fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return ports.AgentResponse{}, fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.AgentResponse{}, fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("ollama: unexpected status %d", resp.StatusCode)
		if decodeErr == nil && parsed.Error != "" {
			msg = fmt.Sprintf("%s: %s", msg, parsed.Error)
		}
		return ports.AgentResponse{Success: false, Error: msg}, nil
	}
	if decodeErr != nil {
		return ports.AgentResponse{Success: false, Error: fmt.Sprintf("ollama: decode response: %v", decodeErr)}, nil
	}
	if parsed.Error != "" {
		return ports.AgentResponse{Success: false, Error: "ollama: " + parsed.Error}, nil
	}

	content := parsed.Message.Content
	if strings.TrimSpace(content) == "" {
		return ports.AgentResponse{Success: false, Error: "ollama: empty response"}, nil
	}

	c.history.Record(actx.SessionID, utterance, content)
	return ports.AgentResponse{Success: true, Result: content}, nil
}
