// Package gemini provides an agent adapter backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ewilliams-labs/musicmate/internal/adapters/llmchat"
	"github.com/ewilliams-labs/musicmate/internal/core/ports"
)

const defaultModel = "gemini-2.0-flash"

// generator is the part of genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models  generator
	model   string
	history *llmchat.History
}

// NewClient creates a Gemini client using apiKey.
func NewClient(ctx context.Context, apiKey, model string, historyTurns int) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newClient(client.Models, model, historyTurns), nil
}

func newClient(models generator, model string, historyTurns int) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{models: models, model: model, history: llmchat.NewHistory(historyTurns)}
}

// Call implements ports.AgentCaller. Errors reported by the API come back as
// an unsuccessful response; anything else is a transport failure.
func (c *Client) Call(ctx context.Context, utterance, agentID string, actx ports.AgentContext) (ports.AgentResponse, error) {
	var (
		system   *genai.Content
		contents []*genai.Content
	)
	for _, m := range c.history.Conversation(actx.SessionID, utterance) {
		switch m.Role {
		case llmchat.RoleSystem:
			system = genai.NewContentFromText(m.Content, genai.RoleUser)
		case llmchat.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: system,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		if msg, ok := apiErrorMessage(err); ok {
			return ports.AgentResponse{Success: false, Error: "gemini: " + msg}, nil
		}
		return ports.AgentResponse{}, fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return ports.AgentResponse{Success: false, Error: "gemini: empty response"}, nil
	}

	c.history.Record(actx.SessionID, utterance, text)
	return ports.AgentResponse{Success: true, Result: text}, nil
}

func apiErrorMessage(err error) (string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%d %s", apiErr.Code, apiErr.Message), true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fmt.Sprintf("%d %s", apiErrPtr.Code, apiErrPtr.Message), true
	}
	return "", false
}
