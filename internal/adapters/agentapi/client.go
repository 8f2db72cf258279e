// Package agentapi calls a hosted agent over its JSON envelope API.
package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/musicmate/internal/core/ports"
)

const maxBodyBytes = 4 << 20

type Client struct {
	endpoint    string
	httpClient  *http.Client
	maxAttempts int
	baseBackoff time.Duration
	logger      *zap.Logger
}

type callRequest struct {
	Message   string `json:"message"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
}

type callResponse struct {
	Success  bool `json:"success"`
	Response struct {
		Result  any    `json:"result"`
		Message string `json:"message"`
	} `json:"response"`
	Error string `json:"error"`
}

// NewClient creates a client posting to endpoint. A non-empty apiKey is
// sent as a bearer token. maxAttempts < 1 means one attempt.
func NewClient(endpoint, apiKey string, timeout time.Duration, maxAttempts int, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: timeout}
	if apiKey != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = timeout
	}

	return &Client{
		endpoint:    endpoint,
		httpClient:  httpClient,
		maxAttempts: maxAttempts,
		baseBackoff: defaultBackoff,
		logger:      logger,
	}
}

// Call implements ports.AgentCaller.
func (c *Client) Call(ctx context.Context, utterance, agentID string, actx ports.AgentContext) (ports.AgentResponse, error) {
	body, err := json.Marshal(callRequest{Message: utterance, AgentID: agentID, SessionID: actx.SessionID})
	if err != nil {
		return ports.AgentResponse{}, fmt.Errorf("agentapi: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.AgentResponse{}, fmt.Errorf("agentapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return ports.AgentResponse{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ports.AgentResponse{}, fmt.Errorf("agentapi: read response: %w", err)
	}

	var parsed callResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return ports.AgentResponse{Success: false, Error: fmt.Sprintf("agentapi: unexpected status %d", resp.StatusCode)}, nil
		}
		return ports.AgentResponse{Success: false, Error: fmt.Sprintf("agentapi: decode response: %v", err)}, nil
	}

	out := ports.AgentResponse{
		Success: parsed.Success,
		Result:  parsed.Response.Result,
		Message: parsed.Response.Message,
		Error:   parsed.Error,
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out.Success = false
		if strings.TrimSpace(out.Error) == "" {
			out.Error = fmt.Sprintf("agentapi: unexpected status %d", resp.StatusCode)
		}
	}
	return out, nil
}
