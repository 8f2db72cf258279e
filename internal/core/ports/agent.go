package ports

import "context"

// AgentContext travels with every agent call.
type AgentContext struct {
	SessionID string `json:"session_id"`
}

// AgentResponse is the envelope returned by a remote agent. When Success is
// false, Error and Message may explain why. Result is the raw payload and is
// untrusted: it may be a string, a decoded JSON value, or nothing.
type AgentResponse struct {
	Success bool
	Result  any
	Message string
	Error   string
}

// AgentCaller sends one utterance to a remote agent. A returned error is a
// transport failure; a reported failure comes back as Success == false.
type AgentCaller interface {
	Call(ctx context.Context, utterance, agentID string, actx AgentContext) (AgentResponse, error)
}
