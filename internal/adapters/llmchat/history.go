package llmchat

import "sync"

// Chat roles as the model APIs name them.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// History keeps the most recent messages of each session so stateless model
// APIs can be given the conversation so far.
type History struct {
	mu       sync.Mutex
	max      int
	sessions map[string][]Message
}

// NewHistory keeps at most max messages per session; max < 1 disables
// history.
func NewHistory(max int) *History {
	return &History{max: max, sessions: make(map[string][]Message)}
}

// Messages returns a copy of the session's history, oldest first.
func (h *History) Messages(session string) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	msgs := h.sessions[session]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Record appends one exchange to the session.
func (h *History) Record(session, user, assistant string) {
	if h.max < 1 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	msgs := append(h.sessions[session],
		Message{Role: RoleUser, Content: user},
		Message{Role: RoleAssistant, Content: assistant},
	)
	if over := len(msgs) - h.max; over > 0 {
		msgs = append([]Message(nil), msgs[over:]...)
	}
	h.sessions[session] = msgs
}

// Conversation is the full message list for a new user utterance: the
// system prompt, the session history and the utterance.
func (h *History) Conversation(session, utterance string) []Message {
	msgs := []Message{{Role: RoleSystem, Content: SystemPrompt}}
	msgs = append(msgs, h.Messages(session)...)
	return append(msgs, Message{Role: RoleUser, Content: utterance})
}
