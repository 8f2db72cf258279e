package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/musicmate/internal/core/domain"
	"github.com/ewilliams-labs/musicmate/internal/core/ports"
)

var (
	ErrEmptyUtterance = errors.New("service: empty utterance")
	ErrSampleMode     = errors.New("service: chat is disabled in sample mode")
	ErrTurnInFlight   = errors.New("service: a request is already in flight")
)

// Assistant replies used when the agent call does not produce a result.
const (
	NetworkErrorReply = "A network error occurred. Please check your connection and try again."
	AgentErrorReply   = "I had trouble processing that request. Please try again."
	GenericError      = "Something went wrong. Please try again."
)

// suggestionThreshold is the minimum Jaro-Winkler similarity for a
// "did you mean" hint on an unmatched playlist name.
const suggestionThreshold = 0.8

// Reply is the result of one conversational turn.
type Reply struct {
	Turn      domain.ChatTurn   `json:"turn"`
	Playlists []domain.Playlist `json:"playlists"`
	// Notice acknowledges the playlist action carried by the turn, if any.
	Notice string `json:"notice,omitempty"`
	// Error is set when the agent call failed.
	Error string `json:"error,omitempty"`
}

// Orchestrator coordinates the agent, the interpreter and the store for
// one conversation.
type Orchestrator struct {
	agent    ports.AgentCaller
	store    *Store
	resolver ports.LinkResolver
	agentID  string
	logger   *zap.Logger

	inFlight atomic.Bool
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(agent ports.AgentCaller, store *Store, agentID string, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		agent:   agent,
		store:   store,
		agentID: agentID,
		logger:  logger,
	}
}

// WithLinkResolver enables link lookup for recommended tracks that arrive
// without a URL.
func (o *Orchestrator) WithLinkResolver(r ports.LinkResolver) *Orchestrator {
	o.resolver = r
	return o
}

func (o *Orchestrator) Store() *Store {
	return o.store
}

// Send records the user's utterance, asks the agent and commits its reply.
// Agent failures are reported in-band through Reply.Error; the returned
// error covers only requests that were not accepted.
func (o *Orchestrator) Send(ctx context.Context, utterance string) (Reply, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return Reply{}, ErrEmptyUtterance
	}
	if o.store.SampleMode() {
		return Reply{}, ErrSampleMode
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		return Reply{}, ErrTurnInFlight
	}
	defer o.inFlight.Store(false)

	o.store.AppendTurn(ctx, domain.ChatTurn{Role: domain.RoleUser, Content: utterance})
	session := o.store.SessionID(ctx)

	resp, err := o.agent.Call(ctx, utterance, o.agentID, ports.AgentContext{SessionID: session})
	if err != nil {
		o.logger.Warn("service: agent call failed", zap.String("agent_id", o.agentID), zap.Error(err))
		return o.failedReply(ctx, NetworkErrorReply, err.Error()), nil
	}
	if !resp.Success {
		reason := firstNonBlank(resp.Error, resp.Message, GenericError)
		o.logger.Warn("service: agent reported failure", zap.String("agent_id", o.agentID), zap.String("reason", reason))
		return o.failedReply(ctx, AgentErrorReply, reason), nil
	}

	in := Interpret(resp.Result, resp.Message)
	if !in.Structured {
		o.logger.Debug("service: agent reply had no structured payload")
	}

	turn, out := o.store.CommitAssistantTurn(ctx, domain.ChatTurn{
		Role:           domain.RoleAssistant,
		Content:        in.Message,
		Tracks:         o.enrich(ctx, in.Tracks),
		PlaylistAction: in.Action,
	})

	return Reply{
		Turn:      turn,
		Playlists: out.Playlists,
		Notice:    describe(in.Action, out),
	}, nil
}

// InFlight reports whether an agent call is outstanding.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

func (o *Orchestrator) failedReply(ctx context.Context, content, reason string) Reply {
	turn := o.store.AppendTurn(ctx, domain.ChatTurn{Role: domain.RoleAssistant, Content: content})
	return Reply{
		Turn:      turn,
		Playlists: o.store.Playlists(),
		Error:     reason,
	}
}

// enrich fills in missing links. Lookup failures leave the track as is.
func (o *Orchestrator) enrich(ctx context.Context, tracks []domain.Track) []domain.Track {
	if o.resolver == nil || len(tracks) == 0 {
		return tracks
	}
	out := make([]domain.Track, len(tracks))
	for i, t := range tracks {
		out[i] = t
		if t.URL != "" || t.Title == domain.UnknownTitle {
			continue
		}
		link, err := o.resolver.ResolveLink(ctx, t.Title, t.Artist)
		if err != nil {
			o.logger.Debug("service: link lookup failed",
				zap.String("title", t.Title),
				zap.String("artist", t.Artist),
				zap.Error(err),
			)
			continue
		}
		out[i] = t.WithURL(link)
	}
	return out
}

// describe builds the acknowledgment shown after a playlist action.
func describe(action *domain.PlaylistAction, out Outcome) string {
	if action == nil {
		return ""
	}
	if action.Kind == domain.ActionList {
		return countPlaylists(len(out.Playlists))
	}
	if action.PlaylistName == "" {
		return ""
	}
	if out.Target == nil {
		return noMatch(action.PlaylistName, out.Playlists)
	}

	name := out.Target.Name
	switch action.Kind {
	case domain.ActionCreate:
		return fmt.Sprintf("Playlist %q created", name)
	case domain.ActionAdd:
		if out.Added == 0 {
			return fmt.Sprintf("No new tracks added to %q", name)
		}
		return fmt.Sprintf("Tracks added to %q", name)
	case domain.ActionRemove:
		if out.Removed == 0 {
			return fmt.Sprintf("No tracks removed from %q", name)
		}
		return fmt.Sprintf("Tracks removed from %q", name)
	case domain.ActionRename:
		return fmt.Sprintf("Renaming %q is not supported yet", name)
	default:
		return ""
	}
}

func countPlaylists(n int) string {
	if n == 1 {
		return "You have 1 playlist"
	}
	return fmt.Sprintf("You have %d playlists", n)
}

func noMatch(name string, playlists []domain.Playlist) string {
	msg := fmt.Sprintf("No playlist named %q", name)
	if s := closestName(name, playlists); s != "" {
		msg += fmt.Sprintf(". Did you mean %q?", s)
	}
	return msg
}

// closestName returns the most similar existing playlist name, or "" when
// nothing is close enough.
func closestName(name string, playlists []domain.Playlist) string {
	query := strings.ToLower(strings.TrimSpace(name))
	metric := metrics.NewJaroWinkler()

	best := ""
	bestScore := 0.0
	for _, p := range playlists {
		score := strutil.Similarity(query, strings.ToLower(p.Name), metric)
		if score > bestScore && score >= suggestionThreshold {
			best = p.Name
			bestScore = score
		}
	}
	return best
}
