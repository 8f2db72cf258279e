package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ActionKind is the verb of a playlist command emitted by the agent.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionAdd    ActionKind = "add"
	ActionRemove ActionKind = "remove"
	ActionRename ActionKind = "rename"
	ActionList   ActionKind = "list"
)

// ParseActionKind matches the wire value exactly; the vocabulary is case-sensitive.
func ParseActionKind(s string) (ActionKind, bool) {
	switch k := ActionKind(s); k {
	case ActionCreate, ActionAdd, ActionRemove, ActionRename, ActionList:
		return k, true
	default:
		return "", false
	}
}

// PlaylistAction is a transient command attached to a single agent turn.
// TrackIndices are 1-based.
type PlaylistAction struct {
	Kind         ActionKind `json:"action"`
	PlaylistName string     `json:"playlist_name"`
	TrackIndices []int      `json:"track_indices"`
}

// ParseAction builds a PlaylistAction from an untyped payload. Shapes that
// do not carry a recognised action verb are reported as absent.
func ParseAction(raw any) (*PlaylistAction, bool) {
	var fields func(string) any
	switch v := raw.(type) {
	case PlaylistAction:
		return ParseAction(&v)
	case *PlaylistAction:
		if v == nil {
			return nil, false
		}
		kind, ok := ParseActionKind(string(v.Kind))
		if !ok {
			return nil, false
		}
		indices := make([]int, len(v.TrackIndices))
		copy(indices, v.TrackIndices)
		return &PlaylistAction{Kind: kind, PlaylistName: strings.TrimSpace(v.PlaylistName), TrackIndices: indices}, true
	case map[string]any:
		fields = func(k string) any { return v[k] }
	case map[any]any:
		fields = func(k string) any { return v[k] }
	default:
		return nil, false
	}

	verb, ok := fields("action").(string)
	if !ok {
		return nil, false
	}
	kind, ok := ParseActionKind(strings.TrimSpace(verb))
	if !ok {
		return nil, false
	}

	return &PlaylistAction{
		Kind:         kind,
		PlaylistName: coerceString(fields("playlist_name")),
		TrackIndices: coerceIndices(fields("track_indices")),
	}, true
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func coerceIndices(v any) []int {
	switch list := v.(type) {
	case nil:
		return []int{}
	case []int:
		out := make([]int, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]int, 0, len(list))
		for _, item := range list {
			if n, ok := coerceInt(item); ok {
				out = append(out, n)
			}
		}
		return out
	default:
		// a lone scalar is read as a one-element list
		if n, ok := coerceInt(list); ok {
			return []int{n}
		}
		return []int{}
	}
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i > math.MaxInt32 || i < math.MinInt32 {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
