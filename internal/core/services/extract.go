package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// payloadKeys are the top-level fields of the agent's structured reply.
var payloadKeys = []string{"message", "tracks", "playlist_action"}

// wrapperKeys are envelope fields some agent runtimes use to carry the
// model's text instead of returning it bare.
var wrapperKeys = []string{"text", "response", "content", "output", "result"}

var (
	fencePattern  = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)```")
	markerPattern = regexp.MustCompile("```[A-Za-z0-9_-]*")
)

// payload is a structured reply recovered from agent output. prose holds
// whatever text surrounded the JSON block, if the payload came from text.
type payload struct {
	fields map[string]any
	prose  string
}

// extractor is one attempt at recovering a payload.
type extractor func(raw any) (payload, bool)

// extractionPipeline is ordered from strict to permissive.
var extractionPipeline = []extractor{
	fromObject,
	fromText,
}

func extractPayload(raw any) (payload, bool) {
	for _, attempt := range extractionPipeline {
		if p, ok := attempt(raw); ok {
			return p, true
		}
	}
	return payload{}, false
}

// fromObject accepts a value that is already a decoded object.
func fromObject(raw any) (payload, bool) {
	obj, ok := asObject(raw)
	if !ok || !hasPayloadKey(obj) {
		return payload{}, false
	}
	return payload{fields: obj}, true
}

// fromText digs a JSON object out of free text.
func fromText(raw any) (payload, bool) {
	text, ok := asText(raw)
	if !ok {
		return payload{}, false
	}
	return extractFromText(text, 0)
}

func extractFromText(text string, depth int) (payload, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return payload{}, false
	}

	// whole reply is JSON
	var whole any
	if err := json.Unmarshal([]byte(trimmed), &whole); err == nil {
		switch v := whole.(type) {
		case map[string]any:
			if hasPayloadKey(v) {
				return payload{fields: v}, true
			}
		case string:
			// double-encoded reply
			if depth == 0 {
				return extractFromText(v, depth+1)
			}
		}
	}

	// fenced code blocks
	for _, loc := range fencePattern.FindAllStringSubmatchIndex(text, -1) {
		body := text[loc[2]:loc[3]]
		if obj, ok := decodeObject(body); ok && hasPayloadKey(obj) {
			return payload{fields: obj, prose: surroundingProse(text, loc[0], loc[1])}, true
		}
	}

	// balanced spans anywhere in the text
	for _, span := range findObjectSpans(text) {
		if obj, ok := decodeObject(text[span[0]:span[1]]); ok && hasPayloadKey(obj) {
			return payload{fields: obj, prose: surroundingProse(text, span[0], span[1])}, true
		}
	}

	return payload{}, false
}

// decodeObject tries progressively more forgiving decoders on a candidate
// object literal.
func decodeObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		if obj, ok := v.(map[string]any); ok {
			return obj, true
		}
	}

	var r any
	if err := json.Unmarshal([]byte(repairJSON(s)), &r); err == nil {
		if obj, ok := r.(map[string]any); ok {
			return obj, true
		}
	}

	// YAML flow syntax accepts most of what is left, such as bare string
	// values. It folds raw newlines in strings, so it runs last.
	var y any
	if err := yaml.Unmarshal([]byte(s), &y); err == nil {
		if obj, ok := asObject(normalizeYAML(y)); ok {
			return obj, true
		}
	}

	return nil, false
}

// findObjectSpans returns the [start, end) offsets of every top-level
// balanced {...} span. Quotes only delimit strings inside a span, so
// apostrophes in surrounding prose do not confuse the scan. A brace that
// never closes is treated as prose and the scan resumes right after it.
func findObjectSpans(s string) [][2]int {
	var spans [][2]int
	for offset := 0; offset < len(s); {
		found, open := scanObjectSpans(s[offset:])
		for _, span := range found {
			spans = append(spans, [2]int{span[0] + offset, span[1] + offset})
		}
		if open < 0 {
			break
		}
		offset += open + 1
	}
	return spans
}

// scanObjectSpans makes one pass over s. open is the start of a span still
// unclosed at the end of s, or -1.
func scanObjectSpans(s string) (spans [][2]int, open int) {
	depth := 0
	start := -1
	var quote byte
	escape := false

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if quote != 0 {
			if b == '\\' {
				escape = true
			} else if b == quote {
				quote = 0
			}
			continue
		}

		switch b {
		case '"', '\'':
			if depth > 0 {
				quote = b
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					spans = append(spans, [2]int{start, i + 1})
					start = -1
				}
			}
		}
	}

	if depth > 0 {
		return spans, start
	}
	return spans, -1
}

// repairJSON rewrites common model slips into strict JSON: single-quoted
// strings, unquoted keys, Python literals, raw control characters inside
// strings and trailing commas.
func repairJSON(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 16)

	var quote byte
	for i := 0; i < len(s); i++ {
		b := s[i]

		if quote != 0 {
			switch {
			case b == '\\' && i+1 < len(s):
				next := s[i+1]
				i++
				if quote == '\'' && next == '\'' {
					out.WriteByte('\'')
					continue
				}
				out.WriteByte('\\')
				out.WriteByte(next)
			case b == quote:
				out.WriteByte('"')
				quote = 0
			case b == '"':
				out.WriteString(`\"`)
			case b == '\n':
				out.WriteString(`\n`)
			case b == '\r':
				out.WriteString(`\r`)
			case b == '\t':
				out.WriteString(`\t`)
			default:
				out.WriteByte(b)
			}
			continue
		}

		switch {
		case b == '"' || b == '\'':
			quote = b
			out.WriteByte('"')
		case b == ',':
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
			out.WriteByte(b)
		case isWordStart(b):
			j := i
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			word := s[i:j]
			i = j - 1
			switch word {
			case "None", "null", "NaN", "undefined":
				out.WriteString("null")
			case "True", "true":
				out.WriteString("true")
			case "False", "false":
				out.WriteString("false")
			default:
				k := j
				for k < len(s) && isSpace(s[k]) {
					k++
				}
				if k < len(s) && s[k] == ':' {
					out.WriteString(`"` + word + `"`)
				} else {
					out.WriteString(word)
				}
			}
		default:
			out.WriteByte(b)
		}
	}

	return out.String()
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}

func isWordStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isWordByte(b byte) bool {
	return isWordStart(b) || (b >= '0' && b <= '9')
}

func surroundingProse(text string, start, end int) string {
	var parts []string
	for _, part := range []string{text[:start], text[end:]} {
		part = strings.TrimSpace(markerPattern.ReplaceAllString(part, ""))
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// hasPayloadKey reports whether obj sets at least one recognised field.
// A bare key such as {message} in prose decodes as YAML with a nil value
// and does not count.
func hasPayloadKey(obj map[string]any) bool {
	for _, k := range payloadKeys {
		if v, ok := obj[k]; ok && v != nil {
			return true
		}
	}
	return false
}

func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		obj, ok := normalizeYAML(v).(map[string]any)
		return obj, ok
	default:
		return nil, false
	}
}

// asText returns the textual form of raw, looking one level into common
// envelope objects.
func asText(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.RawMessage:
		return string(v), true
	}

	obj, ok := asObject(raw)
	if !ok {
		return "", false
	}
	for _, k := range wrapperKeys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// normalizeYAML converts map[any]any nodes produced by the YAML decoder
// into map[string]any so the rest of the pipeline sees JSON shapes.
func normalizeYAML(v any) any {
	switch n := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeYAML(val)
		}
		return out
	case map[string]any:
		for k, val := range n {
			n[k] = normalizeYAML(val)
		}
		return n
	case []any:
		for i := range n {
			n[i] = normalizeYAML(n[i])
		}
		return n
	default:
		return v
	}
}
