package summarizer

import (
	"encoding/json"
	"errors"
	"strings"

	"blogpulse/internal/domain/entity"
	"blogpulse/internal/usecase/ingest"
)

// summaryPayload mirrors the JSON object the summarization prompt requests.
// bullet_points and keywords are decoded leniently: a missing key or a
// non-array value degrades to empty rather than failing the parse.
type summaryPayload struct {
	ExecutiveSummary string          `json:"executive_summary"`
	TechnicalSummary string          `json:"technical_summary"`
	BulletPoints     json.RawMessage `json:"bullet_points"`
	Keywords         json.RawMessage `json:"keywords"`
}

// ParseSummaryResponse turns a raw LLM response into a validated Summary.
// The parser is deliberately forgiving about transport noise: code fences
// of any language tag are stripped and the first balanced JSON object in
// the remainder is used. Malformed JSON, or a summary that fails the
// length invariants, surfaces as a SummaryParseError for the post.
func ParseSummaryResponse(post *entity.Post, response string) (*entity.Summary, error) {
	cleaned := stripCodeFences(response)
	object := firstJSONObject(cleaned)
	if object == "" {
		return nil, &ingest.SummaryParseError{
			PostID: post.ID,
			Cause:  errors.New("no JSON object in response"),
		}
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(object), &payload); err != nil {
		return nil, &ingest.SummaryParseError{PostID: post.ID, Cause: err}
	}

	summary, err := entity.NewSummary(post,
		payload.ExecutiveSummary,
		payload.TechnicalSummary,
		lenientStringSlice(payload.BulletPoints),
		lenientStringSlice(payload.Keywords))
	if err != nil {
		return nil, &ingest.SummaryParseError{PostID: post.ID, Cause: err}
	}
	return summary, nil
}

// stripCodeFences removes a surrounding markdown code fence, tolerating any
// language tag after the opening backticks.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// firstJSONObject extracts the first balanced {...} substring, tracking
// string literals and escapes so braces inside values do not confuse the
// scan. Returns "" when no balanced object exists.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// lenientStringSlice decodes a JSON array of strings, treating anything
// else (missing, null, wrong type, mixed elements) as empty or partial.
func lenientStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}
