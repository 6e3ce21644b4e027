package chat

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	dialoguePattern    = regexp.MustCompile(`(?s)<dialogue>(.*?)</dialogue>`)
	stateChangePattern = regexp.MustCompile(`(?s)<state_changes>(.*?)</state_changes>`)
	dialogueTagPattern = regexp.MustCompile(`</?dialogue>`)
)

// ParsedResponse is the structured view of one raw LLM response.
type ParsedResponse struct {
	Dialogue     string
	StateChanges StateChange
	Raw          string
}

// ParseResponse extracts the dialogue and proposed state changes from a
// raw LLM response. It never fails: a malformed state-change segment
// yields an empty StateChange, and when no dialogue segment is present
// the whole response (minus any state-change segment) is treated as
// dialogue so a misformatted reply still reaches the player.
func ParseResponse(raw string) ParsedResponse {
	parsed := ParsedResponse{Raw: raw}

	if m := stateChangePattern.FindStringSubmatch(raw); m != nil {
		var sc StateChange
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &sc); err == nil {
			parsed.StateChanges = sc
		}
	}

	if m := dialoguePattern.FindStringSubmatch(raw); m != nil {
		parsed.Dialogue = strings.TrimSpace(m[1])
		return parsed
	}

	stripped := stateChangePattern.ReplaceAllString(raw, "")
	stripped = dialogueTagPattern.ReplaceAllString(stripped, "")
	parsed.Dialogue = strings.TrimSpace(stripped)
	return parsed
}
