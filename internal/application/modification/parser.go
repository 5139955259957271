package modification

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/healthymeal/v2/internal/domain/modification"
	apperrors "github.com/healthymeal/v2/pkg/errors"
)

// ParsedModification is the validated intermediate form of the model's
// structured answer. All fields are guaranteed populated; the parser
// never returns a partial result.
type ParsedModification struct {
	Title          string
	Ingredients    string
	Instructions   string
	ChangesSummary []modification.ChangeEntry
}

// ParseModification extracts and validates the model's JSON payload.
// Models wrap JSON in prose despite instructions, so the parser first
// tries the greedy span from the first '{' to the last '}'. If that span
// does not parse (for example when the response embeds two separate
// objects), it falls back to the first balanced top-level object before
// giving up. Any failure yields an error naming the field or parse step
// that failed.
func ParseModification(raw string) (*ParsedModification, error) {
	candidate, ok := extractJSONObject(raw)
	if !ok {
		candidate = raw
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, parseError(fmt.Sprintf("response is not a JSON object: %v", err))
	}

	title, err := requiredString(fields, "title")
	if err != nil {
		return nil, err
	}
	ingredients, err := requiredString(fields, "ingredients")
	if err != nil {
		return nil, err
	}
	instructions, err := requiredString(fields, "instructions")
	if err != nil {
		return nil, err
	}

	rawChanges, present := fields["changes_summary"]
	if !present {
		return nil, parseError("missing 'changes_summary' field")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(rawChanges, &elements); err != nil {
		return nil, parseError("'changes_summary' is not an array")
	}

	// Element shapes are best-effort: the model's structural compliance
	// is not guaranteed, so malformed entries are dropped rather than
	// failing the whole response.
	changes := make([]modification.ChangeEntry, 0, len(elements))
	for _, element := range elements {
		var entry modification.ChangeEntry
		if err := json.Unmarshal(element, &entry); err != nil {
			continue
		}
		changes = append(changes, entry)
	}

	return &ParsedModification{
		Title:          title,
		Ingredients:    ingredients,
		Instructions:   instructions,
		ChangesSummary: changes,
	}, nil
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, present := fields[name]
	if !present {
		return "", parseError(fmt.Sprintf("missing '%s' field", name))
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", parseError(fmt.Sprintf("'%s' is not a string", name))
	}
	if strings.TrimSpace(value) == "" {
		return "", parseError(fmt.Sprintf("'%s' is empty", name))
	}
	return value, nil
}

func parseError(reason string) error {
	return apperrors.NewAIResponseInvalidError("failed to parse model response: " + reason)
}

// extractJSONObject locates a JSON object span inside raw. The greedy
// first-'{' to last-'}' span is preferred; when it is not valid JSON the
// first balanced top-level object is tried instead.
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}

	greedy := raw[start : end+1]
	if json.Valid([]byte(greedy)) {
		return greedy, true
	}

	if balanced, ok := firstBalancedObject(raw[start:]); ok {
		return balanced, true
	}

	return greedy, true
}

// firstBalancedObject scans for the first brace-balanced object,
// ignoring braces inside JSON string literals.
func firstBalancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := s[:i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}

	return "", false
}
