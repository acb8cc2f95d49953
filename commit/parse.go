package commit

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/birmacher/ai-commit-generator/model"
	"github.com/cockroachdb/errors"
)

// fencePattern matches ``` markers with an optional json tag and the newline after them
var fencePattern = regexp.MustCompile("(?i)```(?:json)?[ \t]*\r?\n?")

var (
	errNoJSONObject    = errors.New("no JSON object found in response")
	errMissingMessage  = errors.New("commitMessage must be a non-empty string")
	errBadAlternatives = errors.New("alternatives must be an array of strings")
	errBadBody         = errors.New("body must be a string")
)

// CleanResponse trims raw and removes every markdown fence marker, wherever
// it appears.
func CleanResponse(raw string) string {
	cleaned := fencePattern.ReplaceAllString(strings.TrimSpace(raw), "")
	return strings.TrimSpace(cleaned)
}

// ExtractJSONObject locates a JSON object inside text.
//
// Every '{' is tried in order with a balanced-brace scan that skips braces
// inside string literals; the first candidate that is valid JSON wins. Braces
// in surrounding prose therefore do not break extraction. When no candidate
// is valid the first balanced candidate is returned so the caller reports the
// parse error, and when nothing balances the span from the first '{' to the
// last '}' is returned. ok is false only when text has no such span.
func ExtractJSONObject(text string) (string, bool) {
	first := ""
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end > 0 {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
			if first == "" {
				first = candidate
			}
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	if first != "" {
		return first, true
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// matchingBrace returns the index of the '}' closing the '{' at start, or -1
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
				return i
			}
		}
	}
	return -1
}

// ParseResult turns the raw upstream reply into a validated CommitResult.
// Every failure is a MalformedUpstreamResponse carrying the raw text.
func ParseResult(raw string) (model.CommitResult, error) {
	object, ok := ExtractJSONObject(CleanResponse(raw))
	if !ok {
		return model.CommitResult{}, malformed(MsgNoJSON, raw, errNoJSONObject)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return model.CommitResult{}, malformed(MsgNoJSON, raw, errors.Wrap(err, "decode response JSON"))
	}

	var result model.CommitResult

	if err := decodeString(fields["commitMessage"], &result.CommitMessage); err != nil || strings.TrimSpace(result.CommitMessage) == "" {
		return model.CommitResult{}, malformed(MsgInvalidStructure, raw, errMissingMessage)
	}

	rawAlternatives, ok := fields["alternatives"]
	if !ok || isNull(rawAlternatives) {
		return model.CommitResult{}, malformed(MsgInvalidStructure, raw, errBadAlternatives)
	}
	if err := json.Unmarshal(rawAlternatives, &result.Alternatives); err != nil {
		return model.CommitResult{}, malformed(MsgInvalidStructure, raw, errors.Mark(err, errBadAlternatives))
	}
	if result.Alternatives == nil {
		result.Alternatives = []string{}
	}

	if rawBody, ok := fields["body"]; ok && !isNull(rawBody) {
		if err := json.Unmarshal(rawBody, &result.Body); err != nil {
			return model.CommitResult{}, malformed(MsgInvalidStructure, raw, errors.Mark(err, errBadBody))
		}
	}

	return result, nil
}

func decodeString(raw json.RawMessage, dst *string) error {
	if raw == nil || isNull(raw) {
		return errMissingMessage
	}
	return json.Unmarshal(raw, dst)
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func malformed(message, raw string, cause error) *GenerationError {
	gerr := newError(MalformedUpstreamResponse, message, cause)
	gerr.Raw = raw
	return gerr
}
