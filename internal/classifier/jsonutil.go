package classifier

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencePattern         = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\s*```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSON pulls the JSON document out of a model answer. Models asked for
// strict JSON still wrap it in markdown fences or surround it with prose.
// The object span is preferred over brackets in the prose unless the answer
// itself is an array. A span that parses beats one that does not.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(s); len(m) > 1 {
		s = strings.TrimSpace(m[1])
	}

	candidates := []string{span(s, '{', '}'), span(s, '[', ']')}
	if strings.HasPrefix(s, "[") {
		candidates[0], candidates[1] = candidates[1], candidates[0]
	}
	for _, doc := range candidates {
		if doc != "" && json.Valid([]byte(doc)) {
			return doc
		}
	}
	for _, doc := range candidates {
		if doc != "" {
			return doc
		}
	}
	return ""
}

func span(s string, open, closer byte) string {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return ""
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return ""
	}
	return s[start : end+1]
}

// decodeJSON unmarshals the extracted document into out. Trailing commas are
// stripped only on a retry, so commas inside string values survive a valid
// answer.
func decodeJSON(content string, out any) error {
	doc := extractJSON(content)
	if doc == "" {
		return errNoJSON
	}
	err := json.Unmarshal([]byte(doc), out)
	if err == nil {
		return nil
	}
	cleaned := trailingCommaPattern.ReplaceAllString(doc, "$1")
	if cleaned == doc {
		return err
	}
	return json.Unmarshal([]byte(cleaned), out)
}
