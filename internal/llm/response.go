package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrMalformedResponse is returned when the model output is not the
	// expected JSON object.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrUnknownCategory is returned when the model picks a category that
	// is not in the allowed list.
	ErrUnknownCategory = errors.New("category not in allowed list")
)

var fenceRegex = regexp.MustCompile("(?i)```(?:json)?")

// categorization is the JSON object the model is asked to return.
type categorization struct {
	Category string `json:"category"`
	Comment  string `json:"comment"`
}

// cleanMarkdownWrapper strips Markdown code fences and any text around the
// outermost JSON object.
func cleanMarkdownWrapper(content string) string {
	s := fenceRegex.ReplaceAllString(content, "")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// parseCategorization decodes a model answer. The comment is returned even
// when the category is rejected.
func parseCategorization(content string) (categorization, error) {
	var out categorization
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &out); err != nil {
		return categorization{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out.Category = strings.TrimSpace(out.Category)
	out.Comment = strings.TrimSpace(out.Comment)
	if out.Category == "" {
		return out, fmt.Errorf("%w: empty category", ErrMalformedResponse)
	}
	return out, nil
}

// validateCategory returns the allowed spelling of category, matching
// case-insensitively.
func validateCategory(category string, allowed []string) (string, error) {
	for _, c := range allowed {
		if c == category {
			return c, nil
		}
	}
	for _, c := range allowed {
		if strings.EqualFold(c, category) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}
