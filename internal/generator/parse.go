package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NoTitle replaces an empty or missing title.
const NoTitle = "No Title"

// ParsePost extracts a Post from model output. Markdown fences are removed
// first; then the whole text is decoded, and failing that the span between
// the first '{' and the last '}'. Anything else is a *ParseError.
func ParsePost(text string) (Post, error) {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	if post, ok := decodeObject(text); ok {
		return post, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if post, ok := decodeObject(text[start : end+1]); ok {
			return post, nil
		}
	}

	return Post{}, &ParseError{Raw: text}
}

func decodeObject(s string) (Post, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return Post{}, false
	}
	post := Post{
		Title:   stringField(obj["title"]),
		Content: stringField(obj["content"]),
	}
	if strings.TrimSpace(post.Title) == "" {
		post.Title = NoTitle
	}
	return post, true
}

func stringField(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
