package generator

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a helpful assistant that outputs strictly valid JSON."

const promptTemplate = `You are an expert blog writer. Write a comprehensive, engaging blog post.

**Configuration:**
- **Topic/Niche:** %s
- **Approximate Word Count:** %d words
- **Tone:** %s
- **Additional Instructions:** %s

**Requirements:**
1. Write a catchy, SEO-friendly title.
2. Write the full blog content in HTML format (use <h2>, <p>, <ul>, <li>, etc., but NO <html>, <head>, or <body> tags).
3. Ensure the content is well-structured with headings and paragraphs.

**Output Format:**
You must strictly output ONLY a valid JSON object in the following format, with no markdown code fences or other text:
{
    "title": "Your Web-Optimized Title Here",
    "content": "<h2>Introduction</h2><p>Your HTML content here...</p>"
}`

// BuildPrompt renders the user prompt for req.
func BuildPrompt(req Request) string {
	tone := req.Tone
	if tone == "" {
		tone = DefaultTone
	}
	return fmt.Sprintf(promptTemplate,
		strings.TrimSpace(req.Topic),
		req.WordCount,
		tone,
		strings.TrimSpace(req.Instructions),
	)
}
