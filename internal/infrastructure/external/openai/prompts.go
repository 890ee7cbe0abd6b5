package openai

import "fmt"

const systemPrompt = "You are a copy editor for an editorial team. Review the " +
	"submitted text for grammar, clarity and style. Your remarks are advisory " +
	"only. Always respond with valid JSON wrapped in ```json and ``` markers."

func buildSuggestPrompt(body string) string {
	return fmt.Sprintf(`Review the following document text and suggest copy edits:

%s

Please respond with ONLY a valid JSON object (no markdown, no explanation). The JSON must have this exact structure:
{
  "suggestions": [
    {
      "span": "the exact text fragment the remark applies to",
      "comment": "the suggested improvement"
    }
  ]
}

Limit yourself to the most important suggestions. Return an empty suggestions array if the text needs no edits.`, body)
}
