package llm

import (
	"context"
	"strings"
)

// keywordPrompt asks for at least 30 comma-separated keywords. Related terms
// that do not literally occur in the text are allowed.
const keywordPrompt = `Fasse den folgenden Text in mindestens 30 Schlagwörtern zusammen.
Bei Bedarf verwende thematisch passende Schlagwörter, auch wenn diese nicht unmittelbar im Text vorkommen.
Gebe die Schlagwörter als kommagetrennte Liste aus.

`

// KeywordExtractor asks the model for a keyword summary of a text.
type KeywordExtractor struct {
	completer Completer
}

// NewKeywordExtractor creates an extractor using c.
func NewKeywordExtractor(c Completer) *KeywordExtractor {
	return &KeywordExtractor{completer: c}
}

// Extract returns the model's raw reply, expected to be a comma-separated
// keyword list. The reply is not validated.
func (k *KeywordExtractor) Extract(ctx context.Context, text string) (string, error) {
	return FirstReply(ctx, k.completer, KeywordPrompt(text), Options{Temperature: 0})
}

// KeywordPrompt builds the keyword request for text.
func KeywordPrompt(text string) string {
	return keywordPrompt + text
}

// SplitKeywords splits a keyword reply on commas. With trim set, tokens are
// trimmed of surrounding whitespace and empty tokens are dropped; without it
// tokens are returned exactly as split.
func SplitKeywords(raw string, trim bool) []string {
	parts := strings.Split(raw, ",")
	if !trim {
		return parts
	}

	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
