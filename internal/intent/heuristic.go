package intent

import (
	"strings"

	"github.com/lxlab/oss-scout/internal/models"
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"of": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "against": true, "between": true, "into": true,
	"through": true, "during": true, "before": true, "after": true,
	"to": true, "from": true, "in": true, "on": true,
	"i": true, "me": true, "my": true, "need": true, "want": true,
	"looking": true, "find": true, "some": true, "that": true,
}

var knownLanguages = map[string]bool{
	"python": true, "java": true, "javascript": true, "typescript": true,
	"go": true, "rust": true, "php": true, "c++": true, "c#": true,
	"swift": true, "kotlin": true, "dart": true, "ruby": true, "scala": true,
	"elixir": true, "haskell": true, "lua": true, "zig": true,
}

// HeuristicParse is the deterministic fallback: significant tokens of the raw
// query become keywords and any mention of a well-known language becomes a
// language hint. Worst case it returns the raw query itself as the single
// keyword, so the result is never empty.
func HeuristicParse(rawQuery string) models.Intent {
	var intent models.Intent

	for _, token := range tokenize(rawQuery) {
		if knownLanguages[token] {
			if !contains(intent.Languages, token) {
				intent.Languages = append(intent.Languages, token)
			}
			continue
		}
		intent.Keywords = append(intent.Keywords, token)
		if len(intent.Keywords) == maxKeywords {
			break
		}
	}

	if len(intent.Keywords) == 0 {
		trimmed := strings.TrimSpace(rawQuery)
		if trimmed != "" {
			intent.Keywords = []string{trimmed}
		}
	}

	return intent
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	s = removePunctuation(s)

	tokens := []string{}
	for _, word := range strings.Fields(s) {
		if !stopWords[word] && len(word) > 1 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func removePunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(".,!?;:()[]{}\"'，", r) {
			return -1
		}
		return r
	}, s)
}
