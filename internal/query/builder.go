// Package query builds GitHub advanced search query strings from parsed
// intent and caller filters. Everything here is pure and deterministic.
package query

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/lxlab/oss-scout/internal/models"
)

// Build assembles one advanced query string. The keywords are joined as
// plain terms (GitHub ANDs qualifiers but matches any term), scoped with an
// in: qualifier to the enabled fields; star, recency and language qualifiers
// are appended after the terms. When intent carries no keywords at all, the
// raw query is used as a single quoted phrase so the search is never empty.
func Build(intent models.Intent, filters models.Filters, rawQuery string, now time.Time) string {
	keywords := intent.Keywords
	if len(keywords) == 0 {
		keywords = []string{rawQuery}
	}

	parts := make([]string, 0, len(keywords)+6)
	for _, kw := range keywords {
		parts = append(parts, quoteTerm(kw))
	}

	if scope := scopeQualifier(filters); scope != "" {
		parts = append(parts, scope)
	}

	for _, lang := range intent.Languages {
		parts = append(parts, "language:"+lang)
	}

	if filters.PushedWithinDays > 0 {
		cutoff := now.UTC().AddDate(0, 0, -filters.PushedWithinDays)
		parts = append(parts, "pushed:>="+cutoff.Format("2006-01-02"))
	}

	if filters.MinStars > 0 {
		parts = append(parts, fmt.Sprintf("stars:>=%d", filters.MinStars))
	}

	if filters.IncludeTopics {
		for _, kw := range keywords {
			if !strings.Contains(kw, " ") && isASCII(kw) {
				parts = append(parts, "topic:"+strings.ToLower(kw))
			}
		}
	}

	return strings.Join(parts, " ")
}

// scopeQualifier maps the include flags to an in: qualifier. Topics are
// handled separately via topic: qualifiers. With no text field enabled the
// search defaults to description and readme.
func scopeQualifier(filters models.Filters) string {
	scopes := make([]string, 0, 3)
	if filters.IncludeName {
		scopes = append(scopes, "name")
	}
	if filters.IncludeDescription {
		scopes = append(scopes, "description")
	}
	if filters.IncludeReadme {
		scopes = append(scopes, "readme")
	}
	if len(scopes) == 0 {
		scopes = []string{"description", "readme"}
	}
	return "in:" + strings.Join(scopes, ",")
}

// quoteTerm quotes terms containing whitespace or query-syntax-significant
// characters. Embedded double quotes are dropped since GitHub's search
// syntax has no escape for them.
func quoteTerm(term string) string {
	term = strings.ReplaceAll(term, `"`, "")
	if strings.ContainsAny(term, " \t:><=@") {
		return `"` + term + `"`
	}
	return term
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
