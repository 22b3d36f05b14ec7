package filing

import (
	"regexp"
	"strings"
)

// keywordMatcher matches one keyword against text with word-boundary
// semantics: a case-insensitive occurrence bounded on each side by either a
// string edge or a non-alphanumeric character. Plain substring matching
// would let a short token like "CS" fire inside "CSV"; requiring word
// boundaries keeps short keywords usable.
type keywordMatcher struct {
	keyword string
	re      *regexp.Regexp
}

// newKeywordMatcher precompiles the boundary pattern for a keyword.
// Keywords may contain spaces ("call sheet"); they are matched literally.
func newKeywordMatcher(keyword string) *keywordMatcher {
	pattern := `(?i)(^|[^a-z0-9])` + regexp.QuoteMeta(keyword) + `([^a-z0-9]|$)`
	return &keywordMatcher{
		keyword: keyword,
		re:      regexp.MustCompile(pattern),
	}
}

func (m *keywordMatcher) matches(text string) bool {
	return m.re.MatchString(text)
}

// MatchKeyword reports whether keyword occurs in text bounded by string
// edges or non-alphanumeric characters, case-insensitively. This is the
// single matching primitive behind rule keyword evaluation; exclusion terms
// use plain substring containment instead (see RuleTable.Excluded).
func MatchKeyword(text, keyword string) bool {
	if keyword == "" || strings.TrimSpace(keyword) == "" {
		return false
	}
	return newKeywordMatcher(keyword).matches(text)
}
