package filing

import (
	"fmt"
	"path"
	"strings"
)

// Rule describes one document type: the canonical filename it owns, the
// keywords that claim an attachment for it, and the folder its superseded
// versions are archived into.
type Rule struct {
	// TypeID is the canonical basename, e.g. "callsheet.pdf". Unique across
	// the rule set.
	TypeID string

	// Keywords claim an attachment when any of them matches the attachment
	// filename with word-boundary semantics (see matcher.go).
	Keywords []string

	// ArchiveFolder is the name of the folder superseded versions move into.
	ArchiveFolder string

	// Driver marks the type whose arrival triggers day rollover and
	// allocates the shared daily sequence number. Exactly one rule is the
	// driver.
	Driver bool

	// SyncToDriver marks a follower type: when it arrives in the same
	// message as a driver document, it is numbered with the driver's
	// sequence number instead of occupying its plain canonical slot.
	SyncToDriver bool

	matchers []*keywordMatcher
}

// Stem returns the TypeID without its extension.
func (r *Rule) Stem() string {
	return strings.TrimSuffix(r.TypeID, path.Ext(r.TypeID))
}

// MatchesName reports whether any of the rule's keywords matches the given
// filename.
func (r *Rule) MatchesName(name string) bool {
	for _, m := range r.matchers {
		if m.matches(name) {
			return true
		}
	}
	return false
}

// NumberedSlot returns the canonical filename for sequence number n, e.g.
// "callsheet3.pdf".
func (r *Rule) NumberedSlot(n int) string {
	return fmt.Sprintf("%s%d%s", r.Stem(), n, path.Ext(r.TypeID))
}

// RuleTable is the static rule set, loaded once at startup and read-only
// thereafter. Iteration order is declaration order; it decides which type
// claims an attachment when several keyword sets could match.
type RuleTable struct {
	rules      []*Rule
	driver     *Rule
	exclusions []string
}

// NewRuleTable validates the rule set, precompiles keyword matchers, and
// returns the table. Exclusion terms skip an attachment when any of them
// occurs as a case-insensitive substring in the attachment filename, the
// message subject, or the message body.
func NewRuleTable(rules []*Rule, exclusions []string) (*RuleTable, error) {
	t := &RuleTable{exclusions: exclusions}
	seen := make(map[string]bool)
	for _, r := range rules {
		if r.TypeID == "" {
			return nil, fmt.Errorf("rule with empty typeId")
		}
		if seen[r.TypeID] {
			return nil, fmt.Errorf("duplicate rule typeId %q", r.TypeID)
		}
		seen[r.TypeID] = true
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %s has no keywords", r.TypeID)
		}
		r.matchers = make([]*keywordMatcher, len(r.Keywords))
		for i, kw := range r.Keywords {
			r.matchers[i] = newKeywordMatcher(kw)
		}
		if r.Driver {
			if t.driver != nil {
				return nil, fmt.Errorf("more than one driver rule: %s and %s", t.driver.TypeID, r.TypeID)
			}
			t.driver = r
		}
		t.rules = append(t.rules, r)
	}
	if t.driver == nil {
		return nil, fmt.Errorf("no driver rule configured")
	}
	return t, nil
}

// Rules returns the rules in declaration order.
func (t *RuleTable) Rules() []*Rule {
	return t.rules
}

// Driver returns the driver rule.
func (t *RuleTable) Driver() *Rule {
	return t.driver
}

// RuleForFileStem resolves an existing file to its owning rule for the
// archive sweep, by case-insensitive substring match of each rule's stem
// against the filename. A name containing another rule's stem as a
// substring is claimed by the first rule in declaration order; this mirrors
// the sweep semantics of the source system and is a known boundary
// condition.
func (t *RuleTable) RuleForFileStem(name string) *Rule {
	lower := strings.ToLower(name)
	for _, r := range t.rules {
		if strings.Contains(lower, strings.ToLower(r.Stem())) {
			return r
		}
	}
	return nil
}

// Excluded reports whether any exclusion term occurs as a case-insensitive
// substring in the attachment filename, subject, or body. Exclusion is
// deliberately broader than keyword matching: skipping a possibly-final
// document is safer than filing a draft as final.
func (t *RuleTable) Excluded(filename, subject, body string) bool {
	for _, term := range t.exclusions {
		lt := strings.ToLower(term)
		for _, text := range []string{filename, subject, body} {
			if text != "" && strings.Contains(strings.ToLower(text), lt) {
				return true
			}
		}
	}
	return false
}

// DefaultRules returns the production rule set for film set paperwork. The
// call sheet drives daily sequencing; the unit list follows its numbering
// when both arrive in the same message.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			TypeID:        "callsheet.pdf",
			Keywords:      []string{"CS", "call sheet", "callsheet"},
			ArchiveFolder: "Old Callsheets",
			Driver:        true,
		},
		{
			TypeID:        "unitlist.pdf",
			Keywords:      []string{"UL", "unit list", "unitlist"},
			ArchiveFolder: "Old Unitlists",
			SyncToDriver:  true,
		},
		{
			TypeID:        "schedule.pdf",
			Keywords:      []string{"shooting schedule", "one line", "OOD"},
			ArchiveFolder: "Old Schedules",
		},
		{
			TypeID:        "crewlist.pdf",
			Keywords:      []string{"crew list", "crewlist", "contact list"},
			ArchiveFolder: "Old Crewlists",
		},
		{
			TypeID:        "movementorder.pdf",
			Keywords:      []string{"MO", "movement order"},
			ArchiveFolder: "Old Movement Orders",
		},
	}
}

// DefaultExclusions returns the production exclusion terms.
func DefaultExclusions() []string {
	return []string{"prelim", "draft", "tbc", "not final"}
}
