package filing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTable(t *testing.T) *RuleTable {
	t.Helper()
	table, err := NewRuleTable(DefaultRules(), DefaultExclusions())
	require.NoError(t, err)
	return table
}

func TestNewRuleTableValidation(t *testing.T) {
	tests := []struct {
		name       string
		rules      []*Rule
		wantErr    string
	}{
		{
			name:    "no driver",
			rules:   []*Rule{{TypeID: "a.pdf", Keywords: []string{"a"}}},
			wantErr: "no driver rule",
		},
		{
			name: "two drivers",
			rules: []*Rule{
				{TypeID: "a.pdf", Keywords: []string{"a"}, Driver: true},
				{TypeID: "b.pdf", Keywords: []string{"b"}, Driver: true},
			},
			wantErr: "more than one driver",
		},
		{
			name: "duplicate typeId",
			rules: []*Rule{
				{TypeID: "a.pdf", Keywords: []string{"a"}, Driver: true},
				{TypeID: "a.pdf", Keywords: []string{"b"}},
			},
			wantErr: "duplicate rule typeId",
		},
		{
			name: "rule without keywords",
			rules: []*Rule{
				{TypeID: "a.pdf", Driver: true},
			},
			wantErr: "no keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleTable(tt.rules, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRuleTableDriver(t *testing.T) {
	table := defaultTable(t)
	require.NotNil(t, table.Driver())
	assert.Equal(t, "callsheet.pdf", table.Driver().TypeID)
	assert.Equal(t, "callsheet3.pdf", table.Driver().NumberedSlot(3))
	assert.Equal(t, "callsheet", table.Driver().Stem())
}

func TestRuleForFileStem(t *testing.T) {
	table := defaultTable(t)

	tests := []struct {
		name     string
		filename string
		wantType string
	}{
		{"canonical name", "callsheet.pdf", "callsheet.pdf"},
		{"numbered driver file", "callsheet2.pdf", "callsheet.pdf"},
		{"archived name", "unitlist_2026-03-14T08-12-07.pdf", "unitlist.pdf"},
		{"case insensitive", "CrewList.pdf", "crewlist.pdf"},
		{"unknown file", "budget.xlsx", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := table.RuleForFileStem(tt.filename)
			if tt.wantType == "" {
				assert.Nil(t, rule)
				return
			}
			require.NotNil(t, rule)
			assert.Equal(t, tt.wantType, rule.TypeID)
		})
	}
}

func TestExcluded(t *testing.T) {
	table := defaultTable(t)

	tests := []struct {
		name     string
		filename string
		subject  string
		body     string
		want     bool
	}{
		{
			name:     "exclusion term inside filename",
			filename: "prelim_callsheet.pdf",
			want:     true,
		},
		{
			name:     "clean filename but subject excludes",
			filename: "callsheet_day4.pdf",
			subject:  "Preliminary call sheet for tomorrow",
			want:     true,
		},
		{
			name:     "exclusion term in body",
			filename: "callsheet_day4.pdf",
			body:     "still a DRAFT, final to follow",
			want:     true,
		},
		{
			name:     "substring match is intentionally broad",
			filename: "tbconfirmed_schedule.pdf",
			want:     true,
		},
		{
			name:     "clean everywhere",
			filename: "callsheet_day4.pdf",
			subject:  "Day 4",
			body:     "see attached",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Excluded(tt.filename, tt.subject, tt.body)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultRulesTieBreakOrder(t *testing.T) {
	table := defaultTable(t)
	// Declaration order decides which rule claims an ambiguous name.
	rules := table.Rules()
	require.Len(t, rules, 5)
	assert.True(t, rules[0].Driver)
	assert.True(t, rules[1].SyncToDriver)
}
