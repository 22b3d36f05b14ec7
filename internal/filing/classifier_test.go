package filing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAllocator mimics the coordinator's sequence allocation without any
// rollover bookkeeping.
type testAllocator struct {
	n     int
	calls int
}

func (a *testAllocator) allocate(context.Context) (int, error) {
	a.calls++
	a.n++
	return a.n, nil
}

func newTestClassifier(t *testing.T) (*Classifier, *fakeFolder, *folderCache) {
	t.Helper()
	table := defaultTable(t)
	rec := NewReconciler(fixedClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)))
	root := newFakeFolder("root")
	return NewClassifier(table, rec, nil, false), root, newFolderCache(root)
}

func TestClassifyMessageDriverSequencing(t *testing.T) {
	ctx := context.Background()
	c, root, folders := newTestClassifier(t)
	alloc := &testAllocator{n: 2} // two call sheets already placed today

	msg := &fakeMessage{
		id:      "m1",
		subject: "Day 5",
		atts:    []Attachment{pdf("CS_day5.pdf")},
	}

	res, err := c.ClassifyMessage(ctx, msg, root, folders, alloc.allocate)
	require.NoError(t, err)
	assert.Equal(t, 3, res.DriverNumber)
	require.Len(t, res.Placements, 1)
	assert.True(t, res.Placements[0].Driver)
	assert.Equal(t, "callsheet3.pdf", res.Placements[0].Name)
	assert.Equal(t, []string{"callsheet3.pdf"}, root.names())
}

func TestClassifyMessageFollowerSynchronization(t *testing.T) {
	ctx := context.Background()
	c, root, folders := newTestClassifier(t)

	// A stale plain unit list occupies the canonical slot; synced numbered
	// placement must not archive it.
	_, err := root.CreateFile(ctx, "unitlist.pdf", []byte("old"))
	require.NoError(t, err)

	alloc := &testAllocator{n: 2}
	msg := &fakeMessage{
		id:   "m1",
		atts: []Attachment{pdf("CS_day5.pdf"), pdf("UL_day5.pdf")},
	}

	res, err := c.ClassifyMessage(ctx, msg, root, folders, alloc.allocate)
	require.NoError(t, err)
	require.Len(t, res.Placements, 2)
	assert.Equal(t, 3, res.DriverNumber)
	assert.Equal(t, "unitlist3.pdf", res.Placements[1].Name)
	assert.Equal(t, 3, res.Placements[1].Number)

	assert.ElementsMatch(t, []string{"unitlist.pdf", "callsheet3.pdf", "unitlist3.pdf"}, root.names())
	assert.Empty(t, root.folders, "no archive folder should have been touched")
}

func TestClassifyMessageFollowerFallbackWithoutDriver(t *testing.T) {
	ctx := context.Background()
	c, root, folders := newTestClassifier(t)

	_, err := root.CreateFile(ctx, "unitlist.pdf", []byte("old"))
	require.NoError(t, err)

	alloc := &testAllocator{}
	msg := &fakeMessage{
		id:   "m1",
		atts: []Attachment{pdf("UL_day5.pdf")},
	}

	res, err := c.ClassifyMessage(ctx, msg, root, folders, alloc.allocate)
	require.NoError(t, err)
	assert.Zero(t, res.DriverNumber)
	assert.Zero(t, alloc.calls)
	require.Len(t, res.Placements, 1)
	assert.Equal(t, "unitlist.pdf", res.Placements[0].Name)

	// Ordinary reconciled placement: old version archived, slot replaced.
	assert.Equal(t, []string{"unitlist.pdf"}, root.names())
	archive := root.folders["Old Unitlists"]
	require.NotNil(t, archive)
	require.Len(t, archive.files, 1)
	assert.Equal(t, []byte("old"), archive.files[0].data)
}

func TestClassifyMessageFiltersAttachments(t *testing.T) {
	ctx := context.Background()
	c, root, folders := newTestClassifier(t)
	alloc := &testAllocator{}

	tests := []struct {
		name string
		msg  *fakeMessage
	}{
		{
			name: "non pdf content type",
			msg: &fakeMessage{id: "m1", atts: []Attachment{
				&fakeAttachment{name: "CS_day5.pdf", ctype: "application/octet-stream"},
			}},
		},
		{
			name: "excluded by filename",
			msg:  &fakeMessage{id: "m2", atts: []Attachment{pdf("prelim_callsheet.pdf")}},
		},
		{
			name: "excluded by subject",
			msg: &fakeMessage{
				id:      "m3",
				subject: "Preliminary schedule",
				atts:    []Attachment{pdf("CS_day5.pdf")},
			},
		},
		{
			name: "no keyword match",
			msg:  &fakeMessage{id: "m4", atts: []Attachment{pdf("budget_day5.pdf")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.ClassifyMessage(ctx, tt.msg, root, folders, alloc.allocate)
			require.NoError(t, err)
			assert.Empty(t, res.Placements)
		})
	}
	assert.Zero(t, alloc.calls)
	assert.Empty(t, root.names())
}

func TestClassifyMessageOneTypePerMessage(t *testing.T) {
	ctx := context.Background()
	c, root, folders := newTestClassifier(t)
	alloc := &testAllocator{}

	// Two call sheets in one message: only the first is claimed, the second
	// stays unclaimed because the type is already consumed.
	msg := &fakeMessage{
		id:   "m1",
		atts: []Attachment{pdf("CS_day5.pdf"), pdf("CS_day5_reissue.pdf")},
	}

	res, err := c.ClassifyMessage(ctx, msg, root, folders, alloc.allocate)
	require.NoError(t, err)
	require.Len(t, res.Placements, 1)
	assert.Equal(t, 1, alloc.calls)
	assert.Equal(t, []string{"callsheet1.pdf"}, root.names())
}

func TestClassifyMessageAttachmentClaimedOnce(t *testing.T) {
	ctx := context.Background()
	c, root, folders := newTestClassifier(t)
	alloc := &testAllocator{}

	// "CS UL day5.pdf" matches both the driver and the follower; the driver
	// claims it in pass 1, so pass 2 must not reuse the same attachment.
	msg := &fakeMessage{
		id:   "m1",
		atts: []Attachment{pdf("CS UL day5.pdf")},
	}

	res, err := c.ClassifyMessage(ctx, msg, root, folders, alloc.allocate)
	require.NoError(t, err)
	require.Len(t, res.Placements, 1)
	assert.Equal(t, "callsheet.pdf", res.Placements[0].TypeID)
	assert.Equal(t, []string{"callsheet1.pdf"}, root.names())
}

func TestClassifyMessageDryRun(t *testing.T) {
	ctx := context.Background()
	table := defaultTable(t)
	rec := NewReconciler(fixedClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)))
	root := newFakeFolder("root")
	c := NewClassifier(table, rec, nil, true)
	alloc := &testAllocator{}

	msg := &fakeMessage{
		id:   "m1",
		atts: []Attachment{pdf("CS_day5.pdf"), pdf("crew list day5.pdf")},
	}

	res, err := c.ClassifyMessage(ctx, msg, root, newFolderCache(root), alloc.allocate)
	require.NoError(t, err)
	assert.Len(t, res.Placements, 2)
	assert.Empty(t, root.names(), "dry run must not write")
}
