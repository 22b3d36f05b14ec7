package filing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestReconcilerArchiveName(t *testing.T) {
	rec := NewReconciler(fixedClock(time.Date(2026, 3, 14, 8, 12, 7, 0, time.UTC)))
	assert.Equal(t, "unitlist_2026-03-14T08-12-07.pdf", rec.ArchiveName("unitlist.pdf"))
	assert.Equal(t, "callsheet3_2026-03-14T08-12-07.pdf", rec.ArchiveName("callsheet3.pdf"))
}

func TestReconcilerPlaceEmptySlot(t *testing.T) {
	ctx := context.Background()
	root := newFakeFolder("root")
	archive := newFakeFolder("archive")
	rec := NewReconciler(fixedClock(time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)))

	f, err := rec.Place(ctx, root, archive, "schedule.pdf", []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, "schedule.pdf", f.Name())
	assert.Equal(t, []string{"schedule.pdf"}, root.names())
	assert.Empty(t, archive.names())
}

func TestReconcilerPromoteAndArchive(t *testing.T) {
	ctx := context.Background()
	root := newFakeFolder("root")
	archive := newFakeFolder("archive")

	clock := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	rec := NewReconciler(func() time.Time { return clock })

	_, err := rec.Place(ctx, root, archive, "schedule.pdf", []byte("v1"))
	require.NoError(t, err)

	clock = clock.Add(90 * time.Second)
	_, err = rec.Place(ctx, root, archive, "schedule.pdf", []byte("v2"))
	require.NoError(t, err)

	// Exactly one file in the canonical slot (the newer content), exactly
	// one archived prior version.
	require.Equal(t, []string{"schedule.pdf"}, root.names())
	assert.Equal(t, []byte("v2"), root.files[0].data)
	require.Equal(t, []string{"schedule_2026-03-14T08-00-00.pdf"}, archive.names())
	assert.Equal(t, []byte("v1"), archive.files[0].data)

	clock = clock.Add(90 * time.Second)
	_, err = rec.Place(ctx, root, archive, "schedule.pdf", []byte("v3"))
	require.NoError(t, err)

	require.Equal(t, []string{"schedule.pdf"}, root.names())
	assert.Equal(t, []byte("v3"), root.files[0].data)
	assert.Len(t, archive.files, 2)
}
