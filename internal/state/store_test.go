package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreGetMissingKey(t *testing.T) {
	s := newTestStore(t)

	value, err := s.Get(t.Context(), "lastRunDate")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestStoreSetAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.Set(ctx, "lastRunDate", "2026-01-15"))

	value, err := s.Get(ctx, "lastRunDate")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", value)
}

func TestStoreSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.Set(ctx, "dailySequenceCounter", "1"))
	require.NoError(t, s.Set(ctx, "dailySequenceCounter", "2"))

	value, err := s.Get(ctx, "dailySequenceCounter")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := t.Context()

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "lastRunDate", "2026-01-15"))
	require.NoError(t, s.Close())

	s, err = NewStore(dir)
	require.NoError(t, err)
	defer s.Close()

	value, err := s.Get(ctx, "lastRunDate")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", value)
}
