package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStorage(t *testing.T) {
	store := NewMemorySessionStorage()
	now := time.Now()

	session, err := store.GetSession(1)
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, store.SetAwaiting(1, now.Add(time.Minute)))
	session, err = store.GetSession(1)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.True(t, session.AwaitingQuantity)
	assert.False(t, session.Expired(now))
	assert.True(t, session.Expired(now.Add(time.Minute)))

	require.NoError(t, store.ClearSession(1))
	session, err = store.GetSession(1)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestMemorySessionStoragePurgeExpired(t *testing.T) {
	store := NewMemorySessionStorage()
	now := time.Now()

	require.NoError(t, store.SetAwaiting(1, now.Add(-time.Second)))
	require.NoError(t, store.SetAwaiting(2, now.Add(time.Hour)))

	removed, err := store.PurgeExpired(now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	session, _ := store.GetSession(1)
	assert.Nil(t, session)
	session, _ = store.GetSession(2)
	assert.NotNil(t, session)
}

func TestMemoryRunStorageStats(t *testing.T) {
	store := NewMemoryRunStorage()
	first := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, store.SaveRun(&RunRecord{ChatId: 7, Requested: 9, Delivered: 9, Status: RunCompleted, StartedAt: first}))
	require.NoError(t, store.SaveRun(&RunRecord{ChatId: 7, Requested: 20, Delivered: 9, Status: RunFailed, StartedAt: second}))
	require.NoError(t, store.SaveRun(&RunRecord{ChatId: 8, Requested: 1, Delivered: 1, Status: RunCompleted, StartedAt: second}))

	stats, err := store.ChatStats(7)
	require.NoError(t, err)
	assert.Equal(t, &RunStats{Runs: 2, Failed: 1, Images: 18, LastRunAt: second}, stats)

	stats, err = store.ChatStats(99)
	require.NoError(t, err)
	assert.Equal(t, &RunStats{}, stats)
}
