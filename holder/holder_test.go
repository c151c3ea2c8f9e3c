package holder

import (
	"Facely/core"
	"Facely/storage"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromptManager(ttl time.Duration) (*PromptManager, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pm := NewPromptManager(storage.NewMemorySessionStorage(), ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	pm.now = func() time.Time { return now }
	return pm, &now
}

func TestPromptManagerAwaitAndClear(t *testing.T) {
	pm, _ := newPromptManager(time.Minute)

	assert.False(t, pm.Pending(1))
	pm.Await(1)
	assert.True(t, pm.Pending(1))
	assert.False(t, pm.Pending(2))

	pm.Clear(1)
	assert.False(t, pm.Pending(1))
}

func TestPromptManagerExpiry(t *testing.T) {
	pm, now := newPromptManager(time.Minute)

	pm.Await(1)
	*now = now.Add(59 * time.Second)
	assert.True(t, pm.Pending(1))

	*now = now.Add(time.Second)
	assert.False(t, pm.Pending(1))

	// renewing restarts the clock
	pm.Await(1)
	*now = now.Add(30 * time.Second)
	assert.True(t, pm.Pending(1))
}

func TestPromptManagerPurge(t *testing.T) {
	pm, now := newPromptManager(time.Minute)

	pm.Await(1)
	*now = now.Add(2 * time.Minute)
	pm.Await(2)
	pm.Purge()

	session, err := pm.storage.GetSession(1)
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.True(t, pm.Pending(2))
}

func TestRunGuardRejectsSecondRunForChat(t *testing.T) {
	g := NewRunGuard(4)

	release, err := g.Acquire(1)
	require.NoError(t, err)
	assert.True(t, g.Busy(1))

	_, err = g.Acquire(1)
	assert.ErrorIs(t, err, core.ErrRunInProgress)

	other, err := g.Acquire(2)
	require.NoError(t, err)
	other()

	release()
	release()
	assert.False(t, g.Busy(1))

	release, err = g.Acquire(1)
	require.NoError(t, err)
	release()
}

func TestRunGuardGlobalLimit(t *testing.T) {
	g := NewRunGuard(1)

	release, err := g.Acquire(1)
	require.NoError(t, err)

	_, err = g.Acquire(2)
	assert.ErrorIs(t, err, core.ErrTooManyRuns)
	assert.False(t, g.Busy(2))

	release()
	release, err = g.Acquire(2)
	require.NoError(t, err)
	release()
}

func TestPromptManagerJanitorStopsWithContext(t *testing.T) {
	pm, _ := newPromptManager(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- pm.RunJanitor(ctx, time.Millisecond)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
