package bot

import (
	"Facely/core"
	"Facely/holder"
	"Facely/relay"
	"Facely/storage"
	"Facely/upstream"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numberedSource returns payloads of growing size so every album part is distinguishable.
type numberedSource struct {
	calls int
}

func (s *numberedSource) Fetch(ctx context.Context) ([]byte, error) {
	s.calls++
	return []byte(fmt.Sprintf("\xff\xd8\xff face %d", s.calls)), nil
}

func TestHandlerRunsThroughTelegramTransport(t *testing.T) {
	tr, fake := newTestTransport(t)

	store, err := upstream.NewTempStore(t.TempDir())
	require.NoError(t, err)
	source := &numberedSource{}

	conf := &core.Config{}
	conf.Images.Max = 100
	conf.Images.GroupSize = 9

	runs := storage.NewMemoryRunStorage()
	handler := NewHandler(
		conf, tr, tr,
		relay.New(tr, tr, source, store, discardLogger()),
		holder.NewPromptManager(storage.NewMemorySessionStorage(), time.Minute, discardLogger()),
		holder.NewRunGuard(1),
		runs,
		discardLogger(),
	)

	handler.Handle(context.Background(), Incoming{ChatId: 42, MessageId: 10, Text: "Custom quantity"})
	handler.Handle(context.Background(), Incoming{ChatId: 42, MessageId: 12, Text: "20"})

	assert.Equal(t, 20, source.calls)
	assert.Zero(t, store.Outstanding())

	var sizes []int
	edits := 0
	for _, call := range fake.calls {
		switch call.method {
		case "sendMediaGroup":
			sizes = append(sizes, len(call.files))
			for name, size := range call.files {
				assert.NotZero(t, size, name)
			}
		case "editMessageText":
			edits++
		}
	}
	assert.Equal(t, []int{9, 9, 2}, sizes)
	assert.Equal(t, 20, edits)

	last := fake.calls[len(fake.calls)-1]
	assert.Equal(t, "sendMessage", last.method)
	assert.Equal(t, "Done! Choose the next command", last.form.Get("text"))

	stats, err := runs.ChatStats(42)
	require.NoError(t, err)
	assert.Equal(t, &storage.RunStats{Runs: 1, Images: 20, LastRunAt: stats.LastRunAt}, stats)
}

func TestHandlerSingleImageThroughTelegramTransport(t *testing.T) {
	tr, fake := newTestTransport(t)

	store, err := upstream.NewTempStore(t.TempDir())
	require.NoError(t, err)

	conf := &core.Config{}
	conf.Images.Max = 100
	conf.Images.GroupSize = 9

	handler := NewHandler(
		conf, tr, tr,
		relay.New(tr, tr, &numberedSource{}, store, discardLogger()),
		holder.NewPromptManager(storage.NewMemorySessionStorage(), time.Minute, discardLogger()),
		holder.NewRunGuard(1),
		storage.NewMemoryRunStorage(),
		discardLogger(),
	)

	handler.Handle(context.Background(), Incoming{ChatId: 42, MessageId: 10, Text: "Get image"})

	photos := 0
	for _, call := range fake.calls {
		assert.NotEqual(t, "sendMediaGroup", call.method)
		if call.method == "sendPhoto" {
			photos++
			assert.NotZero(t, call.files["photo"])
		}
	}
	assert.Equal(t, 1, photos)
	assert.Zero(t, store.Outstanding())
}
