package bot

import (
	"Facely/core"
	"Facely/relay"
	"context"
	"io"
	"log/slog"
	"sync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type reply struct {
	chatId int64
	text   string
	markup core.Markup
}

type mockChat struct {
	mu      sync.Mutex
	replies []reply
	deletes []int
}

func (m *mockChat) SendText(ctx context.Context, chatId int64, text string, markup core.Markup) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply{chatId: chatId, text: text, markup: markup})
	return len(m.replies), nil
}

func (m *mockChat) SendMediaGroup(ctx context.Context, chatId int64, images [][]byte) error {
	return nil
}

func (m *mockChat) EditText(ctx context.Context, chatId int64, messageId int, text string) {}

func (m *mockChat) DeleteMessage(ctx context.Context, chatId int64, messageId int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, messageId)
}

func (m *mockChat) last() reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return reply{}
	}
	return m.replies[len(m.replies)-1]
}

// mockRunner records requests; block, when set, holds every run until it is closed.
type mockRunner struct {
	mu       sync.Mutex
	requests []relay.GenerationRequest
	started  chan struct{}
	block    chan struct{}
	err      error
}

func (m *mockRunner) Run(ctx context.Context, req relay.GenerationRequest) (relay.Report, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}

	report := relay.Report{Requested: req.Count}
	if m.err != nil {
		return report, m.err
	}
	report.Fetched = req.Count
	report.Delivered = req.Count
	report.Batches = relay.Batches(req.Count, req.GroupSize)
	return report, nil
}

func (m *mockRunner) counts() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var counts []int
	for _, r := range m.requests {
		counts = append(counts, r.Count)
	}
	return counts
}
