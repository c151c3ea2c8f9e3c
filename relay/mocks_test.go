package relay

import (
	"Facely/core"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentText struct {
	text   string
	markup core.Markup
}

type edit struct {
	messageId int
	text      string
}

// mockTransport records every chat operation in call order.
type mockTransport struct {
	mu sync.Mutex

	nextId   int
	texts    []sentText
	groups   [][][]byte
	edits    []edit
	deletes  []int
	events   []string
	sendErr  error
	groupErr func(n int) error
}

func (m *mockTransport) SendText(ctx context.Context, chatId int64, text string, markup core.Markup) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "text")
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.nextId++
	m.texts = append(m.texts, sentText{text: text, markup: markup})
	return 100 + m.nextId, nil
}

func (m *mockTransport) SendMediaGroup(ctx context.Context, chatId int64, images [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, fmt.Sprintf("group:%d", len(images)))
	if m.groupErr != nil {
		if err := m.groupErr(len(m.groups) + 1); err != nil {
			return err
		}
	}
	m.groups = append(m.groups, images)
	return nil
}

func (m *mockTransport) EditText(ctx context.Context, chatId int64, messageId int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "edit")
	m.edits = append(m.edits, edit{messageId: messageId, text: text})
}

func (m *mockTransport) DeleteMessage(ctx context.Context, chatId int64, messageId int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "delete")
	m.deletes = append(m.deletes, messageId)
}

func (m *mockTransport) groupSizes() []int {
	sizes := make([]int, 0, len(m.groups))
	for _, g := range m.groups {
		sizes = append(sizes, len(g))
	}
	return sizes
}

// mockSource returns numbered payloads and fails on call failAt when set.
type mockSource struct {
	calls  int
	failAt int
	err    error
}

func (m *mockSource) Fetch(ctx context.Context) ([]byte, error) {
	m.calls++
	if m.failAt != 0 && m.calls == m.failAt {
		if m.err != nil {
			return nil, m.err
		}
		return nil, &core.UpstreamFetchError{Status: 503, Err: errBoom}
	}
	return []byte(fmt.Sprintf("image-%d", m.calls)), nil
}

// mockStore counts how often each handle is released.
type mockStore struct {
	mu       sync.Mutex
	next     int
	released map[core.Handle]int
	putErr   error
}

func newMockStore() *mockStore {
	return &mockStore{released: make(map[core.Handle]int)}
}

func (m *mockStore) Put(data []byte) (core.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return "", m.putErr
	}
	m.next++
	h := core.Handle(fmt.Sprintf("h%d", m.next))
	m.released[h] = 0
	return h, nil
}

func (m *mockStore) Release(h core.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released[h]++
	return nil
}

func (m *mockStore) allocated() int {
	return m.next
}

// releasedOnce reports whether every allocated handle was released exactly one time.
func (m *mockStore) releasedOnce() bool {
	for _, n := range m.released {
		if n != 1 {
			return false
		}
	}
	return true
}
