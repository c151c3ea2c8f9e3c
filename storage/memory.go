package storage

import (
	"sync"
	"time"
)

type MemorySessionStorage struct {
	sessions map[int64]*Session
	mutex    sync.RWMutex
}

func NewMemorySessionStorage() *MemorySessionStorage {
	return &MemorySessionStorage{
		sessions: make(map[int64]*Session),
	}
}

func (m *MemorySessionStorage) GetSession(chatId int64) (*Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if session, ok := m.sessions[chatId]; ok {
		cc := *session
		return &cc, nil
	}
	return nil, nil
}

func (m *MemorySessionStorage) SetAwaiting(chatId int64, expiresAt time.Time) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.sessions[chatId] = &Session{
		ChatId:           chatId,
		AwaitingQuantity: true,
		ExpiresAt:        expiresAt,
		UpdatedAt:        time.Now(),
	}
	return nil
}

func (m *MemorySessionStorage) ClearSession(chatId int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, chatId)
	return nil
}

func (m *MemorySessionStorage) PurgeExpired(now time.Time) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	removed := 0
	for chatId, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, chatId)
			removed++
		}
	}
	return removed, nil
}

func (m *MemorySessionStorage) Close() error {
	return nil
}
