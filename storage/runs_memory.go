package storage

import "sync"

// MemoryRunStorage is an in-memory implementation of RunStorage
type MemoryRunStorage struct {
	runs  map[int64][]RunRecord
	mutex sync.RWMutex
}

func NewMemoryRunStorage() *MemoryRunStorage {
	return &MemoryRunStorage{
		runs: make(map[int64][]RunRecord),
	}
}

func (m *MemoryRunStorage) SaveRun(record *RunRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.runs[record.ChatId] = append(m.runs[record.ChatId], *record)
	return nil
}

func (m *MemoryRunStorage) ChatStats(chatId int64) (*RunStats, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := &RunStats{}
	for _, run := range m.runs[chatId] {
		stats.Runs++
		if run.Status == RunFailed {
			stats.Failed++
		}
		stats.Images += run.Delivered
		if run.StartedAt.After(stats.LastRunAt) {
			stats.LastRunAt = run.StartedAt
		}
	}
	return stats, nil
}

func (m *MemoryRunStorage) Close() error {
	return nil
}
