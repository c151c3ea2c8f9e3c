package storage

import "time"

// Session is the per-chat dialog state. A chat with no session is at the main menu.
type Session struct {
	ChatId           int64     `bson:"chat_id"`
	AwaitingQuantity bool      `bson:"awaiting_quantity"`
	ExpiresAt        time.Time `bson:"expires_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// Expired reports whether the pending prompt of the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type SessionStorage interface {
	// GetSession returns nil when the chat has no session
	GetSession(chatId int64) (*Session, error)
	SetAwaiting(chatId int64, expiresAt time.Time) error
	ClearSession(chatId int64) error
	// PurgeExpired removes sessions expired at now and returns how many were removed
	PurgeExpired(now time.Time) (int, error)
	Close() error
}
