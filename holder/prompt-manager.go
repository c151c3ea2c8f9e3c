package holder

import (
	"Facely/lib/sl"
	"Facely/storage"
	"context"
	"log/slog"
	"time"
)

// PromptManager tracks chats whose next free-text message answers the quantity prompt.
// Storage errors are logged and treated as "no prompt pending".
type PromptManager struct {
	storage storage.SessionStorage
	ttl     time.Duration
	log     *slog.Logger
	now     func() time.Time
}

func NewPromptManager(store storage.SessionStorage, ttl time.Duration, log *slog.Logger) *PromptManager {
	return &PromptManager{
		storage: store,
		ttl:     ttl,
		log:     log.With(sl.Module("prompts")),
		now:     time.Now,
	}
}

// Await opens (or renews) the quantity prompt for the chat.
func (pm *PromptManager) Await(chatId int64) {
	if err := pm.storage.SetAwaiting(chatId, pm.now().Add(pm.ttl)); err != nil {
		pm.log.With(sl.Chat(chatId)).Error("opening quantity prompt", sl.Err(err))
	}
}

// Pending reports whether the chat has an open, unexpired quantity prompt.
// An expired prompt is removed.
func (pm *PromptManager) Pending(chatId int64) bool {
	session, err := pm.storage.GetSession(chatId)
	if err != nil {
		pm.log.With(sl.Chat(chatId)).Error("getting session", sl.Err(err))
		return false
	}
	if session == nil || !session.AwaitingQuantity {
		return false
	}
	if session.Expired(pm.now()) {
		pm.Clear(chatId)
		return false
	}
	return true
}

func (pm *PromptManager) Clear(chatId int64) {
	if err := pm.storage.ClearSession(chatId); err != nil {
		pm.log.With(sl.Chat(chatId)).Error("clearing session", sl.Err(err))
	}
}

// Purge drops every expired prompt.
func (pm *PromptManager) Purge() {
	removed, err := pm.storage.PurgeExpired(pm.now())
	if err != nil {
		pm.log.Error("purging expired prompts", sl.Err(err))
		return
	}
	if removed > 0 {
		pm.log.Debug("expired prompts purged", slog.Int("count", removed))
	}
}

// RunJanitor purges expired prompts every interval until ctx is done.
func (pm *PromptManager) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.log.Info("prompt janitor started", slog.Duration("interval", interval))
	for {
		select {
		case <-ticker.C:
			pm.Purge()
		case <-ctx.Done():
			pm.log.Info("prompt janitor stopped")
			return nil
		}
	}
}

func (pm *PromptManager) Close() error {
	return pm.storage.Close()
}
