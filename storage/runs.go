package storage

import "time"

const (
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// RunRecord is the outcome of one relay run
type RunRecord struct {
	ChatId     int64     `bson:"chat_id"`
	Requested  int       `bson:"requested"`
	Delivered  int       `bson:"delivered"`
	Batches    int       `bson:"batches"`
	Status     string    `bson:"status"`
	Error      string    `bson:"error,omitempty"`
	StartedAt  time.Time `bson:"started_at"`
	FinishedAt time.Time `bson:"finished_at"`
}

// RunStats aggregates the runs of one chat
type RunStats struct {
	Runs      int       `bson:"runs"`
	Failed    int       `bson:"failed"`
	Images    int       `bson:"images"`
	LastRunAt time.Time `bson:"last_run_at"`
}

type RunStorage interface {
	SaveRun(record *RunRecord) error
	// ChatStats returns zero stats for a chat without runs
	ChatStats(chatId int64) (*RunStats, error)
	Close() error
}
