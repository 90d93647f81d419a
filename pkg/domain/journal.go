package domain

import (
	"context"
	"time"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// JournalEntry is one recorded archive action.
type JournalEntry struct {
	Id        int64
	Job       string
	Archive   string
	Action    string
	DryRun    bool
	CreatedAt time.Time
}

// Journal records archive actions as they happen. Recording is best effort:
// a failing journal must never fail the backup run itself.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}

// JournalReader serves the history command.
type JournalReader interface {
	Recent(ctx context.Context, jobs []string, limit int) ([]JournalEntry, error)
}
