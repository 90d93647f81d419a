package storage

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/yurykabanov/snapkeep/pkg/domain"
)

const (
	journalInsertQuery = `
		INSERT INTO journal (job, archive, action, dry_run, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	journalSelectRecent = `
		SELECT id, job, archive, action, dry_run, created_at
		FROM journal
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	journalSelectRecentByJobs = `
		SELECT id, job, archive, action, dry_run, created_at
		FROM journal
		WHERE job IN (?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
)

// JournalRepository persists archive actions into sqlite.
type JournalRepository struct {
	db *sqlx.DB
}

func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{
		db: db,
	}
}

func (r *JournalRepository) Record(ctx context.Context, entry domain.JournalEntry) error {
	stmt, err := r.db.PrepareContext(ctx, journalInsertQuery)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(
		ctx,
		entry.Job, entry.Archive, entry.Action, entry.DryRun, entry.CreatedAt,
	)

	return err
}

func (r *JournalRepository) Recent(ctx context.Context, jobs []string, limit int) ([]domain.JournalEntry, error) {
	var entries []domain.JournalEntry

	if len(jobs) == 0 {
		if err := r.db.SelectContext(ctx, &entries, journalSelectRecent, limit); err != nil {
			return nil, err
		}

		return entries, nil
	}

	query, args, err := sqlx.In(journalSelectRecentByJobs, jobs, limit)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}

	return entries, nil
}

// NopJournal takes the journal's place when it is disabled: writes vanish
// and the history is empty.
type NopJournal struct{}

func NewNopJournal() *NopJournal {
	return &NopJournal{}
}

func (*NopJournal) Record(ctx context.Context, entry domain.JournalEntry) error {
	return nil
}

func (*NopJournal) Recent(ctx context.Context, jobs []string, limit int) ([]domain.JournalEntry, error) {
	return nil, nil
}
