package sqlfx

import (
	"github.com/jmoiron/sqlx"

	"github.com/yurykabanov/snapkeep/pkg/domain"
	"github.com/yurykabanov/snapkeep/pkg/storage"
)

func JournalRepository(db *sqlx.DB) (
	domain.Journal,
	domain.JournalReader,
) {
	if db == nil {
		nop := storage.NewNopJournal()
		return nop, nop
	}

	repo := storage.NewJournalRepository(db)

	return repo, repo
}
