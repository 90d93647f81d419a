package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/snapkeep/pkg/appcontext"
	"github.com/yurykabanov/snapkeep/pkg/domain"
)

// BackupLister is the slice of the backup service the status endpoint needs.
type BackupLister interface {
	List(ctx context.Context, job *domain.Job) ([]domain.Backup, error)
}

// BackupStatusHandler reports, per job, how many backups exist and how old
// the newest one is. It reads through the archive store cache, so it
// reflects the state as of the last scheduled run.
type BackupStatusHandler struct {
	logger logrus.FieldLogger
	jobs   []*domain.Job
	lister BackupLister
}

func NewBackupStatusHandler(logger logrus.FieldLogger, jobs []*domain.Job, lister BackupLister) *BackupStatusHandler {
	return &BackupStatusHandler{
		logger: logger,
		jobs:   jobs,
		lister: lister,
	}
}

type backupStatusResponse struct {
	Job           string `json:"job"`
	Backups       int    `json:"backups"`
	LatestArchive string `json:"latest_archive,omitempty"`
	LatestAt      int64  `json:"latest_at,omitempty"`
	AgeSeconds    int64  `json:"age_seconds,omitempty"`
}

func (h *BackupStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	logger := appcontext.LoggerFromContext(h.logger, ctx)

	result := make([]backupStatusResponse, 0, len(h.jobs))

	for _, job := range h.jobs {
		backups, err := h.lister.List(ctx, job)
		if err != nil {
			logger.WithError(err).Error("Unable to list backups")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		status := backupStatusResponse{
			Job:     job.Name,
			Backups: len(backups),
		}

		if len(backups) > 0 {
			newest := backups[0]
			status.LatestArchive = newest.Name
			status.LatestAt = newest.Time.Unix()
			status.AgeSeconds = int64(time.Since(newest.Time).Seconds())
		}

		result = append(result, status)
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.WithError(err).Error("Unable to encode response")
		w.WriteHeader(http.StatusInternalServerError)
	}
}
