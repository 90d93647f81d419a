package metricsfx

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/snapkeep/pkg/domain"
	"github.com/yurykabanov/snapkeep/pkg/http/handler"
)

func BackupStatusHandler(
	logger *logrus.Logger,
	jobs []*domain.Job,
	lister handler.BackupLister,
) *handler.BackupStatusHandler {
	return handler.NewBackupStatusHandler(logger, jobs, lister)
}

func RegisterBackupStatusHandler(router *mux.Router, h *handler.BackupStatusHandler) {
	router.Handle("/status/backups", h)
}
