package server

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/recruitedge/recruitedge/server/models"
	"github.com/recruitedge/recruitedge/server/work"
	"github.com/recruitedge/recruitedge/shared"
)

const EXPORT_FILE_MAX_AGE_HOURS = 24

func backupSqliteDb(map[string]interface{}) error {
	if gStorage == nil {
		return errors.New("sqlite backup is not configured")
	}

	dbPath, err := models.DbFilePath(dbRootDir)
	if err != nil {
		return err
	}

	return gStorage.UploadFile(serverConfig.Google.Storage.Bucket, dbPath)
}

// cleanupExportFiles removes CSV exports older than a day, so one-off run
// artifacts don't pile up on disk.
func cleanupExportFiles(map[string]interface{}) error {
	entries, err := os.ReadDir(exportsDir)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-EXPORT_FILE_MAX_AGE_HOURS * time.Hour)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.IsDir() {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(exportsDir, entry.Name())); err != nil {
				logg.Errorf("cleanupExportFiles: %v", err)
			}
		}
	}

	return nil
}

func registerJobHandlers(wpa *work.WorkerPoolAdapter) {
	wpa.Register("backupSqliteDb", backupSqliteDb)
	wpa.Register("cleanupExportFiles", cleanupExportFiles)
}

func enqueueJobs(wpa *work.WorkerPoolAdapter, config *shared.ServerConfig) {
	if sqliteBackupEnabled(config) {
		wpa.PeriodicallyPerform(config.Google.Storage.SqliteBackupSchedule, work.JobParams{
			Name:    "backupSqliteDb",
			Handler: "backupSqliteDb",
			Args:    map[string]interface{}{},
		})
	}

	wpa.PeriodicallyPerform("0 3 * * *", work.JobParams{
		Name:    "cleanupExportFiles",
		Handler: "cleanupExportFiles",
		Args:    map[string]interface{}{},
	})
}
