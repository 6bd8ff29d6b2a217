package scheduler

import (
	"fmt"

	"github.com/aristath/sizer/internal/database"
	"github.com/aristath/sizer/internal/modules/snapshots"
)

// RegisterMaintenanceJobs wires the standing jobs: hourly exposure snapshots,
// nightly snapshot pruning, and nightly WAL checkpoints on every database.
func RegisterMaintenanceJobs(s *Scheduler, snapshotSvc *snapshots.Service, dbs []*database.DB) error {
	if err := s.AddJob("@hourly", JobFunc{
		JobName: "capture_exposure_snapshots",
		Fn: func() error {
			_, err := snapshotSvc.CaptureAll()
			return err
		},
	}); err != nil {
		return fmt.Errorf("failed to register snapshot job: %w", err)
	}

	if err := s.AddJob("15 3 * * *", JobFunc{
		JobName: "prune_exposure_snapshots",
		Fn: func() error {
			_, err := snapshotSvc.PruneExpired()
			return err
		},
	}); err != nil {
		return fmt.Errorf("failed to register prune job: %w", err)
	}

	for _, db := range dbs {
		db := db
		if err := s.AddJob("45 3 * * *", JobFunc{
			JobName: "wal_checkpoint_" + db.Name(),
			Fn: func() error {
				return db.WALCheckpoint("TRUNCATE")
			},
		}); err != nil {
			return fmt.Errorf("failed to register checkpoint job for %s: %w", db.Name(), err)
		}
	}

	return nil
}
