package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ExpiredSessionPurger deletes session rows that expired before a given instant.
type ExpiredSessionPurger interface {
	DeleteExpired(before time.Time) (int64, error)
}

// PurgeExpiredSessionsTask removes expired session rows. Reads only ever
// clear the remembered token, so without this task the rows would pile up.
type PurgeExpiredSessionsTask struct{}

// Config returns the queue configuration for session purge tasks.
func (t PurgeExpiredSessionsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_expired_sessions",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeExpiredSessionsProcessor creates a processor function for PurgeExpiredSessionsTask.
func PurgeExpiredSessionsProcessor(purger ExpiredSessionPurger, now func() time.Time) backlite.QueueProcessor[PurgeExpiredSessionsTask] {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return func(ctx context.Context, task PurgeExpiredSessionsTask) error {
		if purger == nil {
			return fmt.Errorf("session purger not configured")
		}

		deleted, err := purger.DeleteExpired(now())
		if err != nil {
			return fmt.Errorf("purge expired sessions: %w", err)
		}

		log.Printf("[TASK] Purged %d expired sessions", deleted)
		return nil
	}
}

// NewPurgeExpiredSessionsQueue creates a backlite queue for session purge tasks.
func NewPurgeExpiredSessionsQueue(purger ExpiredSessionPurger) backlite.Queue {
	return backlite.NewQueue(PurgeExpiredSessionsProcessor(purger, nil))
}
