package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRepository persists the durable processing-job attempt record,
// one row per upload, surviving process restarts.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// EnsurePending creates the job row if absent, or resets an existing
// one back to pending with a fresh attempt budget — the path the
// resolver's recovery flow takes when re-dispatching a failed upload.
func (r *JobRepository) EnsurePending(ctx context.Context, uploadID string, maxAttempts int) error {
	job := &Job{
		UploadID:     uploadID,
		MaxAttempts:  maxAttempts,
		Status:       JobPending,
		ScheduledAt:  time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "upload_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"attempts_used": 0,
				"status":        JobPending,
				"last_error":    "",
				"scheduled_at":  job.ScheduledAt,
				"locked_at":     nil,
			}),
		}).
		Create(job).Error
	if err != nil {
		return fmt.Errorf("ensure pending job: %w", err)
	}
	return nil
}

// TryLock claims the job for execution if it is not already running
// and has attempts remaining, recording the lock under a row-level
// lock so only one worker wins the race for a given upload.
func (r *JobRepository) TryLock(ctx context.Context, uploadID string) (*Job, bool, error) {
	var claimed *Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var j Job
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("upload_id = ?", uploadID).First(&j).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock job: %w", err)
		}
		if j.Status == JobRunning || j.AttemptsUsed >= j.MaxAttempts {
			return nil
		}
		now := time.Now().UTC()
		j.Status = JobRunning
		j.AttemptsUsed++
		j.LockedAt = &now
		if err := tx.Save(&j).Error; err != nil {
			return fmt.Errorf("save locked job: %w", err)
		}
		claimed = &j
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return claimed, claimed != nil, nil
}

// Finish records the outcome of the attempt TryLock granted. On
// failure with attempts remaining, the job returns to pending so a
// later attempt can claim it; otherwise it becomes terminally failed.
func (r *JobRepository) Finish(ctx context.Context, uploadID string, success bool, attemptErr error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var j Job
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("upload_id = ?", uploadID).First(&j).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock job: %w", err)
		}

		j.LockedAt = nil
		if success {
			j.Status = JobSucceeded
			j.LastError = ""
		} else {
			if attemptErr != nil {
				j.LastError = attemptErr.Error()
			}
			if j.AttemptsUsed >= j.MaxAttempts {
				j.Status = JobFailed
			} else {
				j.Status = JobPending
			}
		}
		if err := tx.Save(&j).Error; err != nil {
			return fmt.Errorf("save job: %w", err)
		}
		return nil
	})
}

// Get returns the job row for an upload.
func (r *JobRepository) Get(ctx context.Context, uploadID string) (*Job, error) {
	var j Job
	err := r.db.WithContext(ctx).Where("upload_id = ?", uploadID).First(&j).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}
