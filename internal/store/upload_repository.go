package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup finds no matching row.
var ErrNotFound = errors.New("not found")

// UploadRepository persists UploadSession rows.
type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// EnsureUploading creates the upload row in uploading status if it does
// not already exist. Concurrent first chunks for the same upload_id
// race safely: the unique index on upload_id makes the losing insert a
// silent no-op rather than an error.
func (r *UploadRepository) EnsureUploading(ctx context.Context, uploadID, originalFilename string, declaredSize int64, mimeType string) error {
	session := &UploadSession{
		UploadID:         uploadID,
		OriginalFilename: originalFilename,
		DeclaredSize:     declaredSize,
		MIMEType:         mimeType,
		Status:           StatusUploading,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "upload_id"}}, DoNothing: true}).
		Create(session).Error
	if err != nil {
		return fmt.Errorf("ensure upload row: %w", err)
	}
	return nil
}

// Get loads an upload row by upload_id without locking.
func (r *UploadRepository) Get(ctx context.Context, uploadID string) (*UploadSession, error) {
	var s UploadSession
	err := r.db.WithContext(ctx).Where("upload_id = ?", uploadID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get upload: %w", err)
	}
	return &s, nil
}

// WithLock loads an upload row under SELECT ... FOR UPDATE and runs fn
// with it inside a transaction, serializing concurrent status
// transitions for the same upload.
func (r *UploadRepository) WithLock(ctx context.Context, uploadID string, fn func(tx *gorm.DB, s *UploadSession) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s UploadSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("upload_id = ?", uploadID).First(&s).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock upload: %w", err)
		}
		return fn(tx, &s)
	})
}

// Save persists the full row, used from inside a WithLock callback.
func (r *UploadRepository) Save(tx *gorm.DB, s *UploadSession) error {
	if err := tx.Save(s).Error; err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}
