package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageRepository persists Image rows, one per (upload_id, variant).
type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Upsert inserts or updates the Image row for (uploadID, variant),
// matching the variant pipeline's idempotence requirement: re-running
// the job for the same upload converges to the same set of rows.
func (r *ImageRepository) Upsert(ctx context.Context, img *Image) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "upload_id"}, {Name: "variant"}},
			DoUpdates: clause.AssignmentColumns([]string{"path", "mime_type", "width", "height", "checksum", "updated_at"}),
		}).
		Create(img).Error
	if err != nil {
		return fmt.Errorf("upsert image: %w", err)
	}
	return nil
}

// Get returns the image row for (uploadID, variant).
func (r *ImageRepository) Get(ctx context.Context, uploadID string, variant ImageVariant) (*Image, error) {
	var img Image
	err := r.db.WithContext(ctx).
		Where("upload_id = ? AND variant = ?", uploadID, variant).
		First(&img).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &img, nil
}

// ListByUpload returns every variant recorded for an upload.
func (r *ImageRepository) ListByUpload(ctx context.Context, uploadID string) ([]Image, error) {
	var imgs []Image
	if err := r.db.WithContext(ctx).Where("upload_id = ?", uploadID).Find(&imgs).Error; err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return imgs, nil
}
