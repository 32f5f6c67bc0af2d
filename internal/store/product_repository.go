package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ProductRepository reads the catalog's minimal product slice and
// performs the transactional attach/primary-image operations the
// resolver needs. Full catalog CRUD lives outside this service.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetBySKU looks up a product by its business key.
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	var p Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return &p, nil
}

// AttachResult is the resolved state of a product-image link after Attach.
type AttachResult struct {
	ProductID uint64
	ImageID   uint64
	IsPrimary bool
}

// Attach links imageID to productID, creating the link if absent, and
// applies the "clear others then set one" primary-flag invariant as a
// single transactional step when isPrimary is requested.
func (r *ProductRepository) Attach(ctx context.Context, productID, imageID uint64, isPrimary bool) (*AttachResult, error) {
	var result AttachResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link ProductImageLink
		err := tx.Where("product_id = ? AND image_id = ?", productID, imageID).First(&link).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			link = ProductImageLink{ProductID: productID, ImageID: imageID, IsPrimary: isPrimary}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("create link: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load link: %w", err)
		default:
			if isPrimary {
				link.IsPrimary = true
				if err := tx.Save(&link).Error; err != nil {
					return fmt.Errorf("update link: %w", err)
				}
			}
		}

		if isPrimary {
			if err := tx.Model(&ProductImageLink{}).
				Where("product_id = ? AND id <> ?", productID, link.ID).
				Update("is_primary", false).Error; err != nil {
				return fmt.Errorf("clear other primaries: %w", err)
			}
			if err := tx.Model(&Product{}).
				Where("id = ?", productID).
				Update("primary_image_id", imageID).Error; err != nil {
				return fmt.Errorf("set primary image: %w", err)
			}
		}

		result = AttachResult{ProductID: productID, ImageID: imageID, IsPrimary: link.IsPrimary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
