// Package attach implements attachToProduct: resolving a completed
// upload's image and linking it to a catalog product, enforcing the
// "clear others then set one" primary-image invariant.
package attach

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/catalogforge/imgingest/internal/apperror"
	"github.com/catalogforge/imgingest/internal/logging"
	"github.com/catalogforge/imgingest/internal/store"
	"github.com/catalogforge/imgingest/observability"
)

// Existence checks whether a blob is present at a storage-relative path.
type Existence interface {
	Exists(path string) bool
}

// Enqueuer re-dispatches a reset upload to the processing queue.
type Enqueuer interface {
	Enqueue(uploadID string)
}

// Resolver implements attachToProduct.
type Resolver struct {
	uploads   *store.UploadRepository
	images    *store.ImageRepository
	products  *store.ProductRepository
	jobs      *store.JobRepository
	blobs     Existence
	queue     Enqueuer
	log       *logging.Logger
	readyWait time.Duration
	jobTries  int
}

func New(uploads *store.UploadRepository, images *store.ImageRepository, products *store.ProductRepository, jobs *store.JobRepository, blobs Existence, queue Enqueuer, log *logging.Logger, readyWait time.Duration, jobTries int) *Resolver {
	return &Resolver{
		uploads:   uploads,
		images:    images,
		products:  products,
		jobs:      jobs,
		blobs:     blobs,
		queue:     queue,
		log:       log,
		readyWait: readyWait,
		jobTries:  jobTries,
	}
}

// AttachToProduct resolves uploadID's image and links it to the
// product identified by sku, applying isPrimary under a transaction.
func (r *Resolver) AttachToProduct(ctx context.Context, uploadID, sku string, isPrimary bool) (*store.AttachResult, error) {
	start := time.Now()
	result, err := r.attachToProduct(ctx, uploadID, sku, isPrimary)
	observability.GetObserver().OnAttach(ctx, uploadID, sku, isPrimary, time.Since(start), err == nil)
	return result, err
}

func (r *Resolver) attachToProduct(ctx context.Context, uploadID, sku string, isPrimary bool) (*store.AttachResult, error) {
	product, err := r.products.GetBySKU(ctx, sku)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperror.New(apperror.KindNotFound, "product not found")
		}
		return nil, err
	}

	if err := r.checkReady(ctx, uploadID); err != nil {
		return nil, err
	}

	imageID, err := r.resolveImageID(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	result, err := r.products.Attach(ctx, product.ID, imageID, isPrimary)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternalIO, "attach image to product", err)
	}
	return result, nil
}

// checkReady inspects the upload's status and either lets the caller
// proceed (status complete) or returns the appropriate signal: not
// ready, a recovery re-dispatch, or a terminal failure.
func (r *Resolver) checkReady(ctx context.Context, uploadID string) error {
	err := r.uploads.WithLock(ctx, uploadID, func(tx *gorm.DB, s *store.UploadSession) error {
		switch s.Status {
		case store.StatusComplete:
			return nil

		case store.StatusUploading, store.StatusAssembling:
			if time.Since(s.UpdatedAt) > r.readyWait {
				s.Status = store.StatusFailed
				if err := r.uploads.Save(tx, s); err != nil {
					return err
				}
				return apperror.New(apperror.KindProcessingTimeout, "upload stalled past the ready-wait timeout")
			}
			return apperror.New(apperror.KindNotReady, "upload is not yet complete")

		case store.StatusFailed:
			if s.Path != "" && r.blobs.Exists(s.Path) {
				s.Status = store.StatusUploading
				if err := r.uploads.Save(tx, s); err != nil {
					return err
				}
				if err := r.jobs.EnsurePending(ctx, uploadID, r.jobTries); err != nil {
					return err
				}
				r.queue.Enqueue(uploadID)
				return apperror.New(apperror.KindNotReady, "upload reset for reprocessing")
			}
			return apperror.New(apperror.KindProcessingFailed, "upload failed and has no recoverable source blob")
		}
		return nil
	})
	if err == store.ErrNotFound {
		return apperror.New(apperror.KindNotFound, "upload not found")
	}
	return err
}

// resolveImageID finds the image to attach: the original variant, or
// the first available variant if original is missing, or an
// inconsistent-state error if the upload is complete with none at all.
func (r *Resolver) resolveImageID(ctx context.Context, uploadID string) (uint64, error) {
	img, err := r.images.Get(ctx, uploadID, store.VariantOriginal)
	if err == nil {
		return img.ID, nil
	}
	if err != store.ErrNotFound {
		return 0, err
	}

	variants, err := r.images.ListByUpload(ctx, uploadID)
	if err != nil {
		return 0, err
	}
	if len(variants) == 0 {
		r.markInconsistent(ctx, uploadID)
		return 0, apperror.New(apperror.KindInconsistentState, "upload is complete but has no recorded image variants")
	}

	r.log.WithUpload(uploadID).Warn().Str("variant", string(variants[0].Variant)).Msg("original variant missing, binding first available variant")
	return variants[0].ID, nil
}

func (r *Resolver) markInconsistent(ctx context.Context, uploadID string) {
	_ = r.uploads.WithLock(ctx, uploadID, func(tx *gorm.DB, s *store.UploadSession) error {
		s.Status = store.StatusFailed
		return r.uploads.Save(tx, s)
	})
}
