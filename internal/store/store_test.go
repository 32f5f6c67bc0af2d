package store

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&UploadSession{}, &Image{}, &Product{}, &ProductImageLink{}, &Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestUploadRepository_EnsureUploadingIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUploadRepository(db)
	ctx := context.Background()

	if err := repo.EnsureUploading(ctx, "up-1", "photo.jpg", 1024, "image/jpeg"); err != nil {
		t.Fatalf("first EnsureUploading: %v", err)
	}
	if err := repo.EnsureUploading(ctx, "up-1", "other-name.png", 2048, "image/png"); err != nil {
		t.Fatalf("second EnsureUploading: %v", err)
	}

	s, err := repo.Get(ctx, "up-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.OriginalFilename != "photo.jpg" {
		t.Errorf("expected first-write-wins filename photo.jpg, got %s", s.OriginalFilename)
	}
}

func TestUploadRepository_GetNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUploadRepository(db)

	_, err := repo.Get(context.Background(), "missing")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUploadRepository_WithLockTransitionsStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUploadRepository(db)
	ctx := context.Background()
	repo.EnsureUploading(ctx, "up-1", "photo.jpg", 1024, "image/jpeg")

	err := repo.WithLock(ctx, "up-1", func(tx *gorm.DB, s *UploadSession) error {
		s.Status = StatusAssembling
		return repo.Save(tx, s)
	})
	if err != nil {
		t.Fatalf("WithLock: %v", err)
	}

	s, err := repo.Get(ctx, "up-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Status != StatusAssembling {
		t.Errorf("expected status assembling, got %s", s.Status)
	}
}

func TestImageRepository_UpsertConvergesOnVariant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()

	img := &Image{UploadID: "up-1", Variant: VariantOriginal, Path: "up-1/original.jpg", MIMEType: "image/jpeg", Width: 800, Height: 600, Checksum: "abc"}
	if err := repo.Upsert(ctx, img); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	img2 := &Image{UploadID: "up-1", Variant: VariantOriginal, Path: "up-1/original.jpg", MIMEType: "image/jpeg", Width: 800, Height: 600, Checksum: "def"}
	if err := repo.Upsert(ctx, img2); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	imgs, err := repo.ListByUpload(ctx, "up-1")
	if err != nil {
		t.Fatalf("ListByUpload: %v", err)
	}
	if len(imgs) != 1 {
		t.Fatalf("expected single converged row, got %d", len(imgs))
	}
	if imgs[0].Checksum != "def" {
		t.Errorf("expected latest checksum to win, got %s", imgs[0].Checksum)
	}
}

func TestProductRepository_AttachSetsPrimaryAndClearsOthers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	product := &Product{SKU: "SKU-1"}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	img1 := &Image{UploadID: "up-1", Variant: VariantOriginal, Path: "p1", MIMEType: "image/jpeg", Width: 1, Height: 1, Checksum: "a"}
	img2 := &Image{UploadID: "up-2", Variant: VariantOriginal, Path: "p2", MIMEType: "image/jpeg", Width: 1, Height: 1, Checksum: "b"}
	db.Create(img1)
	db.Create(img2)

	repo := NewProductRepository(db)

	if _, err := repo.Attach(ctx, product.ID, img1.ID, true); err != nil {
		t.Fatalf("attach img1 primary: %v", err)
	}
	res, err := repo.Attach(ctx, product.ID, img2.ID, true)
	if err != nil {
		t.Fatalf("attach img2 primary: %v", err)
	}
	if !res.IsPrimary {
		t.Error("expected img2 link to be primary")
	}

	var links []ProductImageLink
	db.Where("product_id = ? AND is_primary = ?", product.ID, true).Find(&links)
	if len(links) != 1 || links[0].ImageID != img2.ID {
		t.Errorf("expected only img2 to be primary, got %+v", links)
	}

	var p Product
	db.First(&p, product.ID)
	if p.PrimaryImageID == nil || *p.PrimaryImageID != img2.ID {
		t.Errorf("expected product primary_image_id to point at img2")
	}
}

func TestJobRepository_TryLockPreventsDoubleExecution(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	if err := repo.EnsurePending(ctx, "up-1", 3); err != nil {
		t.Fatalf("EnsurePending: %v", err)
	}

	job, ok, err := repo.TryLock(ctx, "up-1")
	if err != nil || !ok {
		t.Fatalf("expected first TryLock to succeed, got ok=%v err=%v", ok, err)
	}
	if job.AttemptsUsed != 1 {
		t.Errorf("expected attempts_used 1, got %d", job.AttemptsUsed)
	}

	_, ok, err = repo.TryLock(ctx, "up-1")
	if err != nil {
		t.Fatalf("second TryLock: %v", err)
	}
	if ok {
		t.Error("expected second concurrent TryLock to be rejected while job is running")
	}
}

func TestJobRepository_FinishFailureRetriesUntilCap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()
	repo.EnsurePending(ctx, "up-1", 2)

	repo.TryLock(ctx, "up-1")
	if err := repo.Finish(ctx, "up-1", false, nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	j, err := repo.Get(ctx, "up-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if j.Status != JobPending {
		t.Errorf("expected job back to pending with attempts remaining, got %s", j.Status)
	}

	repo.TryLock(ctx, "up-1")
	if err := repo.Finish(ctx, "up-1", false, nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	j, err = repo.Get(ctx, "up-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if j.Status != JobFailed {
		t.Errorf("expected job terminally failed after exhausting attempts, got %s", j.Status)
	}
}
