package assembler

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/catalogforge/imgingest/internal/apperror"
	"github.com/catalogforge/imgingest/internal/blobstore"
	"github.com/catalogforge/imgingest/internal/store"
	"github.com/catalogforge/imgingest/upload/storage"
)

type fakeEnqueuer struct {
	uploadIDs []string
}

func (f *fakeEnqueuer) Enqueue(uploadID string) {
	f.uploadIDs = append(f.uploadIDs, uploadID)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&store.UploadSession{}, &store.Image{}, &store.Product{}, &store.ProductImageLink{}, &store.Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func checksumOf(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func TestCompleteUpload_Success(t *testing.T) {
	db := setupTestDB(t)
	uploads := store.NewUploadRepository(db)
	jobs := store.NewJobRepository(db)
	blobs := blobstore.New(storage.NewMockStorage())
	ctx := context.Background()

	uploads.EnsureUploading(ctx, "up-1", "photo.jpg", 10, "image/jpeg")
	blobs.PutChunk("up-1", 0, strings.NewReader("hello "))
	blobs.PutChunk("up-1", 1, strings.NewReader("world"))

	enq := &fakeEnqueuer{}
	a := New(blobs, uploads, jobs, 3, enq)

	declared := checksumOf("hello ", "world")
	if err := a.CompleteUpload(ctx, "up-1", declared); err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}

	s, err := uploads.Get(ctx, "up-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Status != store.StatusAssembling {
		t.Errorf("expected status assembling awaiting variant pipeline, got %s", s.Status)
	}
	if s.FileChecksum != declared {
		t.Errorf("expected file_checksum %s, got %s", declared, s.FileChecksum)
	}
	if s.Path != "up-1/original.jpg" {
		t.Errorf("expected path up-1/original.jpg, got %s", s.Path)
	}
	if len(enq.uploadIDs) != 1 || enq.uploadIDs[0] != "up-1" {
		t.Errorf("expected upload to be enqueued, got %v", enq.uploadIDs)
	}

	indices, _ := blobs.ListChunks("up-1")
	if len(indices) != 0 {
		t.Errorf("expected chunk dir cleaned up, got %v", indices)
	}
}

func TestCompleteUpload_ChecksumMismatch(t *testing.T) {
	db := setupTestDB(t)
	uploads := store.NewUploadRepository(db)
	jobs := store.NewJobRepository(db)
	blobs := blobstore.New(storage.NewMockStorage())
	ctx := context.Background()

	uploads.EnsureUploading(ctx, "up-1", "photo.jpg", 10, "image/jpeg")
	blobs.PutChunk("up-1", 0, strings.NewReader("hello"))

	a := New(blobs, uploads, jobs, 3, &fakeEnqueuer{})
	err := a.CompleteUpload(ctx, "up-1", "0000000000000000000000000000000")
	if kind, ok := apperror.KindOf(err); !ok || kind != apperror.KindFileChecksumMismatch {
		t.Fatalf("expected KindFileChecksumMismatch, got %v", err)
	}

	s, err := uploads.Get(ctx, "up-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Status != store.StatusFailed {
		t.Errorf("expected status failed, got %s", s.Status)
	}

	// Chunks are retained so a retry of completion can succeed without re-upload.
	indices, _ := blobs.ListChunks("up-1")
	if len(indices) != 1 {
		t.Errorf("expected chunk to be retained after checksum mismatch, got %v", indices)
	}
}

func TestCompleteUpload_NoChunks(t *testing.T) {
	db := setupTestDB(t)
	uploads := store.NewUploadRepository(db)
	jobs := store.NewJobRepository(db)
	blobs := blobstore.New(storage.NewMockStorage())
	ctx := context.Background()

	uploads.EnsureUploading(ctx, "up-1", "photo.jpg", 10, "image/jpeg")

	a := New(blobs, uploads, jobs, 3, &fakeEnqueuer{})
	err := a.CompleteUpload(ctx, "up-1", "irrelevant")
	if kind, ok := apperror.KindOf(err); !ok || kind != apperror.KindNoChunks {
		t.Fatalf("expected KindNoChunks, got %v", err)
	}
}

func TestCompleteUpload_MissingChunks(t *testing.T) {
	db := setupTestDB(t)
	uploads := store.NewUploadRepository(db)
	jobs := store.NewJobRepository(db)
	blobs := blobstore.New(storage.NewMockStorage())
	ctx := context.Background()

	uploads.EnsureUploading(ctx, "up-1", "photo.jpg", 10, "image/jpeg")
	blobs.PutChunk("up-1", 0, strings.NewReader("a"))
	blobs.PutChunk("up-1", 2, strings.NewReader("b"))

	a := New(blobs, uploads, jobs, 3, &fakeEnqueuer{})
	err := a.CompleteUpload(ctx, "up-1", "irrelevant")
	if kind, ok := apperror.KindOf(err); !ok || kind != apperror.KindMissingChunks {
		t.Fatalf("expected KindMissingChunks, got %v", err)
	}
}

func TestCompleteUpload_NotFound(t *testing.T) {
	db := setupTestDB(t)
	uploads := store.NewUploadRepository(db)
	jobs := store.NewJobRepository(db)
	blobs := blobstore.New(storage.NewMockStorage())
	ctx := context.Background()

	a := New(blobs, uploads, jobs, 3, &fakeEnqueuer{})
	err := a.CompleteUpload(ctx, "never-created", "irrelevant")
	if kind, ok := apperror.KindOf(err); !ok || kind != apperror.KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestCompleteUpload_IdempotentOnAlreadyComplete(t *testing.T) {
	db := setupTestDB(t)
	uploads := store.NewUploadRepository(db)
	jobs := store.NewJobRepository(db)
	blobs := blobstore.New(storage.NewMockStorage())
	ctx := context.Background()

	uploads.EnsureUploading(ctx, "up-1", "photo.jpg", 10, "image/jpeg")
	uploads.WithLock(ctx, "up-1", func(tx *gorm.DB, s *store.UploadSession) error {
		s.Status = store.StatusComplete
		return uploads.Save(tx, s)
	})

	a := New(blobs, uploads, jobs, 3, &fakeEnqueuer{})
	if err := a.CompleteUpload(ctx, "up-1", "irrelevant"); err != nil {
		t.Errorf("expected idempotent success for already-complete upload, got %v", err)
	}
}
