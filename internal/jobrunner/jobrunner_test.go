package jobrunner

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/catalogforge/imgingest/internal/logging"
	"github.com/catalogforge/imgingest/internal/store"
)

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

type fakeProcessor struct {
	mu        sync.Mutex
	calls     int
	failUntil int
}

func (f *fakeProcessor) Run(ctx context.Context, uploadID, sourcePath string) error {
	f.mu.Lock()
	f.calls++
	callNum := f.calls
	f.mu.Unlock()

	if callNum <= f.failUntil {
		return errNotReady
	}
	return nil
}

var errNotReady = &stubError{"not ready"}

type stubError struct{ msg string }

func (e *stubError) Error() string { return e.msg }

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestRunner_SuccessfulAttemptMarksJobSucceeded(t *testing.T) {
	db := setupTestDB(t)
	uploads := store.NewUploadRepository(db)
	jobs := store.NewJobRepository(db)
	ctx := context.Background()
	uploads.EnsureUploading(ctx, "up-1", "photo.jpg", 0, "image/jpeg")
	jobs.EnsurePending(ctx, "up-1", 3)

	proc := &fakeProcessor{}
	log := logging.New("info", "json")
	runner := New(uploads, jobs, proc, log, 2, time.Second)
	runner.Start(ctx)
	defer runner.Stop()

	runner.Enqueue("up-1")

	waitFor(t, time.Second, func() bool {
		j, err := jobs.Get(ctx, "up-1")
		return err == nil && j.Status == store.JobSucceeded
	})
}

func TestRunner_RetriesUntilSuccess(t *testing.T) {
	db := setupTestDB(t)
	uploads := store.NewUploadRepository(db)
	jobs := store.NewJobRepository(db)
	ctx := context.Background()
	uploads.EnsureUploading(ctx, "up-1", "photo.jpg", 0, "image/jpeg")
	jobs.EnsurePending(ctx, "up-1", 3)

	proc := &fakeProcessor{failUntil: 2}
	log := logging.New("info", "json")
	runner := New(uploads, jobs, proc, log, 2, time.Second)
	runner.Start(ctx)
	defer runner.Stop()

	runner.Enqueue("up-1")

	waitFor(t, 2*time.Second, func() bool {
		j, err := jobs.Get(ctx, "up-1")
		return err == nil && j.Status == store.JobSucceeded
	})
}

func TestRunner_GivesUpAfterMaxAttempts(t *testing.T) {
	db := setupTestDB(t)
	uploads := store.NewUploadRepository(db)
	jobs := store.NewJobRepository(db)
	ctx := context.Background()
	uploads.EnsureUploading(ctx, "up-1", "photo.jpg", 0, "image/jpeg")
	jobs.EnsurePending(ctx, "up-1", 2)

	proc := &fakeProcessor{failUntil: 100}
	log := logging.New("info", "json")
	runner := New(uploads, jobs, proc, log, 2, time.Second)
	runner.Start(ctx)
	defer runner.Stop()

	runner.Enqueue("up-1")

	waitFor(t, 2*time.Second, func() bool {
		j, err := jobs.Get(ctx, "up-1")
		return err == nil && j.Status == store.JobFailed
	})

	j, _ := jobs.Get(ctx, "up-1")
	if j.AttemptsUsed != 2 {
		t.Errorf("expected exactly 2 attempts used, got %d", j.AttemptsUsed)
	}
}
