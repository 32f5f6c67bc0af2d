// Package assembler implements completeUpload: verifying a session's
// chunk manifest is contiguous, stream-concatenating the chunks into
// the canonical blob, and validating the result against the client's
// declared whole-file checksum.
package assembler

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/catalogforge/imgingest/internal/apperror"
	"github.com/catalogforge/imgingest/internal/manifest"
	"github.com/catalogforge/imgingest/internal/store"
	"github.com/catalogforge/imgingest/observability"
)

// BlobLister lists and reads chunks and writes the assembled blob.
type BlobLister interface {
	ListChunks(uploadID string) ([]int, error)
	ReadChunk(uploadID string, index int) (io.ReadCloser, error)
	PutBlob(uploadID, name string, source io.Reader) (string, error)
	DeleteChunkDir(uploadID string) error
}

// Enqueuer notifies the job runner that an upload is ready for the
// image variant pipeline.
type Enqueuer interface {
	Enqueue(uploadID string)
}

// Assembler executes completeUpload under the upload row's lock.
type Assembler struct {
	blobs   BlobLister
	uploads *store.UploadRepository
	jobs    *store.JobRepository
	jobTries int
	queue   Enqueuer
}

func New(blobs BlobLister, uploads *store.UploadRepository, jobs *store.JobRepository, jobTries int, queue Enqueuer) *Assembler {
	return &Assembler{blobs: blobs, uploads: uploads, jobs: jobs, jobTries: jobTries, queue: queue}
}

// CompleteUpload runs the assembler algorithm for uploadID against the
// client's declared whole-file checksum.
func (a *Assembler) CompleteUpload(ctx context.Context, uploadID, declaredChecksum string) error {
	start := time.Now()
	var fileSize int64
	err := a.uploads.WithLock(ctx, uploadID, func(tx *gorm.DB, s *store.UploadSession) error {
		switch s.Status {
		case store.StatusComplete:
			return nil // idempotent success, per step 2
		case store.StatusFailed:
			return apperror.New(apperror.KindNotAcceptingChunks, "upload has already failed")
		}

		m, err := manifest.Load(a.blobs, uploadID)
		if err != nil {
			return apperror.Wrap(apperror.KindInternalIO, "list chunks", err)
		}
		observability.GetObserver().OnAssemblyStart(ctx, uploadID, m.Count())
		if err := m.CheckComplete(); err != nil {
			s.Status = store.StatusFailed
			a.uploads.Save(tx, s)
			return err
		}

		s.Status = store.StatusAssembling
		if err := a.uploads.Save(tx, s); err != nil {
			return err
		}

		ext := filepath.Ext(s.OriginalFilename)
		blobName := "original" + ext

		seq := &chunkSequenceReader{blobs: a.blobs, uploadID: uploadID, indices: m.Indices}
		hash := md5.New()
		tee := io.TeeReader(seq, hash)

		path, err := a.blobs.PutBlob(uploadID, blobName, tee)
		if err != nil {
			s.Status = store.StatusFailed
			a.uploads.Save(tx, s)
			return apperror.Wrap(apperror.KindInternalIO, "stream-concatenate chunks", err)
		}
		computedChecksum := hex.EncodeToString(hash.Sum(nil))

		if !strings.EqualFold(computedChecksum, declaredChecksum) {
			s.Status = store.StatusFailed
			a.uploads.Save(tx, s)
			// Chunks are retained so the client can retry completion
			// without re-uploading; only the bad assembled blob would
			// need cleanup, which is out of scope here since PutBlob
			// already replaced any prior attempt atomically.
			return apperror.New(apperror.KindFileChecksumMismatch, "assembled file checksum does not match declared checksum")
		}

		s.FileChecksum = computedChecksum
		s.Path = path
		s.FileSize = seq.total
		fileSize = seq.total
		// Status stays "assembling" until the variant pipeline records
		// the "original" Image row and promotes it to "complete".
		if err := a.uploads.Save(tx, s); err != nil {
			return err
		}

		if err := a.jobs.EnsurePending(ctx, uploadID, a.jobTries); err != nil {
			return err
		}

		// Best-effort; the processing job never reads chunks once the
		// canonical blob exists.
		_ = a.blobs.DeleteChunkDir(uploadID)

		a.queue.Enqueue(uploadID)
		return nil
	})
	if err == store.ErrNotFound {
		err = apperror.New(apperror.KindNotFound, "upload not found")
	}
	observability.GetObserver().OnAssemblyEnd(ctx, uploadID, fileSize, time.Since(start), err == nil)
	return err
}

// chunkSequenceReader streams chunk files in index order as a single
// io.Reader, opening each chunk lazily so the whole upload is never
// buffered in memory.
type chunkSequenceReader struct {
	blobs   BlobLister
	uploadID string
	indices []int
	pos     int
	current io.ReadCloser
	total   int64
}

func (r *chunkSequenceReader) Read(p []byte) (int, error) {
	for {
		if r.current == nil {
			if r.pos >= len(r.indices) {
				return 0, io.EOF
			}
			rc, err := r.blobs.ReadChunk(r.uploadID, r.indices[r.pos])
			if err != nil {
				return 0, err
			}
			r.current = rc
			r.pos++
		}
		n, err := r.current.Read(p)
		if n > 0 {
			r.total += int64(n)
			return n, nil
		}
		if err == io.EOF {
			r.current.Close()
			r.current = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}
