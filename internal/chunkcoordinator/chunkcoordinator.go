// Package chunkcoordinator implements uploadChunk: validating and
// persisting one chunk of an in-progress upload.
package chunkcoordinator

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/catalogforge/imgingest/internal/apperror"
	"github.com/catalogforge/imgingest/internal/store"
	"github.com/catalogforge/imgingest/observability"
)

// ChunkWriter persists one chunk's bytes under an upload's temp namespace.
type ChunkWriter interface {
	PutChunk(uploadID string, index int, r io.Reader) error
}

// Coordinator implements uploadChunk.
type Coordinator struct {
	blobs   ChunkWriter
	uploads *store.UploadRepository
}

func New(blobs ChunkWriter, uploads *store.UploadRepository) *Coordinator {
	return &Coordinator{blobs: blobs, uploads: uploads}
}

// Chunk is one received chunk submission, already shape-validated by the
// HTTP layer (required fields, uuid4/hex_md5 format).
type Chunk struct {
	UploadID         string
	Index            int
	TotalChunks      int
	Checksum         string
	OriginalFilename string
	DeclaredSize     int64
	MIMEType         string
	Data             []byte
}

// Receive runs the chunk-coordinator algorithm: checksum verification,
// upload-row creation-or-reuse, status gating, and atomic chunk write.
func (c *Coordinator) Receive(ctx context.Context, ch Chunk) error {
	sum := md5.Sum(ch.Data)
	if hex.EncodeToString(sum[:]) != ch.Checksum {
		return apperror.New(apperror.KindChunkChecksumMismatch, "chunk checksum does not match received bytes")
	}

	if err := c.uploads.EnsureUploading(ctx, ch.UploadID, ch.OriginalFilename, ch.DeclaredSize, ch.MIMEType); err != nil {
		return apperror.Wrap(apperror.KindInternalIO, "create upload row", err)
	}

	s, err := c.uploads.Get(ctx, ch.UploadID)
	if err != nil {
		return apperror.Wrap(apperror.KindInternalIO, "load upload row", err)
	}
	if s.Status != store.StatusUploading {
		return apperror.New(apperror.KindNotAcceptingChunks, "upload is no longer accepting chunks")
	}

	if err := c.blobs.PutChunk(ch.UploadID, ch.Index, bytes.NewReader(ch.Data)); err != nil {
		return apperror.Wrap(apperror.KindInternalIO, "write chunk", err)
	}
	observability.GetObserver().OnChunkReceived(ctx, ch.UploadID, ch.Index, int64(len(ch.Data)))
	return nil
}
