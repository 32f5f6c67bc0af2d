// Package blobstore implements the session-rooted filesystem namespace
// that backs chunk reception, assembly, and variant storage. It layers
// domain operations (putChunk, listChunks, putBlob, ...) on top of the
// generalized atomic local storage backend used throughout the upload
// package.
package blobstore

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/catalogforge/imgingest/upload/storage"
)

// Store exposes the namespace:
//
//	<root>/tmp/<upload_id>/chunk_<index>.part
//	<root>/<upload_id>/original(.<ext>)
//	<root>/<upload_id>/<variant>.jpg
//
// backed by a storage.Storage implementation (local disk in production,
// swappable for tests).
type Store struct {
	backend storage.Storage
}

// New wraps a storage.Storage backend as a session-rooted blob namespace.
func New(backend storage.Storage) *Store {
	return &Store{backend: backend}
}

var chunkNamePattern = regexp.MustCompile(`^chunk_(\d+)\.part$`)

func chunkTempDir(uploadID string) string {
	return fmt.Sprintf("tmp/%s", uploadID)
}

func chunkPath(uploadID string, index int) string {
	return fmt.Sprintf("tmp/%s/chunk_%d.part", uploadID, index)
}

// PutChunk writes chunk bytes atomically. Re-sending the same index
// overwrites the prior content, matching the coordinator's idempotence
// requirement.
func (s *Store) PutChunk(uploadID string, index int, r io.Reader) error {
	_, err := s.backend.Store(chunkPath(uploadID, index), r)
	if err != nil {
		return fmt.Errorf("putChunk: %w", err)
	}
	return nil
}

// ReadChunk opens the chunk at index for reading.
func (s *Store) ReadChunk(uploadID string, index int) (io.ReadCloser, error) {
	rc, err := s.backend.GetReader(chunkPath(uploadID, index))
	if err != nil {
		return nil, fmt.Errorf("readChunk: %w", err)
	}
	return rc, nil
}

// ListChunks returns the indices present for uploadID in ascending
// numeric order, parsed from the filename rather than sorted
// lexically (padding-free names like chunk_2.part vs chunk_10.part
// would otherwise sort wrong).
func (s *Store) ListChunks(uploadID string) ([]int, error) {
	files, err := s.backend.ListFiles()
	if err != nil {
		return nil, fmt.Errorf("listChunks: %w", err)
	}
	prefix := chunkTempDir(uploadID) + "/"
	var indices []int
	for _, f := range files {
		f = strings.ReplaceAll(f, "\\", "/")
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		name := strings.TrimPrefix(f, prefix)
		m := chunkNamePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

// DeleteChunkDir best-effort removes every chunk file for uploadID.
// Directory removal of an empty dir is not guaranteed by the storage
// interface, so this deletes files individually; that is sufficient
// since nothing reads the temp directory itself.
func (s *Store) DeleteChunkDir(uploadID string) error {
	indices, err := s.ListChunks(uploadID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, idx := range indices {
		if err := s.backend.Delete(chunkPath(uploadID, idx)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BlobPath returns the storage-relative path for a named blob
// (e.g. "original.jpg" or "512.jpg") within uploadID's namespace.
func (s *Store) BlobPath(uploadID, name string) string {
	return fmt.Sprintf("%s/%s", uploadID, name)
}

// PutBlob atomically writes a canonical blob (assembled original or an
// encoded variant) under uploadID's namespace.
func (s *Store) PutBlob(uploadID, name string, source io.Reader) (string, error) {
	path, err := s.backend.Store(s.BlobPath(uploadID, name), source)
	if err != nil {
		return "", fmt.Errorf("putBlob: %w", err)
	}
	return path, nil
}

// ReadBlob opens a previously stored blob for reading.
func (s *Store) ReadBlob(uploadID, name string) (io.ReadCloser, error) {
	rc, err := s.backend.GetReader(s.BlobPath(uploadID, name))
	if err != nil {
		return nil, fmt.Errorf("readBlob: %w", err)
	}
	return rc, nil
}

// Exists reports whether the blob at the given storage-relative path exists.
func (s *Store) Exists(path string) bool {
	return s.backend.Exists(path)
}
