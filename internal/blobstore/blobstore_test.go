package blobstore

import (
	"strings"
	"testing"

	"github.com/catalogforge/imgingest/upload/storage"
)

func TestPutAndReadChunk(t *testing.T) {
	s := New(storage.NewMockStorage())
	if err := s.PutChunk("up1", 0, strings.NewReader("hello")); err != nil {
		t.Fatalf("PutChunk: %v", err)
	}
	rc, err := s.ReadChunk("up1", 0)
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	defer rc.Close()
}

func TestPutChunkIdempotentOverwrite(t *testing.T) {
	s := New(storage.NewMockStorage())
	if err := s.PutChunk("up1", 0, strings.NewReader("first")); err != nil {
		t.Fatalf("PutChunk: %v", err)
	}
	if err := s.PutChunk("up1", 0, strings.NewReader("second")); err != nil {
		t.Fatalf("PutChunk overwrite: %v", err)
	}
	indices, err := s.ListChunks("up1")
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(indices) != 1 || indices[0] != 0 {
		t.Errorf("expected single index [0], got %v", indices)
	}
}

func TestListChunksNumericOrder(t *testing.T) {
	s := New(storage.NewMockStorage())
	for _, idx := range []int{10, 2, 1, 0} {
		if err := s.PutChunk("up1", idx, strings.NewReader("x")); err != nil {
			t.Fatalf("PutChunk(%d): %v", idx, err)
		}
	}
	indices, err := s.ListChunks("up1")
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	want := []int{0, 1, 2, 10}
	if len(indices) != len(want) {
		t.Fatalf("expected %v, got %v", want, indices)
	}
	for i := range want {
		if indices[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], indices[i])
		}
	}
}

func TestListChunksScopedToUpload(t *testing.T) {
	s := New(storage.NewMockStorage())
	s.PutChunk("up1", 0, strings.NewReader("a"))
	s.PutChunk("up2", 0, strings.NewReader("b"))
	s.PutChunk("up2", 1, strings.NewReader("c"))

	indices, err := s.ListChunks("up1")
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(indices) != 1 {
		t.Errorf("expected only up1's chunk, got %v", indices)
	}
}

func TestDeleteChunkDir(t *testing.T) {
	s := New(storage.NewMockStorage())
	s.PutChunk("up1", 0, strings.NewReader("a"))
	s.PutChunk("up1", 1, strings.NewReader("b"))

	if err := s.DeleteChunkDir("up1"); err != nil {
		t.Fatalf("DeleteChunkDir: %v", err)
	}
	indices, err := s.ListChunks("up1")
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(indices) != 0 {
		t.Errorf("expected no chunks after delete, got %v", indices)
	}
}

func TestPutBlobAndReadBlob(t *testing.T) {
	s := New(storage.NewMockStorage())
	path, err := s.PutBlob("up1", "original.jpg", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("PutBlob: %v", err)
	}
	if path != "up1/original.jpg" {
		t.Errorf("expected path up1/original.jpg, got %s", path)
	}
	rc, err := s.ReadBlob("up1", "original.jpg")
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	defer rc.Close()

	if !s.Exists("up1/original.jpg") {
		t.Error("expected blob to exist")
	}
}

func TestBlobPath(t *testing.T) {
	s := New(storage.NewMockStorage())
	if got := s.BlobPath("up1", "512.jpg"); got != "up1/512.jpg" {
		t.Errorf("expected up1/512.jpg, got %s", got)
	}
}
