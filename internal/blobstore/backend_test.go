package blobstore

import (
	"testing"

	"github.com/catalogforge/imgingest/internal/config"
)

func TestOpenBackend_LocalDefault(t *testing.T) {
	backend, err := OpenBackend(config.BlobConfig{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("OpenBackend: %v", err)
	}
	if backend == nil {
		t.Fatal("expected non-nil backend")
	}
}

func TestOpenBackend_UnknownRejected(t *testing.T) {
	_, err := OpenBackend(config.BlobConfig{Backend: "tape"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
