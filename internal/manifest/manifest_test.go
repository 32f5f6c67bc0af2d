package manifest

import (
	"testing"

	"github.com/catalogforge/imgingest/internal/apperror"
)

type fakeLister struct {
	indices []int
	err     error
}

func (f fakeLister) ListChunks(uploadID string) ([]int, error) {
	return f.indices, f.err
}

func TestCheckCompleteContiguous(t *testing.T) {
	m, err := Load(fakeLister{indices: []int{0, 1, 2}}, "up-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := m.CheckComplete(); err != nil {
		t.Errorf("expected contiguous manifest to be complete, got %v", err)
	}
	if m.Count() != 3 {
		t.Errorf("expected count 3, got %d", m.Count())
	}
}

func TestCheckCompleteEmpty(t *testing.T) {
	m, _ := Load(fakeLister{indices: nil}, "up-1")
	err := m.CheckComplete()
	if kind, ok := apperror.KindOf(err); !ok || kind != apperror.KindNoChunks {
		t.Errorf("expected KindNoChunks, got %v", err)
	}
}

func TestCheckCompleteGap(t *testing.T) {
	m, _ := Load(fakeLister{indices: []int{0, 1, 3}}, "up-1")
	err := m.CheckComplete()
	if kind, ok := apperror.KindOf(err); !ok || kind != apperror.KindMissingChunks {
		t.Errorf("expected KindMissingChunks, got %v", err)
	}
}
