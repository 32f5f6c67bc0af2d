// Package manifest derives the set of chunks present for an upload
// session from the blob store's listing and checks it for the
// contiguous index sequence the assembler requires.
package manifest

import "github.com/catalogforge/imgingest/internal/apperror"

// Lister is the subset of blobstore.Store the manifest needs.
type Lister interface {
	ListChunks(uploadID string) ([]int, error)
}

// Manifest is the ascending, numerically-sorted set of chunk indices
// currently present for an upload.
type Manifest struct {
	Indices []int
}

// Load lists the chunks present for uploadID.
func Load(lister Lister, uploadID string) (*Manifest, error) {
	indices, err := lister.ListChunks(uploadID)
	if err != nil {
		return nil, err
	}
	return &Manifest{Indices: indices}, nil
}

// Empty reports whether no chunks have been received yet.
func (m *Manifest) Empty() bool {
	return len(m.Indices) == 0
}

// CheckComplete verifies the manifest's indices form exactly the
// contiguous range [0, N) implied by the listing itself (N = len).
// Natural-sort on padded names is not sufficient upstream; this
// assumes the caller already sorted on the integer index, as
// blobstore.ListChunks does.
func (m *Manifest) CheckComplete() error {
	if m.Empty() {
		return apperror.New(apperror.KindNoChunks, "no chunks received for upload")
	}
	for i, idx := range m.Indices {
		if idx != i {
			return apperror.New(apperror.KindMissingChunks, "chunk indices are not contiguous from zero")
		}
	}
	return nil
}

// Count returns the total number of chunks in the manifest, which
// after CheckComplete succeeds equals the upload's total_chunks.
func (m *Manifest) Count() int {
	return len(m.Indices)
}
