package embed

import (
	"context"
	"crypto/md5" //nolint:gosec // not used for security, just a stable hash
	"encoding/binary"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// FakeEmbedder produces small deterministic vectors derived from the input
// text. Used in tests and as an offline fallback when no embedding sidecar
// is reachable: identical texts map to identical vectors, which is all the
// idempotency sweeps rely on.
type FakeEmbedder struct {
	Dim int
}

// NewFakeEmbedder creates a deterministic embedder with the given dimension.
func NewFakeEmbedder(dim int) *FakeEmbedder {
	if dim <= 0 {
		dim = 8
	}
	return &FakeEmbedder{Dim: dim}
}

// Embed hashes the text into a stable pseudo-embedding.
func (f *FakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	sum := md5.Sum([]byte(text)) //nolint:gosec
	vec := make([]float32, f.Dim)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(sum[(i*4)%len(sum):][:4])
		vec[i] = float32(bits%1000)/500 - 1 // values in [-1, 1)
	}
	return vec, nil
}

var _ domain.Embedder = (*FakeEmbedder)(nil)
