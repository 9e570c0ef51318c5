package embedding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kailas-cloud/docquery/internal/domain"
)

// Encode serializes a vector as a little-endian sequence of IEEE 754 float32
// values without a length prefix; the dimension is derived from the blob size
// on decode.
func Encode(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode deserializes a blob produced by Encode, validating it against the
// expected dimension.
func Decode(data []byte, dim int) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob length %d (not multiple of 4)", len(data))
	}
	if len(data)/4 != dim {
		return nil, fmt.Errorf("vector blob holds %d dims, want %d: %w",
			len(data)/4, dim, domain.ErrVectorDimMismatch)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

// Cosine computes the cosine similarity between two L2-normalized vectors,
// which reduces to their dot product. Returns 0 on dimension mismatch.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// normalize scales the vector to unit L2 length in place. A zero vector is
// left untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
