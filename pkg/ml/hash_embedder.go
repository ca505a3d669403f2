package ml

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEmbedder is a dependency-free embedding provider using the hashing
// trick over character trigrams. It is deterministic, needs no model
// files, and serves as the fallback when no ONNX model is available.
// Similar phrasings land on overlapping trigram buckets, which is enough
// for seed-phrase matching even though it carries no learned semantics.
type HashEmbedder struct {
	dim int
}

// HashEmbedderDimension is the fixed vector width of the fallback embedder.
const HashEmbedderDimension = 256

// NewHashEmbedder creates the fallback embedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{dim: HashEmbedderDimension}
}

// Dimension implements EmbeddingProvider.
func (h *HashEmbedder) Dimension() int {
	return h.dim
}

// Embed implements EmbeddingProvider. The output is L2-normalized.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dim)
	lower := strings.ToLower(text)
	runes := []rune(lower)
	if len(runes) < 3 {
		runes = append(runes, ' ', ' ')
	}
	for i := 0; i+3 <= len(runes); i++ {
		hasher := fnv.New32a()
		hasher.Write([]byte(string(runes[i : i+3])))
		sum := hasher.Sum32()
		bucket := int(sum % uint32(h.dim))
		// alternate sign by a second hash bit to reduce bucket collisions
		if sum&0x80000000 != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// EmbedBatch implements EmbeddingProvider.
func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := h.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
