package ml

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// ScamSeed is one known scam phrase used for semantic matching.
type ScamSeed struct {
	ID       uuid.UUID `json:"id"`
	Category string    `json:"category"`
	Text     string    `json:"text"`
	Severity float64   `json:"severity"`
	Language string    `json:"language"`
}

// SeedMatch is a semantic similarity hit against the seed store.
type SeedMatch struct {
	Seed       *ScamSeed `json:"seed"`
	Similarity float64   `json:"similarity"`
}

// EmbeddingProvider generates embeddings for text.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// SeedStore holds scam phrase seeds in an in-memory chromem-go collection
// for nearest-neighbor lookup. It is read-only after loading.
type SeedStore struct {
	collection *chromem.Collection
	byID       map[string]*ScamSeed
}

// NewSeedStore creates an empty store using the given embedder.
func NewSeedStore(embedder EmbeddingProvider) (*SeedStore, error) {
	db := chromem.NewDB()
	embedFn := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
	collection, err := db.CreateCollection("scam-seeds", nil, embedFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create seed collection: %w", err)
	}
	return &SeedStore{
		collection: collection,
		byID:       make(map[string]*ScamSeed),
	}, nil
}

// Add embeds and stores the seeds. Returns the number stored.
func (st *SeedStore) Add(ctx context.Context, seeds []*ScamSeed) (int, error) {
	if len(seeds) == 0 {
		return 0, nil
	}
	docs := make([]chromem.Document, 0, len(seeds))
	for _, seed := range seeds {
		docs = append(docs, chromem.Document{
			ID:      seed.ID.String(),
			Content: seed.Text,
			Metadata: map[string]string{
				"category": seed.Category,
				"severity": strconv.FormatFloat(seed.Severity, 'f', 2, 64),
				"language": seed.Language,
			},
		})
	}
	if err := st.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return 0, fmt.Errorf("failed to add seed documents: %w", err)
	}
	for _, seed := range seeds {
		st.byID[seed.ID.String()] = seed
	}
	return len(seeds), nil
}

// Count reports the number of stored seeds.
func (st *SeedStore) Count() int {
	return st.collection.Count()
}

// BestMatch returns the most similar seed for the text, or ok=false when
// the store is empty or the query fails.
func (st *SeedStore) BestMatch(ctx context.Context, text string) (SeedMatch, bool) {
	if st == nil || st.collection.Count() == 0 {
		return SeedMatch{}, false
	}
	results, err := st.collection.Query(ctx, text, 1, nil, nil)
	if err != nil || len(results) == 0 {
		return SeedMatch{}, false
	}
	seed, ok := st.byID[results[0].ID]
	if !ok {
		return SeedMatch{}, false
	}
	return SeedMatch{Seed: seed, Similarity: float64(results[0].Similarity)}, true
}

// Similar returns up to limit seeds at or above minSimilarity.
func (st *SeedStore) Similar(ctx context.Context, text string, limit int, minSimilarity float64) ([]SeedMatch, error) {
	if st == nil || st.collection.Count() == 0 {
		return nil, nil
	}
	if limit > st.collection.Count() {
		limit = st.collection.Count()
	}
	results, err := st.collection.Query(ctx, text, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("seed query failed: %w", err)
	}
	var matches []SeedMatch
	for _, r := range results {
		if float64(r.Similarity) < minSimilarity {
			continue
		}
		if seed, ok := st.byID[r.ID]; ok {
			matches = append(matches, SeedMatch{Seed: seed, Similarity: float64(r.Similarity)})
		}
	}
	return matches, nil
}

// CosineSimilarityF32 calculates similarity between two float32 vectors.
func CosineSimilarityF32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
