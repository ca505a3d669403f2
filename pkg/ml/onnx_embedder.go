package ml

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// OnnxEmbedderDimension is the output width of MiniLM-class sentence
// encoders.
const OnnxEmbedderDimension = 384

// OnnxEmbedder generates sentence embeddings with a local ONNX model via
// hugot. It is optional: when no model is configured or initialization
// fails, callers fall back to the HashEmbedder.
type OnnxEmbedder struct {
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	mu       sync.RWMutex
	ready    bool
}

// NewOnnxEmbedder loads the model at modelPath. onnxLibraryPath points at
// the ONNX Runtime shared library; when it is empty or the runtime is
// unavailable, the slower pure Go backend is used.
func NewOnnxEmbedder(modelPath, onnxLibraryPath string) (*OnnxEmbedder, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("no embedding model path specified")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("embedding model path does not exist: %s", modelPath)
	}

	e := &OnnxEmbedder{}

	session, err := createSession(onnxLibraryPath)
	if err != nil {
		return nil, err
	}
	e.session = session

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "seed-embedder",
	})
	if err != nil {
		_ = e.session.Destroy()
		return nil, fmt.Errorf("failed to create embedding pipeline: %w", err)
	}
	e.pipeline = pipeline
	e.ready = true
	log.Printf("[ML] ONNX embedder initialized (model: %s)", modelPath)
	return e, nil
}

func createSession(onnxLibraryPath string) (*hugot.Session, error) {
	if onnxLibraryPath != "" {
		session, err := hugot.NewORTSession(options.WithOnnxLibraryPath(onnxLibraryPath))
		if err == nil {
			log.Printf("[ML] embedder using ONNX Runtime backend")
			return session, nil
		}
		log.Printf("[ML] ONNX Runtime unavailable, falling back to Go backend: %v", err)
	}
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Go session: %w", err)
	}
	log.Printf("[ML] embedder using pure Go backend")
	return session, nil
}

// Dimension implements EmbeddingProvider.
func (e *OnnxEmbedder) Dimension() int {
	return OnnxEmbedderDimension
}

// Embed implements EmbeddingProvider.
func (e *OnnxEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch implements EmbeddingProvider.
func (e *OnnxEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready || e.pipeline == nil {
		return nil, fmt.Errorf("onnx embedder not ready")
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	result, err := e.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		if i < len(result.Embeddings) {
			embeddings[i] = result.Embeddings[i]
		}
	}
	return embeddings, nil
}

// Close releases the underlying session.
func (e *OnnxEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ready = false
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

// NewEmbedder picks the best available embedding provider: the ONNX model
// when configured and loadable, the hash embedder otherwise. It never
// fails; seed matching degrades rather than disabling the service.
func NewEmbedder(modelPath, onnxLibraryPath string) EmbeddingProvider {
	if modelPath != "" {
		e, err := NewOnnxEmbedder(modelPath, onnxLibraryPath)
		if err == nil {
			return e
		}
		log.Printf("[ML] ONNX embedder unavailable, using hash embedder: %v", err)
	}
	return NewHashEmbedder()
}
