package search

import (
	"context"
	"time"

	"github.com/paperscout-ai/paperscout/internal/domain"
	"github.com/paperscout-ai/paperscout/internal/domain/content"
)

// Repository defines the storage contract for the retrieval stages.
type Repository interface {
	// SimilaritySearch returns similarity-ordered papers in the window.
	// A nil vector skips the similarity predicate and orders by stored
	// score instead.
	SimilaritySearch(
		ctx context.Context, vector []float32, threshold float64, limit int, since time.Time,
	) ([]content.Record, error)

	// PatternSearch returns score-ordered papers in the window whose
	// external id or title contains the pattern.
	PatternSearch(
		ctx context.Context, pattern string, since time.Time, limit int,
	) ([]content.Record, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
