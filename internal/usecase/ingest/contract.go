package ingest

import (
	"context"

	"github.com/paperscout-ai/paperscout/internal/domain"
	"github.com/paperscout-ai/paperscout/internal/domain/content"
)

// Repository defines the storage contract for record ingest.
type Repository interface {
	Upsert(ctx context.Context, rec *content.Record, vector []float32) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
