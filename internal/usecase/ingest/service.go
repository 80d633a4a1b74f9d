package ingest

import (
	"context"
	"fmt"

	"github.com/paperscout-ai/paperscout/internal/domain/content"
)

// Service writes content records into the catalog. Papers are embedded
// on the way in so the semantic stage can retrieve them; other types
// carry no vector.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates an ingest service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Ingest stores one record, embedding paper title text first.
func (s *Service) Ingest(ctx context.Context, rec *content.Record) error {
	var vector []float32

	if rec.ContentType() == content.Paper && rec.Title() != "" {
		embResult, err := s.embed.Embed(ctx, rec.Title())
		if err != nil {
			return fmt.Errorf("embed record: %w", err)
		}
		vector = embResult.Embedding
	}

	if err := s.repo.Upsert(ctx, rec, vector); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}
