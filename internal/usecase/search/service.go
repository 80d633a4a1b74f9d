package search

import (
	"context"
	"fmt"
	"time"

	"github.com/paperscout-ai/paperscout/internal/domain/content"
	"github.com/paperscout-ai/paperscout/internal/domain/search/query"
	"github.com/paperscout-ai/paperscout/internal/domain/timerange"
	"github.com/paperscout-ai/paperscout/internal/metrics"
)

// Service runs the hybrid retrieval pipeline: semantic stage first, then
// a lexical fallback when the semantic tier comes up short, merged as a
// two-tier union.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search executes one search request. now anchors the time window; the
// caller passes it explicitly so results are reproducible.
//
// Stages are sequential: the fallback limit depends on the semantic
// result count. Any stage failure fails the whole request, there is no
// partial-result degradation.
func (s *Service) Search(
	ctx context.Context, q *query.Query, now time.Time,
) ([]content.Record, error) {
	since := timerange.Resolve(q.TimeRange(), now)

	if q.IsEmpty() {
		metrics.SearchRequestsTotal.WithLabelValues("browse").Inc()

		// Empty query: semantic stage without an embedding, the
		// similarity predicate is skipped rather than defaulted to zero.
		results, err := s.repo.SimilaritySearch(ctx, nil, 0, q.MatchCount(), since)
		if err != nil {
			return nil, fmt.Errorf("browse window: %w", err)
		}
		return results, nil
	}

	metrics.SearchRequestsTotal.WithLabelValues("semantic").Inc()

	embResult, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	semantic, err := s.repo.SimilaritySearch(
		ctx, embResult.Embedding, q.SimilarityThreshold(), q.MatchCount(), since,
	)
	if err != nil {
		return nil, fmt.Errorf("semantic stage: %w", err)
	}

	if len(semantic) >= q.MatchCount() {
		return merge(semantic, nil, q.MatchCount()), nil
	}

	metrics.SearchFallbackTotal.Inc()

	fallback, err := s.repo.PatternSearch(ctx, q.Text(), since, q.MatchCount()-len(semantic))
	if err != nil {
		return nil, fmt.Errorf("lexical fallback: %w", err)
	}

	return merge(semantic, fallback, q.MatchCount()), nil
}
