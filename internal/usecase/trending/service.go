package trending

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/paperscout-ai/paperscout/internal/domain/content"
	domtrend "github.com/paperscout-ai/paperscout/internal/domain/trending"
	"github.com/paperscout-ai/paperscout/internal/metrics"
)

// Service computes trending top-K lists per content type over a trailing
// window ending at a reference date. One aggregator parameterized by
// content type; the per-type collection and score field live in the
// repository.
type Service struct {
	repo Repository
}

// New creates a trending service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Trending returns the top-K records of one content type inside the
// window. platform narrows paper trending to one source platform; it is
// ignored for other types.
func (s *Service) Trending(
	ctx context.Context, typ content.Type, w domtrend.Window, platform string,
) ([]content.Record, error) {
	if typ != content.Paper {
		platform = ""
	}

	metrics.TrendingRequestsTotal.WithLabelValues(string(typ)).Inc()

	records, err := s.repo.TopScoredInWindow(ctx, typ, w.Start(), w.Reference(), w.Limit(), platform)
	if err != nil {
		return nil, fmt.Errorf("trending %s: %w", typ, err)
	}
	return records, nil
}

// TrendingAll aggregates every content type concurrently. The per-type
// collections are disjoint, so the fan-out shares no mutable state; any
// single failure fails the whole call.
func (s *Service) TrendingAll(
	ctx context.Context, w domtrend.Window, platform string,
) (map[content.Type][]content.Record, error) {
	results := make(map[content.Type][]content.Record, len(content.All()))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for _, typ := range content.All() {
		g.Go(func() error {
			records, err := s.Trending(ctx, typ, w, platform)
			if err != nil {
				return err
			}
			mu.Lock()
			results[typ] = records
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
