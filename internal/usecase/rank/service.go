package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/paperscout-ai/paperscout/internal/domain"
	"github.com/paperscout-ai/paperscout/internal/domain/content"
)

// Position is a record's 1-based ordinal inside its peer group.
type Position struct {
	Ordinal   int
	GroupSize int
}

// Service locates a record's rank among its peers by stored score.
type Service struct {
	repo Repository
}

// New creates a rank service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// RankOf returns the 1-based position of (typ, id) within its peer
// group, ordered by score descending. creator restricts the group to
// one creator's records (e.g. one creator's models) when non-empty.
//
// Equal scores tie-break by ascending id so ordinals stay deterministic.
func (s *Service) RankOf(
	ctx context.Context, typ content.Type, id, creator string,
) (Position, error) {
	records, err := s.repo.ListScored(ctx, typ, creator)
	if err != nil {
		return Position{}, fmt.Errorf("list %s group: %w", typ, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score() != records[j].Score() {
			return records[i].Score() > records[j].Score()
		}
		return records[i].ID() < records[j].ID()
	})

	for i := range records {
		if records[i].ID() == id {
			return Position{Ordinal: i + 1, GroupSize: len(records)}, nil
		}
	}

	return Position{}, fmt.Errorf("%w: %s %q not in group", domain.ErrNotFound, typ, id)
}
