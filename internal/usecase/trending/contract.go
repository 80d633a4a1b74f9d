package trending

import (
	"context"
	"time"

	"github.com/paperscout-ai/paperscout/internal/domain/content"
)

// Repository defines the storage contract for trending aggregation.
type Repository interface {
	// TopScoredInWindow returns the highest-scored records of one type
	// published inside [from, to], both ends inclusive. platform narrows
	// to one source platform when non-empty.
	TopScoredInWindow(
		ctx context.Context, typ content.Type, from, to time.Time, limit int, platform string,
	) ([]content.Record, error)
}
