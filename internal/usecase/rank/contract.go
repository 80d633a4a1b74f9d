package rank

import (
	"context"

	"github.com/paperscout-ai/paperscout/internal/domain/content"
)

// Repository defines the storage contract for rank computation.
type Repository interface {
	// ListScored returns every record of one type ordered by score
	// descending, optionally restricted to one creator's records.
	ListScored(ctx context.Context, typ content.Type, creator string) ([]content.Record, error)
}
