package search

import "github.com/paperscout-ai/paperscout/internal/domain/content"

type identity struct {
	typ content.Type
	id  string
}

// merge builds the two-tier result set: every semantic record first, then
// fallback records whose identity is not already present, truncated to
// matchCount. Within each tier the stage ordering is preserved. Fallback
// scores and semantic similarities are not comparable units, so this is
// a set union, not a score fusion.
func merge(semantic, fallback []content.Record, matchCount int) []content.Record {
	merged := make([]content.Record, 0, min(len(semantic)+len(fallback), matchCount))

	seen := make(map[identity]struct{}, len(semantic))
	for _, rec := range semantic {
		if len(merged) >= matchCount {
			return merged
		}
		key := identity{typ: rec.ContentType(), id: rec.ID()}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, rec)
	}

	for _, rec := range fallback {
		if len(merged) >= matchCount {
			break
		}
		key := identity{typ: rec.ContentType(), id: rec.ID()}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, rec)
	}

	return merged
}
