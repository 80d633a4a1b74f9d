package query

import (
	"fmt"
	"strings"

	"github.com/paperscout-ai/paperscout/internal/domain/timerange"
)

// Search parameter limits and defaults.
const (
	MaxQueryLength = 4096
	// DefaultSimilarityThreshold is the minimum similarity for a semantic match.
	DefaultSimilarityThreshold = 0.7
	DefaultMatchCount          = 20
	// DefaultMaxMatchCount caps matchCount when the caller supplies no cap.
	DefaultMaxMatchCount = 100
)

// Query is a validated, immutable search request.
type Query struct {
	text       string
	threshold  float64
	matchCount int
	timeRange  timerange.Range
}

// New validates and normalizes search parameters.
// Defaults: threshold=0.7, matchCount=20, timeRange=allTime.
// matchCount is clamped to maxMatchCount (DefaultMaxMatchCount when the
// caller passes 0 or less). Query text may be empty; it is trimmed
// before use.
func New(
	text string, threshold float64, matchCount, maxMatchCount int, timeRange timerange.Range,
) (Query, error) {
	if maxMatchCount <= 0 {
		maxMatchCount = DefaultMaxMatchCount
	}
	text = strings.TrimSpace(text)
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if threshold == 0 {
		threshold = DefaultSimilarityThreshold
	}
	if threshold < 0 || threshold > 1 {
		return Query{}, fmt.Errorf("similarity threshold must be between 0 and 1")
	}
	if matchCount < 0 {
		return Query{}, fmt.Errorf("match count must be positive")
	}
	if matchCount == 0 {
		matchCount = DefaultMatchCount
	}
	if matchCount > maxMatchCount {
		matchCount = maxMatchCount
	}
	if timeRange == "" {
		timeRange = timerange.AllTime
	}

	return Query{
		text:       text,
		threshold:  threshold,
		matchCount: matchCount,
		timeRange:  timeRange,
	}, nil
}

// Text returns the trimmed query text, possibly empty.
func (q *Query) Text() string { return q.text }

// IsEmpty reports whether the query has no text.
func (q *Query) IsEmpty() bool { return q.text == "" }

// SimilarityThreshold returns the minimum semantic similarity.
func (q *Query) SimilarityThreshold() float64 { return q.threshold }

// MatchCount returns the result set size bound.
func (q *Query) MatchCount() int { return q.matchCount }

// TimeRange returns the symbolic time window.
func (q *Query) TimeRange() timerange.Range { return q.timeRange }
