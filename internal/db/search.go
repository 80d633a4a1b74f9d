package db

// KNNQuery is the input for vector similarity search.
// TimeField/After form a server-side numeric prefilter so every candidate
// already satisfies the time window before the KNN stage runs.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	TimeField    string
	After        int64 // epoch millis, inclusive lower bound
	ReturnFields []string
}

// PatternQuery is the input for case-insensitive infix matching across
// several text fields (logical OR), time-windowed and score-ordered.
type PatternQuery struct {
	IndexName    string
	Pattern      string
	Fields       []string // field names matched with OR
	TimeField    string
	After        int64 // epoch millis, inclusive lower bound
	SortField    string
	Limit        int
	ReturnFields []string
}

// ScoreQuery is the input for top-K-by-score retrieval inside a closed
// time interval. To is 0 for an open upper bound. TagField/TagValue add
// an optional exact-match tag restriction (e.g. one platform or creator).
type ScoreQuery struct {
	IndexName    string
	TimeField    string
	From         int64 // epoch millis, inclusive
	To           int64 // epoch millis, inclusive; 0 means +inf
	TagField     string
	TagValue     string
	SortField    string
	Limit        int
	Offset       int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
