package chi

import (
	"time"

	"github.com/paperscout-ai/paperscout/internal/domain/content"
	healthuc "github.com/paperscout-ai/paperscout/internal/usecase/health"
)

type searchRequest struct {
	Query               string  `json:"query"`
	SimilarityThreshold float64 `json:"similarityThreshold"`
	MatchCount          int     `json:"matchCount"`
	TimeRange           string  `json:"timeRange"`
}

type searchResponse struct {
	Items []recordResponse `json:"items"`
	Total int              `json:"total"`
}

type recordResponse struct {
	ID          string    `json:"id"`
	ContentType string    `json:"contentType"`
	ExternalID  string    `json:"externalId,omitempty"`
	Title       string    `json:"title"`
	Creator     string    `json:"creator,omitempty"`
	Platform    string    `json:"platform,omitempty"`
	Score       float64   `json:"score"`
	PublishedAt time.Time `json:"publishedAt"`
}

type trendingResponse struct {
	ContentType   string           `json:"contentType"`
	ReferenceDate time.Time        `json:"referenceDate"`
	Items         []recordResponse `json:"items"`
}

type trendingAllResponse struct {
	ReferenceDate time.Time                   `json:"referenceDate"`
	Items         map[string][]recordResponse `json:"items"`
}

type rankResponse struct {
	ContentType string `json:"contentType"`
	ID          string `json:"id"`
	Ordinal     int    `json:"ordinal"`
	GroupSize   int    `json:"groupSize"`
}

type upsertRecordRequest struct {
	ExternalID  string    `json:"externalId"`
	Title       string    `json:"title"`
	Creator     string    `json:"creator"`
	Platform    string    `json:"platform"`
	Score       float64   `json:"score"`
	PublishedAt time.Time `json:"publishedAt"`
}

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func recordToResponse(rec *content.Record) recordResponse {
	return recordResponse{
		ID:          rec.ID(),
		ContentType: string(rec.ContentType()),
		ExternalID:  rec.ExternalID(),
		Title:       rec.Title(),
		Creator:     rec.Creator(),
		Platform:    rec.Platform(),
		Score:       rec.Score(),
		PublishedAt: rec.PublishedAt().UTC(),
	}
}

func recordsToResponse(records []content.Record) []recordResponse {
	items := make([]recordResponse, len(records))
	for i := range records {
		items[i] = recordToResponse(&records[i])
	}
	return items
}
