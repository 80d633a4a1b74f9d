package catalog

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/paperscout-ai/paperscout/internal/db"
	dbredis "github.com/paperscout-ai/paperscout/internal/db/redis"
	"github.com/paperscout-ai/paperscout/internal/domain"
	"github.com/paperscout-ai/paperscout/internal/domain/content"
)

type mockStore struct {
	hsetCalls      int
	hsetKey        string
	hsetFields     map[string]string
	createCalls    int
	existsByName   map[string]bool
	knnCalls       int
	knnQuery       *db.KNNQuery
	knnResult      *db.SearchResult
	knnErr         error
	patternCalls   int
	patternQuery   *db.PatternQuery
	patternResult  *db.SearchResult
	topScoredCalls int
	scoreQuery     *db.ScoreQuery
	scoreResult    *db.SearchResult
	scoreErr       error
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.hsetCalls++
	m.hsetKey = key
	m.hsetFields = fields
	return nil
}

func (m *mockStore) CreateIndex(_ context.Context, _ *db.IndexDefinition) error {
	m.createCalls++
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, name string) (bool, error) {
	return m.existsByName[name], nil
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.knnCalls++
	m.knnQuery = q
	return m.knnResult, m.knnErr
}

func (m *mockStore) SearchPattern(_ context.Context, q *db.PatternQuery) (*db.SearchResult, error) {
	m.patternCalls++
	m.patternQuery = q
	return m.patternResult, nil
}

func (m *mockStore) SearchTopScored(_ context.Context, q *db.ScoreQuery) (*db.SearchResult, error) {
	m.topScoredCalls++
	m.scoreQuery = q
	return m.scoreResult, m.scoreErr
}

func paperEntry(id string, similarity, score float64, published time.Time) db.SearchEntry {
	return db.SearchEntry{
		Key:   "scout:paper:" + id,
		Score: similarity,
		Fields: map[string]string{
			fieldExternalID: "ext-" + id,
			fieldTitle:      "Paper " + id,
			fieldPublished:  strconv.FormatInt(published.UnixMilli(), 10),
			"__total_score": strconv.FormatFloat(score, 'f', -1, 64),
		},
	}
}

func TestUpsertWritesHashWithVector(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "scout:", 4)

	published := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rec, err := content.New("p1", content.Paper, "2403.1234", "Attention", "", "arxiv", 42.5, published)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.Upsert(context.Background(), &rec, []float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.hsetKey != "scout:paper:p1" {
		t.Errorf("expected key scout:paper:p1, got %s", store.hsetKey)
	}
	if store.hsetFields[fieldTitle] != "Attention" {
		t.Errorf("expected title field, got %q", store.hsetFields[fieldTitle])
	}
	if store.hsetFields[fieldPublished] != strconv.FormatInt(published.UnixMilli(), 10) {
		t.Errorf("unexpected published field %q", store.hsetFields[fieldPublished])
	}
	if _, ok := store.hsetFields[fieldVector]; !ok {
		t.Error("expected vector field to be set")
	}
}

func TestUpsertSkipsVectorForModels(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "scout:", 4)

	rec, _ := content.New("m1", content.Model, "m1", "GPT-ish", "acme", "replicate", 10, time.Now())
	if err := repo.Upsert(context.Background(), &rec, []float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := store.hsetFields[fieldVector]; ok {
		t.Error("model hash must not carry a vector field")
	}
}

func TestEnsureIndexesSkipsExisting(t *testing.T) {
	store := &mockStore{existsByName: map[string]bool{
		"scout:paper:idx": true,
	}}
	repo := New(store, "scout:", 4)

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// paper index exists, the three others get created
	if store.createCalls != 3 {
		t.Errorf("expected 3 CreateIndex calls, got %d", store.createCalls)
	}
}

func TestSimilaritySearchFiltersByThreshold(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	store := &mockStore{knnResult: &db.SearchResult{
		Total: 3,
		Entries: []db.SearchEntry{
			paperEntry("a", 0.95, 10, now),
			paperEntry("b", 0.72, 20, now),
			paperEntry("c", 0.41, 30, now),
		},
	}}
	repo := New(store, "scout:", 4)

	records, err := repo.SimilaritySearch(context.Background(), []float32{1, 0, 0, 0}, 0.7, 10, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records above threshold, got %d", len(records))
	}
	if records[0].ID() != "a" || records[1].ID() != "b" {
		t.Errorf("unexpected ids: %s, %s", records[0].ID(), records[1].ID())
	}
	if store.knnQuery.After != now.AddDate(0, 0, -7).UnixMilli() {
		t.Errorf("window lower bound not passed to store: %d", store.knnQuery.After)
	}
}

func TestSimilaritySearchNilVectorUsesTopScored(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	store := &mockStore{scoreResult: &db.SearchResult{
		Total:   1,
		Entries: []db.SearchEntry{paperEntry("a", 0, 99, now)},
	}}
	repo := New(store, "scout:", 4)

	records, err := repo.SimilaritySearch(context.Background(), nil, 0.7, 5, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.knnCalls != 0 {
		t.Errorf("expected no KNN call for nil vector, got %d", store.knnCalls)
	}
	if store.topScoredCalls != 1 {
		t.Errorf("expected 1 top-scored call, got %d", store.topScoredCalls)
	}
	if len(records) != 1 || records[0].Score() != 99 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

// returnedFields parses the RETURN clause of an FT.SEARCH command.
func returnedFields(cmd []string) []string {
	for i := 0; i < len(cmd)-1; i++ {
		if cmd[i] != "RETURN" {
			continue
		}
		n, err := strconv.Atoi(cmd[i+1])
		if err != nil || i+2+n > len(cmd) {
			return nil
		}
		return cmd[i+2 : i+2+n]
	}
	return nil
}

// TestSimilaritySearchScoreParsedFromWire goes through the real Redis
// store rather than the hand mock. The mocked client answers like the
// server does: only attributes named in the command's RETURN clause come
// back, so a near-exact match keeps its similarity and clears the
// default threshold.
func TestSimilaritySearchScoreParsedFromWire(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	published := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "FT.SEARCH" {
				return false
			}
			for _, f := range returnedFields(cmd) {
				if f == "__vector_score" {
					return true
				}
			}
			return false
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("scout:paper:p1"),
			mock.RedisArray(
				mock.RedisString(fieldExternalID), mock.RedisString("2403.1234"),
				mock.RedisString(fieldTitle), mock.RedisString("Attention"),
				mock.RedisString(fieldCreator), mock.RedisString(""),
				mock.RedisString(fieldPlatform), mock.RedisString("arxiv"),
				mock.RedisString(fieldPublished), mock.RedisString(strconv.FormatInt(published.UnixMilli(), 10)),
				mock.RedisString("__total_score"), mock.RedisString("42"),
				mock.RedisString("__vector_score"), mock.RedisString("0.02"),
			),
		)))

	repo := New(dbredis.NewStoreForTest(c), "scout:", 2)

	records, err := repo.SimilaritySearch(
		context.Background(), []float32{0.1, 0.2}, 0.7, 10, time.Unix(0, 0),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("near-exact match must clear the threshold, got %d records", len(records))
	}
	if records[0].ID() != "p1" || records[0].Title() != "Attention" {
		t.Errorf("unexpected record: id=%s title=%s", records[0].ID(), records[0].Title())
	}
}

func TestSimilaritySearchWrapsRetrievalError(t *testing.T) {
	store := &mockStore{knnErr: errors.New("boom")}
	repo := New(store, "scout:", 4)

	_, err := repo.SimilaritySearch(context.Background(), []float32{1}, 0.7, 5, time.Unix(0, 0))
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Errorf("expected ErrRetrieval, got %v", err)
	}
}

func TestPatternSearchQueryShape(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	store := &mockStore{patternResult: &db.SearchResult{
		Total:   1,
		Entries: []db.SearchEntry{paperEntry("x", 0, 7, now)},
	}}
	repo := New(store, "scout:", 4)

	records, err := repo.PatternSearch(context.Background(), "xyz123", now.AddDate(0, 0, -7), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := store.patternQuery
	if q.Pattern != "xyz123" || q.Limit != 3 {
		t.Errorf("unexpected query: %+v", q)
	}
	if len(q.Fields) != 2 {
		t.Errorf("expected external id and title fields, got %v", q.Fields)
	}
	if len(records) != 1 || records[0].ExternalID() != "ext-x" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestTopScoredInWindowPlatformFilter(t *testing.T) {
	store := &mockStore{scoreResult: &db.SearchResult{}}
	repo := New(store, "scout:", 4)

	from := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := repo.TopScoredInWindow(context.Background(), content.Paper, from, to, 10, "arxiv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := store.scoreQuery
	if q.From != from.UnixMilli() || q.To != to.UnixMilli() {
		t.Errorf("window not propagated: %d..%d", q.From, q.To)
	}
	if q.TagField != fieldPlatform || q.TagValue != "arxiv" {
		t.Errorf("platform filter not set: %q=%q", q.TagField, q.TagValue)
	}
}

func TestListScoredCreatorFilter(t *testing.T) {
	store := &mockStore{scoreResult: &db.SearchResult{}}
	repo := New(store, "scout:", 4)

	if _, err := repo.ListScored(context.Background(), content.Model, "acme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := store.scoreQuery
	if q.TagField != fieldCreator || q.TagValue != "acme" {
		t.Errorf("creator filter not set: %q=%q", q.TagField, q.TagValue)
	}
	if q.SortField != "__runs_score" {
		t.Errorf("expected model score field, got %s", q.SortField)
	}
}
