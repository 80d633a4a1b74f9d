package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paperscout-ai/paperscout/internal/domain"
	"github.com/paperscout-ai/paperscout/internal/domain/content"
	"github.com/paperscout-ai/paperscout/internal/domain/search/query"
	domtrend "github.com/paperscout-ai/paperscout/internal/domain/trending"
	healthuc "github.com/paperscout-ai/paperscout/internal/usecase/health"
	rankuc "github.com/paperscout-ai/paperscout/internal/usecase/rank"
)

var testClock = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

type stubSearch struct {
	lastQuery *query.Query
	lastNow   time.Time
	records   []content.Record
	err       error
}

func (s *stubSearch) Search(_ context.Context, q *query.Query, now time.Time) ([]content.Record, error) {
	s.lastQuery = q
	s.lastNow = now
	return s.records, s.err
}

type stubTrending struct {
	lastType     content.Type
	lastWindow   domtrend.Window
	lastPlatform string
	records      []content.Record
	all          map[content.Type][]content.Record
	err          error
}

func (s *stubTrending) Trending(_ context.Context, typ content.Type, w domtrend.Window, platform string) ([]content.Record, error) {
	s.lastType = typ
	s.lastWindow = w
	s.lastPlatform = platform
	return s.records, s.err
}

func (s *stubTrending) TrendingAll(_ context.Context, w domtrend.Window, platform string) (map[content.Type][]content.Record, error) {
	s.lastWindow = w
	s.lastPlatform = platform
	return s.all, s.err
}

type stubRank struct {
	pos rankuc.Position
	err error
}

func (s *stubRank) RankOf(_ context.Context, _ content.Type, _, _ string) (rankuc.Position, error) {
	return s.pos, s.err
}

type stubIngest struct {
	calls int
	last  *content.Record
	err   error
}

func (s *stubIngest) Ingest(_ context.Context, rec *content.Record) error {
	s.calls++
	s.last = rec
	return s.err
}

type stubHealth struct {
	report healthuc.Report
}

func (s *stubHealth) Check(_ context.Context) healthuc.Report { return s.report }

type serverStubs struct {
	search   *stubSearch
	trending *stubTrending
	rank     *stubRank
	ingest   *stubIngest
	health   *stubHealth
}

func newTestServer(t *testing.T) (*serverStubs, http.Handler) {
	t.Helper()
	stubs := &serverStubs{
		search:   &stubSearch{},
		trending: &stubTrending{},
		rank:     &stubRank{},
		ingest:   &stubIngest{},
		health:   &stubHealth{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	srv := NewServer(
		stubs.search, stubs.trending, stubs.rank, stubs.ingest, stubs.health,
		SearchOptions{MaxMatchCount: 25},
		TrendingOptions{WindowDays: 7, DefaultLimit: 10, MaxLimit: 100},
		zap.NewNop(),
	)
	srv.now = func() time.Time { return testClock }

	r := chi.NewRouter()
	srv.RegisterRoutes(r)
	return stubs, r
}

func mustRecord(t *testing.T, id string, typ content.Type, title string, score float64) content.Record {
	t.Helper()
	rec, err := content.New(id, typ, "ext-"+id, title, "creator", "arxiv", score, testClock.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	return rec
}

func TestHandleSearch_OK(t *testing.T) {
	stubs, handler := newTestServer(t)
	stubs.search.records = []content.Record{
		mustRecord(t, "p1", content.Paper, "Attention Is All You Need", 0.91),
		mustRecord(t, "p2", content.Paper, "Residual Learning", 0.84),
	}

	body := `{"query": "transformers", "matchCount": 5, "timeRange": "thisWeek"}`
	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Errorf("total: got %d/%d items, want 2", resp.Total, len(resp.Items))
	}
	if resp.Items[0].ID != "p1" {
		t.Errorf("first item: got %s, want p1", resp.Items[0].ID)
	}

	if stubs.search.lastQuery.MatchCount() != 5 {
		t.Errorf("matchCount: got %d, want 5", stubs.search.lastQuery.MatchCount())
	}
	if !stubs.search.lastNow.Equal(testClock) {
		t.Errorf("now: got %v, want %v", stubs.search.lastNow, testClock)
	}
}

func TestHandleSearch_DefaultsApplied(t *testing.T) {
	stubs, handler := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(`{"query": "llm"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if got := stubs.search.lastQuery.SimilarityThreshold(); got != query.DefaultSimilarityThreshold {
		t.Errorf("threshold: got %v, want %v", got, query.DefaultSimilarityThreshold)
	}
	if got := stubs.search.lastQuery.MatchCount(); got != query.DefaultMatchCount {
		t.Errorf("matchCount: got %d, want %d", got, query.DefaultMatchCount)
	}
}

func TestHandleSearch_MatchCountCappedByConfig(t *testing.T) {
	stubs, handler := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/search",
		strings.NewReader(`{"query": "llm", "matchCount": 80}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	// newTestServer configures MaxMatchCount 25.
	if got := stubs.search.lastQuery.MatchCount(); got != 25 {
		t.Errorf("matchCount: got %d, want configured cap 25", got)
	}
}

func TestHandleSearch_MalformedBody_400(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(`{not json`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleSearch_QueryTooLong_400(t *testing.T) {
	_, handler := newTestServer(t)

	body := fmt.Sprintf(`{"query": %q}`, strings.Repeat("a", query.MaxQueryLength+1))
	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeValidationFailed)
	}
}

func TestHandleSearch_EmbeddingProviderError_502(t *testing.T) {
	stubs, handler := newTestServer(t)
	stubs.search.err = fmt.Errorf("%w: rate limited", domain.ErrEmbeddingProviderError)

	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(`{"query": "llm"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}
}

func TestHandleSearch_RetrievalError_500(t *testing.T) {
	stubs, handler := newTestServer(t)
	stubs.search.err = fmt.Errorf("%w: index gone", domain.ErrRetrieval)

	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(`{"query": "llm"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestHandleTrending_OK(t *testing.T) {
	stubs, handler := newTestServer(t)
	stubs.trending.records = []content.Record{
		mustRecord(t, "m1", content.Model, "flux-schnell", 120),
	}

	req := httptest.NewRequest("GET", "/api/v1/trending/model?limit=3&platform=replicate", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	if stubs.trending.lastType != content.Model {
		t.Errorf("type: got %s, want model", stubs.trending.lastType)
	}
	if stubs.trending.lastWindow.Limit() != 3 {
		t.Errorf("limit: got %d, want 3", stubs.trending.lastWindow.Limit())
	}
	if !stubs.trending.lastWindow.Reference().Equal(testClock) {
		t.Errorf("reference: got %v, want %v", stubs.trending.lastWindow.Reference(), testClock)
	}
	if stubs.trending.lastPlatform != "replicate" {
		t.Errorf("platform: got %q, want replicate", stubs.trending.lastPlatform)
	}
}

func TestHandleTrending_UnknownType_400(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/trending/podcast", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeInvalidContentType {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeInvalidContentType)
	}
}

func TestHandleTrending_ExplicitDate(t *testing.T) {
	stubs, handler := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/trending/paper?date=2026-08-01", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !stubs.trending.lastWindow.Reference().Equal(want) {
		t.Errorf("reference: got %v, want %v", stubs.trending.lastWindow.Reference(), want)
	}
}

func TestHandleTrending_InvalidDate_400(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/trending/paper?date=yesterday", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleTrending_LimitClampedToMax(t *testing.T) {
	stubs, handler := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/trending/paper?limit=5000", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if stubs.trending.lastWindow.Limit() != 100 {
		t.Errorf("limit: got %d, want 100", stubs.trending.lastWindow.Limit())
	}
}

func TestHandleTrendingAll_OK(t *testing.T) {
	stubs, handler := newTestServer(t)
	stubs.trending.all = map[content.Type][]content.Record{
		content.Paper: {mustRecord(t, "p1", content.Paper, "Attention", 12)},
		content.Model: {mustRecord(t, "m1", content.Model, "flux", 50)},
	}

	req := httptest.NewRequest("GET", "/api/v1/trending", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp trendingAllResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("sections: got %d, want 2", len(resp.Items))
	}
	if len(resp.Items["paper"]) != 1 || resp.Items["paper"][0].ID != "p1" {
		t.Errorf("paper section: got %+v", resp.Items["paper"])
	}
	if stubs.trending.lastWindow.Limit() != 10 {
		t.Errorf("default limit: got %d, want 10", stubs.trending.lastWindow.Limit())
	}
}

func TestHandleRank_OK(t *testing.T) {
	stubs, handler := newTestServer(t)
	stubs.rank.pos = rankuc.Position{Ordinal: 3, GroupSize: 17}

	req := httptest.NewRequest("GET", "/api/v1/rank/model/m42?creator=acme", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var resp rankResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Ordinal != 3 || resp.GroupSize != 17 {
		t.Errorf("position: got %d/%d, want 3/17", resp.Ordinal, resp.GroupSize)
	}
	if resp.ID != "m42" || resp.ContentType != "model" {
		t.Errorf("identity: got %s/%s", resp.ContentType, resp.ID)
	}
}

func TestHandleRank_NotFound_404(t *testing.T) {
	stubs, handler := newTestServer(t)
	stubs.rank.err = fmt.Errorf("%w: model %q not in group", domain.ErrNotFound, "ghost")

	req := httptest.NewRequest("GET", "/api/v1/rank/model/ghost", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeNotFound {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeNotFound)
	}
}

func TestHandleUpsertRecord_OK(t *testing.T) {
	stubs, handler := newTestServer(t)

	body := `{
		"externalId": "2403.00001",
		"title": "Scaling Laws Revisited",
		"creator": "deepmind",
		"platform": "arxiv",
		"score": 42.5,
		"publishedAt": "2026-08-18T00:00:00Z"
	}`
	req := httptest.NewRequest("PUT", "/api/v1/records/paper/p99", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	if stubs.ingest.calls != 1 {
		t.Fatalf("ingest calls: got %d, want 1", stubs.ingest.calls)
	}
	if stubs.ingest.last.ID() != "p99" || stubs.ingest.last.ContentType() != content.Paper {
		t.Errorf("record identity: got %s/%s", stubs.ingest.last.ContentType(), stubs.ingest.last.ID())
	}

	var resp recordResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "p99" || resp.Score != 42.5 {
		t.Errorf("echo: got %+v", resp)
	}
}

func TestHandleUpsertRecord_UnknownType_400(t *testing.T) {
	stubs, handler := newTestServer(t)

	req := httptest.NewRequest("PUT", "/api/v1/records/podcast/x1", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if stubs.ingest.calls != 0 {
		t.Errorf("ingest must not run for unknown types, got %d calls", stubs.ingest.calls)
	}
}

func TestHandleHealth_Healthy_200(t *testing.T) {
	stubs, handler := newTestServer(t)
	stubs.health.report = healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
	}

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestHandleHealth_Degraded_503(t *testing.T) {
	stubs, handler := newTestServer(t)
	stubs.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
