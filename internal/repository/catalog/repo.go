package catalog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paperscout-ai/paperscout/internal/db"
	"github.com/paperscout-ai/paperscout/internal/domain"
	"github.com/paperscout-ai/paperscout/internal/domain/content"
)

// maxGroupScan bounds how many records a rank group listing pulls back.
const maxGroupScan = 10000

// store is the consumer interface for catalog operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchPattern(ctx context.Context, q *db.PatternQuery) (*db.SearchResult, error)
	SearchTopScored(ctx context.Context, q *db.ScoreQuery) (*db.SearchResult, error)
}

// Repo stores content records as hashes and serves the retrieval
// operations behind search, trending and rank.
type Repo struct {
	store     store
	keyPrefix string
	vectorDim int
}

// New creates a catalog repository. keyPrefix namespaces every key and
// index (e.g. "scout:"); vectorDim is the embedding dimension of the
// paper vector field.
func New(s store, keyPrefix string, vectorDim int) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, vectorDim: vectorDim}
}

func recordKeyPrefix(keyPrefix string, typ content.Type) string {
	return fmt.Sprintf("%s%s:", keyPrefix, typ)
}

func (r *Repo) recordKey(typ content.Type, id string) string {
	return recordKeyPrefix(r.keyPrefix, typ) + id
}

func (r *Repo) indexName(typ content.Type) string {
	return fmt.Sprintf("%s%s:idx", r.keyPrefix, typ)
}

// EnsureIndexes creates the per-type FT indexes that do not exist yet.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, typ := range content.All() {
		spec := typeSpecs[typ]
		name := r.indexName(typ)

		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", name, err)
		}
		if exists {
			continue
		}

		if err := r.store.CreateIndex(ctx, r.indexDefinition(typ, spec)); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				continue
			}
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return nil
}

func (r *Repo) indexDefinition(typ content.Type, spec typeSpec) *db.IndexDefinition {
	fields := []db.IndexField{
		{Name: fieldExternalID, Type: db.IndexFieldText},
		{Name: fieldTitle, Type: db.IndexFieldText},
		{Name: fieldCreator, Type: db.IndexFieldTag},
		{Name: fieldPlatform, Type: db.IndexFieldTag},
		{Name: fieldPublished, Type: db.IndexFieldNumeric},
		{Name: spec.scoreField, Type: db.IndexFieldNumeric},
	}
	if spec.hasVector {
		fields = append(fields, db.IndexField{
			Name:           fieldVector,
			Type:           db.IndexFieldVector,
			VectorAlgo:     db.VectorHNSW,
			VectorDistance: db.DistanceCosine,
			VectorDim:      r.vectorDim,
		})
	}

	return &db.IndexDefinition{
		Name:     r.indexName(typ),
		Prefixes: []string{recordKeyPrefix(r.keyPrefix, typ)},
		Fields:   fields,
	}
}

// Upsert writes a record hash; vector is ignored for types without a
// vector field.
func (r *Repo) Upsert(ctx context.Context, rec *content.Record, vector []float32) error {
	spec := typeSpecs[rec.ContentType()]
	key := r.recordKey(rec.ContentType(), rec.ID())

	if err := r.store.HSet(ctx, key, recordToFields(rec, spec, vector)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// SimilaritySearch returns papers ordered by similarity to vector,
// restricted to records published at or after since. A nil vector skips
// the similarity predicate and returns the top-scored papers in the
// window instead.
func (r *Repo) SimilaritySearch(
	ctx context.Context, vector []float32, threshold float64, limit int, since time.Time,
) ([]content.Record, error) {
	spec := typeSpecs[content.Paper]

	if len(vector) == 0 {
		sr, err := r.store.SearchTopScored(ctx, &db.ScoreQuery{
			IndexName:    r.indexName(content.Paper),
			TimeField:    fieldPublished,
			From:         since.UnixMilli(),
			SortField:    spec.scoreField,
			Limit:        limit,
			ReturnFields: returnFields(spec),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: top scored papers: %v", domain.ErrRetrieval, err)
		}
		return entriesToRecords(sr, content.Paper, spec, r.keyPrefix), nil
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(content.Paper),
		Vector:       vector,
		K:            limit,
		TimeField:    fieldPublished,
		After:        since.UnixMilli(),
		ReturnFields: returnFields(spec),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn papers: %v", domain.ErrRetrieval, err)
	}

	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}
	records := make([]content.Record, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if entry.Score < threshold {
			continue
		}
		records = append(records, entryToRecord(entry, content.Paper, spec, r.keyPrefix))
	}
	return records, nil
}

// PatternSearch returns papers whose external id or title contains the
// pattern (case-insensitive), published at or after since, ordered by
// stored score descending.
func (r *Repo) PatternSearch(
	ctx context.Context, pattern string, since time.Time, limit int,
) ([]content.Record, error) {
	spec := typeSpecs[content.Paper]

	sr, err := r.store.SearchPattern(ctx, &db.PatternQuery{
		IndexName:    r.indexName(content.Paper),
		Pattern:      pattern,
		Fields:       []string{fieldExternalID, fieldTitle},
		TimeField:    fieldPublished,
		After:        since.UnixMilli(),
		SortField:    spec.scoreField,
		Limit:        limit,
		ReturnFields: returnFields(spec),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pattern papers: %v", domain.ErrRetrieval, err)
	}

	return entriesToRecords(sr, content.Paper, spec, r.keyPrefix), nil
}

// TopScoredInWindow returns the highest-scored records of one type with
// a timestamp inside [from, to], both ends inclusive. platform narrows
// to one source platform when non-empty.
func (r *Repo) TopScoredInWindow(
	ctx context.Context, typ content.Type, from, to time.Time, limit int, platform string,
) ([]content.Record, error) {
	spec := typeSpecs[typ]

	q := &db.ScoreQuery{
		IndexName:    r.indexName(typ),
		TimeField:    fieldPublished,
		From:         from.UnixMilli(),
		To:           to.UnixMilli(),
		SortField:    spec.scoreField,
		Limit:        limit,
		ReturnFields: returnFields(spec),
	}
	if platform != "" {
		q.TagField = fieldPlatform
		q.TagValue = platform
	}

	sr, err := r.store.SearchTopScored(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: trending %s: %v", domain.ErrRetrieval, typ, err)
	}

	return entriesToRecords(sr, typ, spec, r.keyPrefix), nil
}

// ListScored returns all records of one type ordered by score
// descending, optionally restricted to one creator's records.
func (r *Repo) ListScored(
	ctx context.Context, typ content.Type, creator string,
) ([]content.Record, error) {
	spec := typeSpecs[typ]

	q := &db.ScoreQuery{
		IndexName:    r.indexName(typ),
		SortField:    spec.scoreField,
		Limit:        maxGroupScan,
		ReturnFields: returnFields(spec),
	}
	if creator != "" {
		q.TagField = fieldCreator
		q.TagValue = creator
	}

	sr, err := r.store.SearchTopScored(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", domain.ErrRetrieval, typ, err)
	}

	return entriesToRecords(sr, typ, spec, r.keyPrefix), nil
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
