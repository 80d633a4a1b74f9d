package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/paperscout-ai/paperscout/internal/db"
	"github.com/paperscout-ai/paperscout/internal/domain/content"
)

// Hash field names shared by every content type.
const (
	fieldExternalID = "__external_id"
	fieldTitle      = "__title"
	fieldCreator    = "__creator"
	fieldPlatform   = "__platform"
	fieldPublished  = "__published" // epoch millis
	fieldVector     = "__vector"
)

// typeSpec describes the per-type collection parameters: each content type
// has its own score field, the windowing and ordering algorithm is shared.
type typeSpec struct {
	scoreField string
	hasVector  bool
}

var typeSpecs = map[content.Type]typeSpec{
	content.Paper:   {scoreField: "__total_score", hasVector: true},
	content.Model:   {scoreField: "__runs_score"},
	content.Creator: {scoreField: "__creator_score"},
	content.Author:  {scoreField: "__author_score"},
}

func returnFields(spec typeSpec) []string {
	return []string{
		fieldExternalID, fieldTitle, fieldCreator, fieldPlatform,
		fieldPublished, spec.scoreField,
	}
}

func recordToFields(rec *content.Record, spec typeSpec, vector []float32) map[string]string {
	fields := map[string]string{
		fieldExternalID: rec.ExternalID(),
		fieldTitle:      rec.Title(),
		fieldCreator:    rec.Creator(),
		fieldPlatform:   rec.Platform(),
		fieldPublished:  strconv.FormatInt(rec.PublishedAt().UnixMilli(), 10),
		spec.scoreField: strconv.FormatFloat(rec.Score(), 'f', -1, 64),
	}
	if spec.hasVector && len(vector) > 0 {
		fields[fieldVector] = vectorToBytes(vector)
	}
	return fields
}

func entryToRecord(entry db.SearchEntry, typ content.Type, spec typeSpec, keyPrefix string) content.Record {
	id := strings.TrimPrefix(entry.Key, recordKeyPrefix(keyPrefix, typ))

	var score float64
	if v, ok := entry.Fields[spec.scoreField]; ok {
		score, _ = strconv.ParseFloat(v, 64)
	}

	var publishedAt time.Time
	if v, ok := entry.Fields[fieldPublished]; ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			publishedAt = time.UnixMilli(ms).UTC()
		}
	}

	return content.Reconstruct(
		id, typ,
		entry.Fields[fieldExternalID],
		entry.Fields[fieldTitle],
		entry.Fields[fieldCreator],
		entry.Fields[fieldPlatform],
		score, publishedAt,
	)
}

func entriesToRecords(sr *db.SearchResult, typ content.Type, spec typeSpec, keyPrefix string) []content.Record {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	records := make([]content.Record, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		records = append(records, entryToRecord(entry, typ, spec, keyPrefix))
	}
	return records
}
