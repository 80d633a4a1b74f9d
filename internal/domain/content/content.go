package content

import (
	"fmt"
	"time"

	"github.com/paperscout-ai/paperscout/internal/domain"
)

// Type is a content record category.
type Type string

const (
	// Paper is an indexed research paper.
	Paper Type = "paper"
	// Model is an indexed AI model.
	Model Type = "model"
	// Creator is a model creator aggregated across platforms.
	Creator Type = "creator"
	// Author is a paper author.
	Author Type = "author"
)

// All lists every content type in a stable order.
func All() []Type {
	return []Type{Paper, Model, Creator, Author}
}

// ParseType validates a content type token.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Paper, Model, Creator, Author:
		return Type(s), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidContentType, s)
	}
}

// Record is a read-only projection of a content store row.
// Identity is (Type, ID): ids are unique only within one content type.
type Record struct {
	id          string
	contentType Type
	externalID  string
	title       string
	creator     string
	platform    string
	score       float64
	publishedAt time.Time
}

// New creates a record.
func New(
	id string, contentType Type, externalID, title, creator, platform string,
	score float64, publishedAt time.Time,
) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("%w: record id is required", domain.ErrInvalidRequest)
	}
	if _, err := ParseType(string(contentType)); err != nil {
		return Record{}, err
	}
	return Record{
		id:          id,
		contentType: contentType,
		externalID:  externalID,
		title:       title,
		creator:     creator,
		platform:    platform,
		score:       score,
		publishedAt: publishedAt,
	}, nil
}

// Reconstruct rebuilds a record from storage without validation.
func Reconstruct(
	id string, contentType Type, externalID, title, creator, platform string,
	score float64, publishedAt time.Time,
) Record {
	return Record{
		id:          id,
		contentType: contentType,
		externalID:  externalID,
		title:       title,
		creator:     creator,
		platform:    platform,
		score:       score,
		publishedAt: publishedAt,
	}
}

// ID returns the store identifier.
func (r *Record) ID() string { return r.id }

// ContentType returns the record category.
func (r *Record) ContentType() Type { return r.contentType }

// ExternalID returns the short external identifier (e.g. an arXiv id).
func (r *Record) ExternalID() string { return r.externalID }

// Title returns the display title or name.
func (r *Record) Title() string { return r.title }

// Creator returns the owning creator, empty for creator/author records.
func (r *Record) Creator() string { return r.creator }

// Platform returns the source platform.
func (r *Record) Platform() string { return r.platform }

// Score returns the precomputed popularity score.
func (r *Record) Score() float64 { return r.score }

// PublishedAt returns the record timestamp used for time windows.
func (r *Record) PublishedAt() time.Time { return r.publishedAt }
