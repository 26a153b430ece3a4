package repositories

import (
	"context"

	"github.com/cbodonnell/scoreboard/pkg/match"
)

// Repository stores match records and the match index. The index is kept
// apart from the records so listing matches never decodes a board.
type Repository interface {
	Close(ctx context.Context) error
	// SaveMatch creates or replaces the record with doc.ID.
	SaveMatch(ctx context.Context, doc *match.Document) error
	// LoadMatch returns ErrNotFound for a missing record and a
	// match.ErrMalformedDocument for a record that is not a match.
	LoadMatch(ctx context.Context, id string) (*match.Document, error)
	// DeleteMatch removes the record and its index entry. Deleting a
	// missing match is not an error.
	DeleteMatch(ctx context.Context, id string) error
	// PutSummary creates or replaces an index entry. New entries are
	// appended, existing ones keep their position.
	PutSummary(ctx context.Context, summary match.Summary) error
	ListSummaries(ctx context.Context) ([]match.Summary, error)
}
