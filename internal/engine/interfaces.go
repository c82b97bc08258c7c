package engine

import (
	"context"

	"github.com/Veraticus/spendmatch/internal/model"
	"github.com/Veraticus/spendmatch/internal/reconcile"
)

// NoteLookup returns the notes recorded within an inclusive time range.
type NoteLookup = reconcile.NoteLookup

// NoteGetter is implemented by note sources that can fetch a note by ID.
// The orchestrator uses it to add a bound note that lies outside the
// context window.
type NoteGetter interface {
	GetNote(ctx context.Context, id string) (model.Note, error)
}

// Serializer renders categorized transactions into a report.
type Serializer interface {
	Serialize(transactions []model.Transaction) ([]byte, error)
}
