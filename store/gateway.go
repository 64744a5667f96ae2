// Package store is the storage gateway: filtered reads and writes against the
// forms, questions and responses collections. Nothing here is transactional
// across calls; callers sequencing several writes must tolerate partial
// completion.
package store

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

const (
	Forms     = "forms"
	Questions = "questions"
	Responses = "responses"
)

var (
	ErrNoFilter          = errors.New("no filter specified")
	ErrMissingID         = errors.New("record has no id")
	ErrDuplicate         = errors.New("duplicate id")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Record is one row of a collection, keyed by column name.
type Record map[string]any

func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

type Gateway interface {
	Select(ctx context.Context, collection string, filter Filter, order ...Order) ([]Record, error)
	Insert(ctx context.Context, collection string, rec Record) error
	// Upsert inserts rec or overwrites the columns it carries on the row with
	// the same id, and returns the stored row.
	Upsert(ctx context.Context, collection string, rec Record) (Record, error)
	// Update applies patch to every row matching filter and reports how many matched.
	Update(ctx context.Context, collection string, filter Filter, patch Record) (int64, error)
	Delete(ctx context.Context, collection string, filter Filter) error
}

// Error is the error every Gateway implementation returns.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Collection: collection, Err: err}
}

func checkCollection(collection string) error {
	switch collection {
	case Forms, Questions, Responses:
		return nil
	}
	return errors.Wrapf(ErrUnknownCollection, "%q", collection)
}
