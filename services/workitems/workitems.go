package workitems

import (
	"context"
	"errors"
)

// ErrNoMoreItems is returned by Next when a finite source is drained
var ErrNoMoreItems = errors.New("no more work items")

// Item is one search request
type Item struct {
	ID        string `json:"id" yaml:"id"`
	LimitDate string `json:"limit_date" yaml:"limit_date"`
	Phrase    string `json:"phrase" yaml:"phrase"`
}

// Payload is the body of a work item as producers send it
type Payload struct {
	LimitDate string `json:"limit_date" yaml:"limit_date"`
	Phrase    string `json:"phrase" yaml:"phrase"`
}

// Source hands out work items and records their outcome
type Source interface {
	// Next blocks until an item is available. Finite sources return ErrNoMoreItems when drained.
	Next(ctx context.Context) (Item, error)

	// Complete marks the item as done
	Complete(ctx context.Context, item Item) error

	// Fail marks the item as failed with err
	Fail(ctx context.Context, item Item, err error) error

	// Close releases the source
	Close() error
}
