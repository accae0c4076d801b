package store

import (
	"context"
	"errors"
	"sort"

	"github.com/park285/rooky/internal/note"
)

var ErrNotFound = errors.New("game entry not found")

// Store is the local game library. Get returns (nil, nil) for unknown ids.
type Store interface {
	Put(ctx context.Context, e note.Entry) error
	Get(ctx context.Context, id string) (*note.Entry, error)
	List(ctx context.Context, opts ListOptions) ([]note.Entry, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// ListOptions filters List. An empty Origins matches every origin and a
// non-positive Limit returns everything.
type ListOptions struct {
	Origins []note.Origin
	Limit   int
}

func (o ListOptions) matches(origin note.Origin) bool {
	if len(o.Origins) == 0 {
		return true
	}
	for _, want := range o.Origins {
		if want == origin {
			return true
		}
	}
	return false
}

// sortEntries orders newest game first, then by id for a stable listing.
func sortEntries(items []note.Entry) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}
		return items[i].ID < items[j].ID
	})
}

func applyLimit(items []note.Entry, limit int) []note.Entry {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func validate(e note.Entry) error {
	if e.ID == "" {
		return errors.New("game entry has no id")
	}
	return nil
}
