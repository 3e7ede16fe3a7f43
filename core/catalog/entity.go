// Package catalog holds the study-abroad records (universities, programs, courses, mock tests, events,
// pages, hero slides, appointments, site settings) and the services that validate and persist them.
package catalog

import (
	"context"
	"time"

	"github.com/trezcool/safari/core"
)

// Base is embedded by every record.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (b *Base) GetBase() *Base  { return b }
func (b *Base) GetID() string   { return b.ID }
func (b *Base) SetID(id string) { b.ID = id }

// Stamp sets CreatedAt on first save and UpdatedAt on every save.
func (b *Base) Stamp(now time.Time) {
	now = now.UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func (b *Base) Clean()                  {}
func (b *Base) AssignIDs(func() string) {}

// Entity is implemented by pointers to records.
type Entity interface {
	GetBase() *Base
	GetID() string
	SetID(string)
	Stamp(now time.Time)
	// Clean normalizes user input before validation.
	Clean()
	// AssignIDs gives persistent ids to nested groups and items still carrying a temporary one.
	AssignIDs(newID func() string)
}

// EntityPtr lets generic code hold records by value while calling their pointer methods.
type EntityPtr[T any] interface {
	*T
	Entity
}

// Sluggable records are addressable by slug as well as by id.
type Sluggable interface {
	SlugSource() string
	GetSlug() string
	SetSlug(string)
}

// Publishable records are hidden from anonymous visitors until public.
type Publishable interface {
	IsPublic() bool
}

// Repository persists one collection of records.
type Repository[T any] interface {
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	// Get finds a record by id, or by slug for sluggable records. Returns core.ErrNotFound.
	Get(ctx context.Context, idOrSlug string) (T, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q core.ListQuery) (core.Page[T], error)
	SlugExists(ctx context.Context, slug, excludedID string) (bool, error)
}

// removeByID drops the first element whose id matches, keeping the order of the others.
func removeByID[E any](items []E, id string, getID func(*E) string) ([]E, bool) {
	for i := range items {
		if getID(&items[i]) == id {
			out := make([]E, 0, len(items)-1)
			out = append(out, items[:i]...)
			return append(out, items[i+1:]...), true
		}
	}
	return items, false
}

func indexByID[E any](items []E, id string, getID func(*E) string) int {
	for i := range items {
		if getID(&items[i]) == id {
			return i
		}
	}
	return -1
}

func cleanStrings(ss ...*string) {
	for _, s := range ss {
		*s = core.CleanString(*s)
	}
}
