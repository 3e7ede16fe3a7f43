package catalog

import (
	"time"

	"github.com/trezcool/safari/core"
)

// Event kinds
const (
	EventFair        = "fair"
	EventWebinar     = "webinar"
	EventWorkshop    = "workshop"
	EventInfoSession = "info-session"
)

var EventKinds = []string{EventFair, EventWebinar, EventWorkshop, EventInfoSession}

type Event struct {
	Base
	Title           string    `json:"title" validate:"notblank,max=200"`
	Slug            string    `json:"slug" validate:"omitempty,slug,max=200"`
	Kind            string    `json:"kind" validate:"required,oneof=fair webinar workshop info-session"`
	Description     string    `json:"description"`
	Location        string    `json:"location" validate:"required_without=Online"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	EndsAt          time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Online          bool      `json:"online"`
	Capacity        int       `json:"capacity" validate:"min=0"`
	RegistrationURL string    `json:"registration_url" validate:"omitempty,url"`
}

func (e *Event) SlugSource() string { return e.Title }
func (e *Event) GetSlug() string    { return e.Slug }
func (e *Event) SetSlug(s string)   { e.Slug = s }

func (e *Event) Clean() {
	cleanStrings(&e.Title, &e.Description, &e.Location, &e.RegistrationURL)
	e.Slug = core.CleanString(e.Slug, true /* lower */)
	e.Kind = core.CleanString(e.Kind, true /* lower */)
	e.StartsAt = e.StartsAt.UTC()
	e.EndsAt = e.EndsAt.UTC()
}

// IsUpcoming reports whether the event has not ended at now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.EndsAt.After(now)
}
