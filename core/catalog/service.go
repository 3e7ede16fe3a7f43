package catalog

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
)

// Service validates and persists the records of one collection.
type Service[T any, PT EntityPtr[T]] struct {
	repo       Repository[T]
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger

	newID   func() string
	NowFunc func() time.Time // mockable
}

type Option func(*options)

type options struct {
	newID func() string
}

// WithFixedID makes every created record take id, for singleton collections.
func WithFixedID(id string) Option {
	return func(o *options) { o.newID = func() string { return id } }
}

func NewService[T any, PT EntityPtr[T]](
	repo Repository[T],
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
	opts ...Option,
) *Service[T, PT] {
	o := options{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service[T, PT]{
		repo:       repo,
		validate:   validate,
		translator: translator,
		logger:     logger,
		newID:      o.newID,
		NowFunc:    time.Now,
	}
}

// Clean normalizes data, derives an empty slug and runs the validator tags.
func (svc *Service[T, PT]) Clean(data *T) error {
	ent := PT(data)
	ent.Clean()
	if s, ok := any(ent).(Sluggable); ok && s.GetSlug() == "" {
		s.SetSlug(core.Slugify(s.SlugSource()))
	}
	if err := svc.validate.Struct(ent); err != nil {
		return core.TranslateValidationErrors(err, svc.translator)
	}
	return nil
}

// Save creates the record when id is empty, else replaces the record with that id.
// Nested groups and items carrying temporary ids get persistent ones.
func (svc *Service[T, PT]) Save(ctx context.Context, id string, data T) (T, error) {
	var zero T
	if err := svc.Clean(&data); err != nil {
		return zero, err
	}

	ent := PT(&data)
	if id != "" {
		existing, err := svc.repo.Get(ctx, id)
		if err != nil {
			return zero, err
		}
		orig := PT(&existing).GetBase()
		ent.SetID(orig.ID)
		ent.GetBase().CreatedAt = orig.CreatedAt
	} else {
		ent.SetID(svc.newID())
		ent.GetBase().CreatedAt = time.Time{}
	}

	if err := svc.checkSlug(ctx, ent); err != nil {
		return zero, err
	}

	ent.AssignIDs(uuid.NewString)
	ent.Stamp(svc.NowFunc())

	if id != "" {
		return svc.repo.Update(ctx, data)
	}
	return svc.repo.Create(ctx, data)
}

func (svc *Service[T, PT]) checkSlug(ctx context.Context, ent PT) error {
	s, ok := any(ent).(Sluggable)
	if !ok {
		return nil
	}
	exists, err := svc.repo.SlugExists(ctx, s.GetSlug(), ent.GetID())
	if err != nil {
		return errors.Wrap(err, "checking slug")
	}
	if exists {
		return core.NewValidationError(
			core.ErrSlugExists,
			core.FieldError{Field: "slug", Error: core.ErrSlugExists.Error()},
		)
	}
	return nil
}

func (svc *Service[T, PT]) Get(ctx context.Context, idOrSlug string) (T, error) {
	return svc.repo.Get(ctx, idOrSlug)
}

func (svc *Service[T, PT]) Delete(ctx context.Context, id string) error {
	existing, err := svc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return svc.repo.Delete(ctx, PT(&existing).GetID())
}

func (svc *Service[T, PT]) List(ctx context.Context, q core.ListQuery) (core.Page[T], error) {
	page, err := svc.repo.List(ctx, q)
	if err != nil {
		return core.Page[T]{}, errors.Wrap(err, "listing records")
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}
