// Package wizard drives multi-step forms: an ordered list of steps that fill one typed draft,
// a validation gate on forward navigation, and a single coalesced submission to the backend.
package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/safari/core"
)

var (
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrNoSteps           = errors.New("wizard has no steps")
	ErrNotGrouped        = errors.New("draft has no nested groups")
	ErrGroupNotFound     = errors.New("group not found")
	ErrItemNotFound      = errors.New("item not found")
)

// Mode tells whether the draft is a new entity or an existing, persisted one.
type Mode int

const (
	CreateMode Mode = iota
	EditMode
)

func (m Mode) String() string {
	if m == EditMode {
		return "edit"
	}
	return "create"
}

type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	return [...]string{"idle", "submitting", "succeeded", "failed"}[p]
}

// Status is the submission status. Reason is only set when Phase is Failed.
type Status struct {
	Phase  Phase
	Reason string
	Kind   core.SyncErrorKind
}

// Sluggable drafts get their slug derived from a title-like field.
type Sluggable interface {
	SlugSource() string
	GetSlug() string
	SetSlug(string)
}

// Identifiable drafts expose the id of the persisted entity.
type Identifiable interface {
	GetID() string
}

// Config holds everything a Controller needs. T is the draft record type, e.g. catalog.Page.
type Config[T any] struct {
	Collection string
	Steps      []Step[T]
	Sync       core.SyncService
	Validate   *validator.Validate
	Translator ut.Translator
	Logger     core.Logger

	// OnSuccess receives the draft as returned by the server.
	OnSuccess func(T)
	// OnAuthRequired is called instead of surfacing an error when the session is missing or expired.
	OnAuthRequired func()
}

// Controller is a wizard instance. It owns its draft exclusively.
type Controller[T any] struct {
	cfg Config[T]

	mu            sync.Mutex
	mode          Mode
	id            string
	draft         T
	index         int
	status        Status
	slugEdited    bool
	persistedSlug string
	gateErrs      map[string]string
	serverErrs    map[string]string

	flight singleflight.Group
}

// New returns a wizard in create mode with an empty draft.
func New[T any](cfg Config[T]) (*Controller[T], error) {
	var draft T
	return newController(cfg, CreateMode, "", draft)
}

// NewWithDraft returns a wizard in create mode pre-populated with draft.
func NewWithDraft[T any](cfg Config[T], draft T) (*Controller[T], error) {
	return newController(cfg, CreateMode, "", draft)
}

// Edit returns a wizard in edit mode for the persisted entity id.
func Edit[T any](cfg Config[T], id string, entity T) (*Controller[T], error) {
	return newController(cfg, EditMode, id, entity)
}

func newController[T any](cfg Config[T], mode Mode, id string, draft T) (*Controller[T], error) {
	if len(cfg.Steps) == 0 {
		return nil, ErrNoSteps
	}
	if cfg.Validate == nil {
		validate, translator := core.NewValidator()
		cfg.Validate, cfg.Translator = validate, translator
	}
	if cfg.Logger == nil {
		cfg.Logger = core.NopLogger()
	}
	c := &Controller[T]{cfg: cfg, mode: mode, id: id, draft: draft}
	if s, ok := any(&c.draft).(Sluggable); ok && mode == EditMode {
		c.persistedSlug = s.GetSlug()
	}
	return c, nil
}

// Draft returns a copy of the aggregate.
func (c *Controller[T]) Draft() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller[T]) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Controller[T]) Steps() []Step[T] { return c.cfg.Steps }

// StepLabels feeds a step indicator.
func (c *Controller[T]) StepLabels() []string {
	labels := make([]string, len(c.cfg.Steps))
	for i, s := range c.cfg.Steps {
		labels[i] = s.Label
	}
	return labels
}

func (c *Controller[T]) Step() Step[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Steps[c.index]
}

func (c *Controller[T]) IsLast() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index == len(c.cfg.Steps)-1
}

func (c *Controller[T]) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ID returns the persisted entity id, empty in create mode.
func (c *Controller[T]) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Controller[T]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// FieldErrors merges the last gate errors with the last server field errors.
func (c *Controller[T]) FieldErrors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fieldErrors()
}

func (c *Controller[T]) fieldErrors() map[string]string {
	errs := make(map[string]string, len(c.gateErrs)+len(c.serverErrs))
	for k, v := range c.serverErrs {
		errs[k] = v
	}
	for k, v := range c.gateErrs {
		errs[k] = v
	}
	return errs
}

// SetField merges one value, addressed by its JSON name, into the draft.
// Values are weakly decoded so form input strings land in numeric, boolean and time fields.
func (c *Controller[T]) SetField(name string, value interface{}) error {
	return c.apply(func(draft *T) error {
		var md mapstructure.Metadata
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeHookFunc(time.RFC3339),
				mapstructure.StringToSliceHookFunc(","),
			),
			Metadata:         &md,
			Result:           draft,
			TagName:          "json",
			Squash:           true,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return errors.Wrap(err, "building decoder")
		}
		if err := dec.Decode(map[string]interface{}{name: value}); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: name, Error: fmt.Sprintf("invalid value %v", value)})
		}
		for _, unused := range md.Unused {
			if unused == name {
				return core.NewArgumentError(fmt.Sprintf("unknown field %q", name))
			}
		}
		return nil
	})
}

// Update is the typed form of SetField.
func (c *Controller[T]) Update(fn func(draft *T)) {
	_ = c.apply(func(draft *T) error {
		fn(draft)
		return nil
	})
}

// apply runs fn on a working copy and commits it, with derived fields, only if fn succeeds.
func (c *Controller[T]) apply(fn func(draft *T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	work := c.draft
	var srcBefore, slugBefore string
	s, sluggable := any(&work).(Sluggable)
	if sluggable {
		srcBefore, slugBefore = s.SlugSource(), s.GetSlug()
	}
	if err := fn(&work); err != nil {
		return err
	}
	if sluggable {
		switch {
		case s.GetSlug() != slugBefore:
			// a direct slug edit wins; clearing it hands control back to the title
			s.SetSlug(core.Slugify(s.GetSlug()))
			c.slugEdited = s.GetSlug() != ""
			if !c.slugEdited && c.canDeriveSlug() {
				s.SetSlug(core.Slugify(s.SlugSource()))
			}
		case s.SlugSource() != srcBefore && !c.slugEdited && c.canDeriveSlug():
			s.SetSlug(core.Slugify(s.SlugSource()))
		}
	}
	c.draft = work
	return nil
}

// canDeriveSlug: always in create mode; in edit mode only while the entity has no persisted slug.
func (c *Controller[T]) canDeriveSlug() bool {
	return c.mode == CreateMode || c.persistedSlug == ""
}

// Next validates the current step and moves forward. On the last step it only validates.
func (c *Controller[T]) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.gate(c.index); err != nil {
		return err
	}
	if c.index < len(c.cfg.Steps)-1 {
		c.index++
	}
	return nil
}

// Previous moves back without validating.
func (c *Controller[T]) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index > 0 {
		c.index--
		c.gateErrs = nil
	}
}

// JumpTo moves to any step provided every step before it passes validation.
func (c *Controller[T]) JumpTo(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.cfg.Steps) {
		return errors.Wrapf(ErrInvalidTransition, "no step at index %d", index)
	}
	for i := 0; i < index; i++ {
		if err := c.gate(i); err != nil {
			return errors.Wrapf(ErrInvalidTransition, "step %q: %v", c.cfg.Steps[i].ID, err)
		}
	}
	c.index = index
	c.gateErrs = nil
	return nil
}

// Validate checks step i without navigating.
func (c *Controller[T]) Validate(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.cfg.Steps) {
		return core.NewArgumentError(fmt.Sprintf("no step at index %d", i))
	}
	return c.gate(i)
}

// gate validates step i and records its field errors. Must hold c.mu.
func (c *Controller[T]) gate(i int) error {
	err := c.cfg.Steps[i].validate(&c.draft, c.cfg.Validate, c.cfg.Translator)
	c.gateErrs = nil
	if err == nil {
		return nil
	}
	if vErr, ok := err.(*core.ValidationError); ok {
		c.gateErrs = vErr.FieldMap()
	}
	return err
}

// Submit validates every step, then saves the draft and waits for the outcome.
// Calls made while a submission is in flight share it. Once issued, the request is not
// cancelled by ctx; ctx only bounds how long the caller waits.
func (c *Controller[T]) Submit(ctx context.Context) (Status, error) {
	ch, err := c.SubmitAsync(ctx)
	if err != nil {
		return c.Status(), err
	}
	select {
	case status := <-ch:
		return status, nil
	case <-ctx.Done():
		return c.Status(), nil
	}
}

// SubmitAsync is Submit without the wait. The channel yields the final status once.
func (c *Controller[T]) SubmitAsync(ctx context.Context) (<-chan Status, error) {
	c.mu.Lock()
	for i := range c.cfg.Steps {
		if err := c.gate(i); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}
	c.status = Status{Phase: Submitting}
	c.mu.Unlock()

	reqCtx := context.WithoutCancel(ctx)
	resCh := c.flight.DoChan("submit", func() (interface{}, error) {
		return c.save(reqCtx), nil
	})

	out := make(chan Status, 1)
	go func() {
		res := <-resCh
		out <- res.Val.(Status)
	}()
	return out, nil
}

func (c *Controller[T]) save(ctx context.Context) Status {
	c.mu.Lock()
	payload, id := c.draft, c.id
	c.mu.Unlock()

	res := c.cfg.Sync.Save(ctx, c.cfg.Collection, id, payload)

	c.mu.Lock()
	if !res.OK {
		c.status = Status{Phase: Failed, Reason: res.Message, Kind: res.Kind}
		c.serverErrs = res.Fields
		status := c.status
		c.mu.Unlock()

		if res.Kind == core.AuthRequired && c.cfg.OnAuthRequired != nil {
			c.cfg.OnAuthRequired()
		}
		return status
	}

	// adopt the server copy: persistent ids replace temporary ones
	if len(res.Entity) > 0 {
		var adopted T
		if err := json.Unmarshal(res.Entity, &adopted); err != nil {
			c.cfg.Logger.Warn(fmt.Sprintf("wizard: decoding saved %s: %v", c.cfg.Collection, err), err)
		} else {
			c.draft = adopted
		}
	}
	if ident, ok := any(&c.draft).(Identifiable); ok && ident.GetID() != "" {
		c.id = ident.GetID()
	}
	c.mode = EditMode
	if s, ok := any(&c.draft).(Sluggable); ok {
		c.persistedSlug = s.GetSlug()
	}
	c.serverErrs = nil
	c.status = Status{Phase: Succeeded}
	status, saved := c.status, c.draft
	c.mu.Unlock()

	if c.cfg.OnSuccess != nil {
		c.cfg.OnSuccess(saved)
	}
	return status
}

// View renders the current step.
func (c *Controller[T]) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Render(c.draft, c.cfg.Steps[c.index], c.index, len(c.cfg.Steps), c.fieldErrors())
}
