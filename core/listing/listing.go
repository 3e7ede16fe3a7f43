// Package listing keeps a filtered, paginated collection in sync with the backend.
//
// Every mutation refetches. Responses are applied last-write-wins by request sequence:
// a response older than the last applied one is dropped on arrival.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
)

const pageParam = "page"

// Kind is the type of a filter value.
type Kind int

const (
	TextKind Kind = iota
	SetKind
	RangeKind
	FlagKind
)

// Value is the current value of one filter. Only the members matching Kind are used.
type Value struct {
	Kind Kind
	Text string
	Set  []string
	Min  *float64
	Max  *float64
	Flag *bool
}

func Text(s string) Value          { return Value{Kind: TextKind, Text: s} }
func Set(members ...string) Value  { return Value{Kind: SetKind, Set: members} }
func Range(lo, hi *float64) Value  { return Value{Kind: RangeKind, Min: lo, Max: hi} }
func Flag(b bool) Value            { return Value{Kind: FlagKind, Flag: &b} }
func AnyFlag() Value               { return Value{Kind: FlagKind} }

// Has reports whether member is selected in a set value.
func (v Value) Has(member string) bool {
	for _, m := range v.Set {
		if m == member {
			return true
		}
	}
	return false
}

// IsEmpty values are not sent: an absent parameter means "no constraint".
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case TextKind:
		return strings.TrimSpace(v.Text) == ""
	case SetKind:
		return len(v.Set) == 0
	case RangeKind:
		return v.Min == nil && v.Max == nil
	case FlagKind:
		return v.Flag == nil
	}
	return true
}

// Filter declares one filter of a list page. Name is also the query parameter
// (ranges use <name>_min and <name>_max).
type Filter struct {
	Name    string
	Default Value
}

type Config[T any] struct {
	Collection string
	Filters    []Filter
	PerPage    int // 0 leaves it to the server
	Ordering   string
	Sync       core.SyncService
	Logger     core.Logger

	// OnChange is called after a response has been applied.
	OnChange func(State[T])
	// OnAuthRequired is called when a fetch is rejected for lack of a session.
	OnAuthRequired func()
}

// State is a snapshot of the controller.
type State[T any] struct {
	Fields    map[string]Value
	Page      int
	Result    core.Page[T]
	LastError error
	Loading   bool
}

type Controller[T any] struct {
	cfg Config[T]
	ctx context.Context

	mu       sync.Mutex
	fields   map[string]Value
	page     int
	seq      uint64
	applied  uint64
	inflight int
	result   core.Page[T]
	lastErr  error

	wg sync.WaitGroup
}

// New returns a controller with every filter at its default. Nothing is fetched until the
// first mutation or Refresh. Fetches run on ctx.
func New[T any](ctx context.Context, cfg Config[T]) *Controller[T] {
	if cfg.Logger == nil {
		cfg.Logger = core.NopLogger()
	}
	c := &Controller[T]{cfg: cfg, ctx: ctx, page: 1}
	c.fields = c.defaults()
	return c
}

func (c *Controller[T]) defaults() map[string]Value {
	fields := make(map[string]Value, len(c.cfg.Filters))
	for _, f := range c.cfg.Filters {
		fields[f.Name] = f.Default
	}
	return fields
}

func (c *Controller[T]) filter(name string) (Filter, error) {
	for _, f := range c.cfg.Filters {
		if f.Name == name {
			return f, nil
		}
	}
	return Filter{}, core.NewArgumentError(fmt.Sprintf("unknown filter %q", name))
}

// SetField replaces one filter value and goes back to page 1.
func (c *Controller[T]) SetField(name string, value Value) error {
	f, err := c.filter(name)
	if err != nil {
		return err
	}
	if value.Kind != f.Default.Kind {
		return core.NewArgumentError(fmt.Sprintf("filter %q does not accept this kind of value", name))
	}

	c.mu.Lock()
	c.fields[name] = value
	c.page = 1
	c.mu.Unlock()

	c.Refresh()
	return nil
}

// ToggleSetMember adds member to a set filter if absent, removes it otherwise, and goes back to page 1.
func (c *Controller[T]) ToggleSetMember(name, member string) error {
	f, err := c.filter(name)
	if err != nil {
		return err
	}
	if f.Default.Kind != SetKind {
		return core.NewArgumentError(fmt.Sprintf("filter %q is not a set", name))
	}

	c.mu.Lock()
	cur := c.fields[name]
	next := make([]string, 0, len(cur.Set)+1)
	found := false
	for _, m := range cur.Set {
		if m == member {
			found = true
			continue
		}
		next = append(next, m)
	}
	if !found {
		next = append(next, member)
	}
	c.fields[name] = Set(next...)
	c.page = 1
	c.mu.Unlock()

	c.Refresh()
	return nil
}

// SetPage changes the page and leaves the filters alone.
func (c *Controller[T]) SetPage(n int) error {
	if n < 1 {
		return core.NewArgumentError(fmt.Sprintf("invalid page %d", n))
	}
	c.mu.Lock()
	c.page = n
	c.mu.Unlock()

	c.Refresh()
	return nil
}

// ClearAll restores every filter default and page 1.
func (c *Controller[T]) ClearAll() {
	c.mu.Lock()
	c.fields = c.defaults()
	c.page = 1
	c.mu.Unlock()

	c.Refresh()
}

// Refresh fetches the current filter state.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	params := c.params()
	c.inflight++
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res := c.cfg.Sync.List(c.ctx, c.cfg.Collection, params)
		c.apply(seq, res)
	}()
}

func (c *Controller[T]) apply(seq uint64, res core.SyncResult) {
	c.mu.Lock()
	c.inflight--
	if seq <= c.applied {
		c.mu.Unlock()
		c.cfg.Logger.Debug(fmt.Sprintf("listing: dropping stale %s response #%d", c.cfg.Collection, seq))
		return
	}
	c.applied = seq

	authRequired := false
	if res.OK {
		var page core.Page[T]
		if err := json.Unmarshal(res.Entity, &page); err != nil {
			c.lastErr = &core.SyncError{Kind: core.TransportError, Message: "Unexpected response from the server."}
		} else {
			if page.Items == nil {
				page.Items = []T{}
			}
			c.result = page
			c.lastErr = nil
		}
	} else {
		c.lastErr = res.Err()
		authRequired = res.Kind == core.AuthRequired
	}
	state := c.state()
	c.mu.Unlock()

	if authRequired && c.cfg.OnAuthRequired != nil {
		c.cfg.OnAuthRequired()
	}
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(state)
	}
}

// Wait blocks until every issued fetch has returned.
func (c *Controller[T]) Wait() {
	c.wg.Wait()
}

// Params serializes the current state into query parameters. Empty filters are omitted,
// sets are sorted and comma joined, page is always present.
func (c *Controller[T]) Params() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params()
}

func (c *Controller[T]) params() map[string]string {
	params := map[string]string{pageParam: strconv.Itoa(c.page)}
	if c.cfg.PerPage > 0 {
		params["per_page"] = strconv.Itoa(c.cfg.PerPage)
	}
	if c.cfg.Ordering != "" {
		params["ordering"] = c.cfg.Ordering
	}
	for name, v := range c.fields {
		if v.IsEmpty() {
			continue
		}
		switch v.Kind {
		case TextKind:
			params[name] = strings.TrimSpace(v.Text)
		case SetKind:
			members := append([]string(nil), v.Set...)
			sort.Strings(members)
			params[name] = strings.Join(members, ",")
		case RangeKind:
			if v.Min != nil {
				params[name+"_min"] = strconv.FormatFloat(*v.Min, 'f', -1, 64)
			}
			if v.Max != nil {
				params[name+"_max"] = strconv.FormatFloat(*v.Max, 'f', -1, 64)
			}
		case FlagKind:
			params[name] = strconv.FormatBool(*v.Flag)
		}
	}
	return params
}

func (c *Controller[T]) state() State[T] {
	fields := make(map[string]Value, len(c.fields))
	for k, v := range c.fields {
		fields[k] = v
	}
	return State[T]{
		Fields:    fields,
		Page:      c.page,
		Result:    c.result,
		LastError: c.lastErr,
		Loading:   c.inflight > 0,
	}
}

func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Controller[T]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller[T]) Field(name string) Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields[name]
}

func (c *Controller[T]) Result() core.Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// LastError is nil after a successful fetch, else a *core.SyncError.
func (c *Controller[T]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// IsAuthError reports whether err asks for a new login.
func IsAuthError(err error) bool {
	var sErr *core.SyncError
	return errors.As(err, &sErr) && sErr.Kind == core.AuthRequired
}
