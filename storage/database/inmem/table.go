package inmemdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
)

// Table stores one collection. Records are kept in insertion order.
type Table[T any, PT catalog.EntityPtr[T]] struct {
	spec core.ListSpec

	mu   sync.RWMutex
	rows []T
}

var _ catalog.Repository[catalog.Page] = (*Table[catalog.Page, *catalog.Page])(nil) // interface compliance check

func NewTable[T any, PT catalog.EntityPtr[T]](spec core.ListSpec) *Table[T, PT] {
	return &Table[T, PT]{spec: spec}
}

func (tbl *Table[T, PT]) Create(_ context.Context, ent T) (T, error) {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()

	var zero T
	if tbl.find(PT(&ent).GetID()) >= 0 {
		return zero, errors.Errorf("%s: duplicate id %q", tbl.spec.Table, PT(&ent).GetID())
	}
	if err := tbl.checkSlug(ent); err != nil {
		return zero, err
	}
	row, err := clone(ent)
	if err != nil {
		return zero, err
	}
	tbl.rows = append(tbl.rows, row)
	return clone(row)
}

func (tbl *Table[T, PT]) Update(_ context.Context, ent T) (T, error) {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()

	var zero T
	idx := tbl.find(PT(&ent).GetID())
	if idx < 0 {
		return zero, core.ErrNotFound
	}
	if err := tbl.checkSlug(ent); err != nil {
		return zero, err
	}
	row, err := clone(ent)
	if err != nil {
		return zero, err
	}
	tbl.rows[idx] = row
	return clone(row)
}

func (tbl *Table[T, PT]) Get(_ context.Context, idOrSlug string) (T, error) {
	tbl.mu.RLock()
	defer tbl.mu.RUnlock()

	for i := range tbl.rows {
		ent := PT(&tbl.rows[i])
		if ent.GetID() == idOrSlug || slugOf(ent) == idOrSlug && idOrSlug != "" {
			return clone(tbl.rows[i])
		}
	}
	var zero T
	return zero, core.ErrNotFound
}

func (tbl *Table[T, PT]) Delete(_ context.Context, id string) error {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()

	idx := tbl.find(id)
	if idx < 0 {
		return core.ErrNotFound
	}
	tbl.rows = append(tbl.rows[:idx:idx], tbl.rows[idx+1:]...)
	return nil
}

func (tbl *Table[T, PT]) SlugExists(_ context.Context, slug, excludedID string) (bool, error) {
	tbl.mu.RLock()
	defer tbl.mu.RUnlock()
	return tbl.slugTaken(slug, excludedID), nil
}

// List applies the search, set, range and flag filters of q, orders and paginates.
// Facets only take the search into account.
func (tbl *Table[T, PT]) List(_ context.Context, q core.ListQuery) (core.Page[T], error) {
	tbl.mu.RLock()
	defer tbl.mu.RUnlock()

	type record struct {
		ent    T
		fields map[string]interface{}
	}

	facetCounts := make(map[string]map[string]int, len(tbl.spec.Facets))
	matches := make([]record, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		fields, err := fieldsOf(row)
		if err != nil {
			return core.Page[T]{}, err
		}
		if !tbl.matchSearch(fields, q.Search) {
			continue
		}
		for _, facet := range tbl.spec.Facets {
			if val := textOf(fields[facet]); val != "" {
				if facetCounts[facet] == nil {
					facetCounts[facet] = make(map[string]int)
				}
				facetCounts[facet][val]++
			}
		}
		if tbl.matchFilters(fields, q) {
			matches = append(matches, record{ent: row, fields: fields})
		}
	}

	ordering := tbl.spec.CleanOrdering(q.Ordering)
	sort.SliceStable(matches, func(i, j int) bool {
		for _, ord := range ordering {
			c := tbl.compare(ord.Field, matches[i].fields[ord.Field], matches[j].fields[ord.Field])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	total := len(matches)
	start, end := 0, total
	if q.PerPage > 0 {
		start = q.Offset()
		if start > total {
			start = total
		}
		if end = start + q.PerPage; end > total {
			end = total
		}
	}

	items := make([]T, 0, end-start)
	for _, m := range matches[start:end] {
		ent, err := clone(m.ent)
		if err != nil {
			return core.Page[T]{}, err
		}
		items = append(items, ent)
	}
	return core.Page[T]{
		Items:      items,
		Pagination: core.NewPagination(q.Page, q.PerPage, total),
		Facets:     facetValues(tbl.spec.Facets, facetCounts),
	}, nil
}

func (tbl *Table[T, PT]) find(id string) int {
	for i := range tbl.rows {
		if PT(&tbl.rows[i]).GetID() == id {
			return i
		}
	}
	return -1
}

func (tbl *Table[T, PT]) slugTaken(slug, excludedID string) bool {
	if slug == "" {
		return false
	}
	for i := range tbl.rows {
		ent := PT(&tbl.rows[i])
		if slugOf(ent) == slug && ent.GetID() != excludedID {
			return true
		}
	}
	return false
}

// checkSlug mirrors the unique slug constraint of the SQL tables.
func (tbl *Table[T, PT]) checkSlug(ent T) error {
	p := PT(&ent)
	if tbl.slugTaken(slugOf(p), p.GetID()) {
		return core.ErrSlugExists
	}
	return nil
}

func (tbl *Table[T, PT]) matchSearch(fields map[string]interface{}, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, col := range tbl.spec.SearchColumns {
		if strings.Contains(strings.ToLower(textOf(fields[col])), search) {
			return true
		}
	}
	return false
}

func (tbl *Table[T, PT]) matchFilters(fields map[string]interface{}, q core.ListQuery) bool {
	for name, members := range q.Sets {
		if !tbl.spec.HasSet(name) || len(members) == 0 {
			continue
		}
		val := textOf(fields[name])
		found := false
		for _, m := range members {
			if m == val {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for name, rng := range q.Ranges {
		if !tbl.spec.HasRange(name) || rng.IsEmpty() {
			continue
		}
		num, ok := fields[name].(float64)
		if !ok {
			return false
		}
		if rng.Min != nil && num < *rng.Min || rng.Max != nil && num > *rng.Max {
			return false
		}
	}
	for name, want := range q.Flags {
		if !tbl.spec.HasFlag(name) {
			continue
		}
		got, _ := fields[name].(bool)
		if got != want {
			return false
		}
	}
	return true
}

func (tbl *Table[T, PT]) compare(field string, a, b interface{}) int {
	if tbl.spec.IsNumeric(field) {
		x, _ := a.(float64)
		y, _ := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(textOf(a)), strings.ToLower(textOf(b)))
}

func facetValues(facets []string, counts map[string]map[string]int) map[string][]core.FacetValue {
	out := make(map[string][]core.FacetValue, len(facets))
	for _, facet := range facets {
		values := make([]core.FacetValue, 0, len(counts[facet]))
		for val, cnt := range counts[facet] {
			values = append(values, core.FacetValue{Value: val, Count: cnt})
		}
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Value < values[j].Value
		})
		out[facet] = values
	}
	return out
}

func slugOf(ent interface{}) string {
	if s, ok := ent.(catalog.Sluggable); ok {
		return s.GetSlug()
	}
	return ""
}

func textOf(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func fieldsOf(ent interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(ent)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	var fields map[string]interface{}
	if err = json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(err, "decoding record")
	}
	return fields, nil
}

// clone deep copies ent so callers never share nested slices with the table.
func clone[T any](ent T) (T, error) {
	var out T
	data, err := json.Marshal(ent)
	if err != nil {
		return out, errors.Wrap(err, "encoding record")
	}
	if err = json.Unmarshal(data, &out); err != nil {
		return out, errors.Wrap(err, "decoding record")
	}
	return out, nil
}
