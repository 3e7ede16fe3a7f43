package core

import (
	"context"
	"database/sql"
)

type (
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		Begin() (*sql.Tx, error)
		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ListSpec describes how a collection may be filtered, faceted and ordered.
// Filter names are also the column names.
type ListSpec struct {
	Table         string
	SearchColumns []string
	SetFilters    []string // ?country=UK,US
	RangeFilters  []string // ?tuition_fee_min=1000&tuition_fee_max=9000
	FlagFilters   []string // ?featured=true
	Facets        []string
	Orderable     []string
	DefaultOrder  []DBOrdering
	NumericFields []string // ordered numerically besides RangeFilters
}

// CleanOrdering drops orderings on fields that are not orderable and falls back to DefaultOrder.
func (spec ListSpec) CleanOrdering(ordering []DBOrdering) []DBOrdering {
	clean := make([]DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if containsString(spec.Orderable, ord.Field) {
			clean = append(clean, ord)
		}
	}
	if len(clean) == 0 {
		return spec.DefaultOrder
	}
	return clean
}

func (spec ListSpec) HasSet(name string) bool   { return containsString(spec.SetFilters, name) }
func (spec ListSpec) HasRange(name string) bool { return containsString(spec.RangeFilters, name) }
func (spec ListSpec) HasFlag(name string) bool  { return containsString(spec.FlagFilters, name) }

func (spec ListSpec) IsNumeric(name string) bool {
	return spec.HasRange(name) || containsString(spec.NumericFields, name)
}

type Range struct {
	Min *float64
	Max *float64
}

func (r Range) IsEmpty() bool { return r.Min == nil && r.Max == nil }

// ListQuery is a parsed list request. Absent keys mean "no constraint".
type ListQuery struct {
	Search   string
	Sets     map[string][]string
	Ranges   map[string]Range
	Flags    map[string]bool
	Page     int
	PerPage  int
	Ordering []DBOrdering
}

func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(page, perPage, total int) Pagination {
	if page < 1 {
		page = 1
	}
	totalPages := 1
	if perPage > 0 && total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Page is the list envelope returned by every collection endpoint.
type Page[T any] struct {
	Items      []T                     `json:"items"`
	Pagination Pagination              `json:"pagination"`
	Facets     map[string][]FacetValue `json:"facets"`
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
