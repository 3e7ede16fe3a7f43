package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/safari/core"
)

const (
	orderingParam = "ordering"
	searchParam   = "search"
	pageParam     = "page"
	perPageParam  = "per_page"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// ListParams binds the query string of a collection list request.
// Parameters the ListSpec does not declare are ignored.
type ListParams struct {
	DefaultPerPage int
	MaxPerPage     int
	Query          core.ListQuery
}

func (lp *ListParams) Bind(ctx echo.Context, spec core.ListSpec) error {
	var flds []core.FieldError
	data := ctx.QueryParams()

	q := core.ListQuery{
		Search:  strings.TrimSpace(data.Get(searchParam)),
		Sets:    make(map[string][]string),
		Ranges:  make(map[string]core.Range),
		Flags:   make(map[string]bool),
		Page:    1,
		PerPage: lp.DefaultPerPage,
	}

	if raw := data.Get(pageParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.Page = n
		} else {
			flds = append(flds, core.FieldError{Field: pageParam, Error: "must be a positive integer"})
		}
	}
	if raw := data.Get(perPageParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.PerPage = n
		} else {
			flds = append(flds, core.FieldError{Field: perPageParam, Error: "must be a positive integer"})
		}
	}
	if lp.MaxPerPage > 0 && q.PerPage > lp.MaxPerPage {
		q.PerPage = lp.MaxPerPage
	}

	for _, name := range spec.SetFilters {
		var members []string
		for _, m := range strings.Split(data.Get(name), ",") {
			if m = strings.TrimSpace(m); m != "" {
				members = append(members, m)
			}
		}
		if len(members) > 0 {
			q.Sets[name] = members
		}
	}

	for _, name := range spec.RangeFilters {
		var rng core.Range
		for suffix, bound := range map[string]**float64{"_min": &rng.Min, "_max": &rng.Max} {
			raw := data.Get(name + suffix)
			if raw == "" {
				continue
			}
			num, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				flds = append(flds, core.FieldError{Field: name + suffix, Error: "must be a number"})
				continue
			}
			*bound = &num
		}
		if !rng.IsEmpty() {
			q.Ranges[name] = rng
		}
	}

	for _, name := range spec.FlagFilters {
		raw := data.Get(name)
		if raw == "" {
			continue
		}
		flag, err := strconv.ParseBool(raw)
		if err != nil {
			flds = append(flds, core.FieldError{Field: name, Error: "must be true or false"})
			continue
		}
		q.Flags[name] = flag
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)
	q.Ordering = ordering.Orderings

	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	lp.Query = q
	return nil
}
