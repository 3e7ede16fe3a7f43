package boiledrepos

import (
	"fmt"
	"strings"

	"github.com/volatiletech/sqlboiler/v4/drivers"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/safari/core"
)

var dialect = drivers.Dialect{
	LQ:                   '"',
	RQ:                   '"',
	UseIndexPlaceholders: true,
	UseDefaultKeyword:    true,
}

// native columns of the catalog tables; every other field lives in the data document
var nativeColumns = map[string]bool{"id": true, "slug": true, "created_at": true, "updated_at": true}

func newQuery(mods ...qm.QueryMod) *queries.Query {
	q := &queries.Query{}
	queries.SetDialect(q, &dialect)
	qm.Apply(q, mods...)
	return q
}

// column returns the SQL expression of a field. Names come from a core.ListSpec, never from user input.
func column(name string) string {
	if nativeColumns[name] {
		return fmt.Sprintf(`"%s"`, name)
	}
	return fmt.Sprintf("data->>'%s'", name)
}

func orderColumn(spec core.ListSpec, name string) string {
	if spec.IsNumeric(name) && !nativeColumns[name] {
		return fmt.Sprintf("(%s)::numeric", column(name))
	}
	return column(name)
}

// searchMods matches the search keyword against every search column, case-insensitively.
func searchMods(spec core.ListSpec, search string) []qm.QueryMod {
	search = strings.TrimSpace(search)
	if search == "" || len(spec.SearchColumns) == 0 {
		return nil
	}
	clauses := make([]string, 0, len(spec.SearchColumns))
	args := make([]interface{}, 0, len(spec.SearchColumns))
	val := "%" + search + "%"
	for _, col := range spec.SearchColumns {
		clauses = append(clauses, column(col)+" ILIKE ?")
		args = append(args, val)
	}
	return []qm.QueryMod{qm.Expr(qm.Where(strings.Join(clauses, " OR "), args...))}
}

// filterMods turns the set, range and flag constraints of q into WHERE clauses. Unknown names are ignored.
func filterMods(spec core.ListSpec, q core.ListQuery) []qm.QueryMod {
	var mods []qm.QueryMod
	for _, name := range spec.SetFilters {
		members := q.Sets[name]
		if len(members) == 0 {
			continue
		}
		args := make([]interface{}, 0, len(members))
		for _, m := range members {
			args = append(args, m)
		}
		mods = append(mods, qm.WhereIn(column(name)+" IN ?", args...))
	}
	for _, name := range spec.RangeFilters {
		rng, ok := q.Ranges[name]
		if !ok {
			continue
		}
		expr := fmt.Sprintf("(%s)::numeric", column(name))
		if rng.Min != nil {
			mods = append(mods, qm.Where(expr+" >= ?", *rng.Min))
		}
		if rng.Max != nil {
			mods = append(mods, qm.Where(expr+" <= ?", *rng.Max))
		}
	}
	for _, name := range spec.FlagFilters {
		want, ok := q.Flags[name]
		if !ok {
			continue
		}
		mods = append(mods, qm.Where(fmt.Sprintf("COALESCE((%s)::boolean, false) = ?", column(name)), want))
	}
	return mods
}

func orderMod(spec core.ListSpec, ordering []core.DBOrdering) qm.QueryMod {
	ordering = spec.CleanOrdering(ordering)
	parts := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		parts = append(parts, core.DBOrdering{Field: orderColumn(spec, ord.Field), Ascending: ord.Ascending}.String())
	}
	parts = append(parts, `"id" ASC`)
	return qm.OrderBy(strings.Join(parts, ", "))
}
