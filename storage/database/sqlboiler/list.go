package boiledrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
	"github.com/volatiletech/sqlboiler/v4/types"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/safari/core"
)

type listRow struct {
	ID        string     `boil:"id"`
	Data      types.JSON `boil:"data"`
	CreatedAt time.Time  `boil:"created_at"`
	UpdatedAt time.Time  `boil:"updated_at"`
}

type facetRow struct {
	Value string `boil:"value"`
	Count int    `boil:"count"`
}

// DecodeFunc turns a stored document into a record.
type DecodeFunc[T any] func(id string, data []byte, createdAt, updatedAt time.Time) (T, error)

// Lister runs the filtered, faceted and paginated list queries of one collection.
type Lister[T any] struct {
	exec   core.DBExecutor
	spec   core.ListSpec
	decode DecodeFunc[T]
}

func NewLister[T any](exec core.DBExecutor, spec core.ListSpec, decode DecodeFunc[T]) *Lister[T] {
	return &Lister[T]{exec: exec, spec: spec, decode: decode}
}

// List runs the page query, the count and one query per facet concurrently.
// Facets only apply the search so that every value of a facet stays selectable.
func (l *Lister[T]) List(ctx context.Context, q core.ListQuery) (core.Page[T], error) {
	var (
		rows   []*listRow
		total  int64
		facets = make([][]core.FacetValue, len(l.spec.Facets))
	)
	from := qm.From(fmt.Sprintf(`"%s"`, l.spec.Table))
	where := append(searchMods(l.spec, q.Search), filterMods(l.spec, q)...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mods := []qm.QueryMod{qm.Select(`"id"`, `"data"`, `"created_at"`, `"updated_at"`), from}
		mods = append(mods, where...)
		mods = append(mods, orderMod(l.spec, q.Ordering))
		if q.PerPage > 0 {
			mods = append(mods, qm.Limit(q.PerPage), qm.Offset(q.Offset()))
		}
		if err := newQuery(mods...).Bind(gctx, l.exec, &rows); err != nil {
			return errors.Wrapf(err, "listing %s", l.spec.Table)
		}
		return nil
	})
	g.Go(func() error {
		mods := append([]qm.QueryMod{qm.Select("COUNT(*)"), from}, where...)
		if err := newQuery(mods...).QueryRowContext(gctx, l.exec).Scan(&total); err != nil {
			return errors.Wrapf(err, "counting %s", l.spec.Table)
		}
		return nil
	})
	for i, name := range l.spec.Facets {
		g.Go(func() error {
			values, err := l.facet(gctx, from, name, q.Search)
			if err != nil {
				return err
			}
			facets[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Page[T]{}, err
	}

	items := make([]T, 0, len(rows))
	for _, r := range rows {
		ent, err := l.decode(r.ID, r.Data, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return core.Page[T]{}, err
		}
		items = append(items, ent)
	}
	page := core.Page[T]{
		Items:      items,
		Pagination: core.NewPagination(q.Page, q.PerPage, int(total)),
		Facets:     make(map[string][]core.FacetValue, len(l.spec.Facets)),
	}
	for i, name := range l.spec.Facets {
		page.Facets[name] = facets[i]
	}
	return page, nil
}

func (l *Lister[T]) facet(ctx context.Context, from qm.QueryMod, name, search string) ([]core.FacetValue, error) {
	col := column(name)
	mods := []qm.QueryMod{
		qm.Select(col+" AS value", "COUNT(*) AS count"),
		from,
		qm.Where(col + " IS NOT NULL AND " + col + " <> ''"),
	}
	mods = append(mods, searchMods(l.spec, search)...)
	mods = append(mods, qm.GroupBy(col), qm.OrderBy("count DESC, value ASC"))

	var rows []*facetRow
	if err := newQuery(mods...).Bind(ctx, l.exec, &rows); err != nil {
		return nil, errors.Wrapf(err, "computing %s facet", name)
	}
	values := make([]core.FacetValue, 0, len(rows))
	for _, r := range rows {
		values = append(values, core.FacetValue{Value: r.Value, Count: r.Count})
	}
	return values, nil
}
