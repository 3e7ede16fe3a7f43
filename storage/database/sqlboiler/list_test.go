package boiledrepos

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"go.uber.org/goleak"

	"github.com/trezcool/safari/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type program struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Country string `json:"country"`
}

var programSpec = core.ListSpec{
	Table:         "programs",
	SearchColumns: []string{"title"},
	SetFilters:    []string{"country"},
	RangeFilters:  []string{"tuition_fee"},
	FlagFilters:   []string{"featured"},
	Facets:        []string{"country"},
	Orderable:     []string{"title", "tuition_fee"},
	DefaultOrder:  []core.DBOrdering{{Field: "title", Ascending: true}},
}

func decodeProgram(id string, data []byte, _, _ time.Time) (program, error) {
	var p program
	err := json.Unmarshal(data, &p)
	p.ID = id
	return p, err
}

func TestOrderMod(t *testing.T) {
	q := newQuery(orderMod(programSpec, []core.DBOrdering{{Field: "tuition_fee"}, {Field: "password"}}))
	sql, _ := queries.BuildQuery(q)
	assert.Contains(t, sql, `ORDER BY (data->>'tuition_fee')::numeric DESC, "id" ASC`)

	q = newQuery(orderMod(programSpec, nil))
	sql, _ = queries.BuildQuery(q)
	assert.Contains(t, sql, `ORDER BY data->>'title' ASC, "id" ASC`)
}

func TestLister_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT "id", "data", "created_at", "updated_at" FROM "programs" WHERE .*data->>'title' ILIKE .*data->>'country' IN .*COALESCE\(\(data->>'featured'\)::boolean, false\) = .*ORDER BY data->>'title' ASC, "id" ASC LIMIT 2 OFFSET 2`).
		WithArgs("%sc%", "UK", "Canada", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data", "created_at", "updated_at"}).
			AddRow("p3", []byte(`{"title":"MSc Physics","country":"UK"}`), now, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "programs" WHERE`).
		WithArgs("%sc%", "UK", "Canada", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT data->>'country' AS value, COUNT\(\*\) AS count FROM "programs" WHERE .* GROUP BY data->>'country' ORDER BY count DESC, value ASC`).
		WithArgs("%sc%").
		WillReturnRows(sqlmock.NewRows([]string{"value", "count"}).AddRow("UK", 2).AddRow("Canada", 1))

	lister := NewLister[program](db, programSpec, decodeProgram)
	page, err := lister.List(context.Background(), core.ListQuery{
		Search:  "sc",
		Sets:    map[string][]string{"country": {"UK", "Canada"}, "unknown": {"x"}},
		Flags:   map[string]bool{"featured": true},
		Page:    2,
		PerPage: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []program{{ID: "p3", Title: "MSc Physics", Country: "UK"}}, page.Items)
	assert.Equal(t, core.Pagination{Page: 2, PerPage: 2, Total: 3, TotalPages: 2}, page.Pagination)
	assert.Equal(t, []core.FacetValue{{Value: "UK", Count: 2}, {Value: "Canada", Count: 1}}, page.Facets["country"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
