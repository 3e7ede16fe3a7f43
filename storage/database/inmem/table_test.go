package inmemdb

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
)

func fptr(f float64) *float64 { return &f }

func seedPrograms(t *testing.T) *Table[catalog.Program, *catalog.Program] {
	t.Helper()
	tbl := NewTable[catalog.Program](catalog.ProgramSpec)
	programs := []catalog.Program{
		{Base: catalog.Base{ID: "p1"}, Title: "MSc Data Science", Slug: "msc-data-science", Level: "master", Discipline: "Computing", Country: "UK", TuitionFee: 18000},
		{Base: catalog.Base{ID: "p2"}, Title: "BSc Computer Science", Slug: "bsc-computer-science", Level: "bachelor", Discipline: "Computing", Country: "Canada", TuitionFee: 9000},
		{Base: catalog.Base{ID: "p3"}, Title: "MBA", Slug: "mba", Level: "master", Discipline: "Business", Country: "UK", TuitionFee: 30000, Featured: true},
		{Base: catalog.Base{ID: "p4"}, Title: "PhD Physics", Slug: "phd-physics", Level: "phd", Discipline: "Science", Country: "Germany", TuitionFee: 500},
	}
	for _, p := range programs {
		_, err := tbl.Create(context.Background(), p)
		require.NoError(t, err)
	}
	return tbl
}

func titles(items []catalog.Program) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Title)
	}
	return out
}

func TestTable_CRUD(t *testing.T) {
	ctx := context.Background()
	tbl := seedPrograms(t)

	_, err := tbl.Create(ctx, catalog.Program{Base: catalog.Base{ID: "p5"}, Title: "MBA", Slug: "mba"})
	assert.Equal(t, core.ErrSlugExists, err)

	got, err := tbl.Get(ctx, "mba")
	require.NoError(t, err)
	assert.Equal(t, "p3", got.ID)

	// returned records are copies
	got.Title = "changed"
	got, err = tbl.Get(ctx, "p3")
	require.NoError(t, err)
	assert.Equal(t, "MBA", got.Title)

	got.Title = "Executive MBA"
	_, err = tbl.Update(ctx, got)
	require.NoError(t, err)
	got, _ = tbl.Get(ctx, "p3")
	assert.Equal(t, "Executive MBA", got.Title)

	exists, err := tbl.SlugExists(ctx, "mba", "p3")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, _ = tbl.SlugExists(ctx, "mba", "p1")
	assert.True(t, exists)

	require.NoError(t, tbl.Delete(ctx, "p3"))
	assert.Equal(t, core.ErrNotFound, tbl.Delete(ctx, "p3"))
	_, err = tbl.Get(ctx, "mba")
	assert.Equal(t, core.ErrNotFound, err)
	_, err = tbl.Update(ctx, got)
	assert.Equal(t, core.ErrNotFound, err)
}

func TestTable_List(t *testing.T) {
	tbl := seedPrograms(t)

	tests := []struct {
		name       string
		query      core.ListQuery
		wantTitles []string
		wantTotal  int
	}{
		{
			name:       "default order",
			query:      core.ListQuery{Page: 1, PerPage: 10},
			wantTitles: []string{"BSc Computer Science", "MBA", "MSc Data Science", "PhD Physics"},
			wantTotal:  4,
		},
		{
			name:       "search is case insensitive",
			query:      core.ListQuery{Search: "computing", Page: 1, PerPage: 10},
			wantTitles: []string{"BSc Computer Science", "MSc Data Science"},
			wantTotal:  2,
		},
		{
			name:       "set filter",
			query:      core.ListQuery{Sets: map[string][]string{"country": {"UK", "Germany"}}, Page: 1, PerPage: 10},
			wantTitles: []string{"MBA", "MSc Data Science", "PhD Physics"},
			wantTotal:  3,
		},
		{
			name: "range filter ordered by fee",
			query: core.ListQuery{
				Ranges:   map[string]core.Range{"tuition_fee": {Min: fptr(1000), Max: fptr(20000)}},
				Ordering: []core.DBOrdering{{Field: "tuition_fee"}},
				Page:     1, PerPage: 10,
			},
			wantTitles: []string{"MSc Data Science", "BSc Computer Science"},
			wantTotal:  2,
		},
		{
			name:       "flag filter",
			query:      core.ListQuery{Flags: map[string]bool{"featured": true}, Page: 1, PerPage: 10},
			wantTitles: []string{"MBA"},
			wantTotal:  1,
		},
		{
			name:       "unknown filters are ignored",
			query:      core.ListQuery{Sets: map[string][]string{"slug": {"mba"}}, Ordering: []core.DBOrdering{{Field: "slug"}}, Page: 1, PerPage: 10},
			wantTitles: []string{"BSc Computer Science", "MBA", "MSc Data Science", "PhD Physics"},
			wantTotal:  4,
		},
		{
			name:       "second page",
			query:      core.ListQuery{Page: 2, PerPage: 3},
			wantTitles: []string{"PhD Physics"},
			wantTotal:  4,
		},
		{
			name:       "page past the end",
			query:      core.ListQuery{Page: 9, PerPage: 3},
			wantTitles: []string{},
			wantTotal:  4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := tbl.List(context.Background(), tt.query)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.wantTitles, titles(page.Items)); diff != "" {
				t.Errorf("List() titles mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantTotal, page.Pagination.Total)
		})
	}
}

func TestTable_ListFacets(t *testing.T) {
	tbl := seedPrograms(t)

	page, err := tbl.List(context.Background(), core.ListQuery{
		Search: "s",
		Sets:   map[string][]string{"country": {"Canada"}},
		Page:   1, PerPage: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"BSc Computer Science"}, titles(page.Items))

	// facets ignore the filters, only the search narrows them
	want := map[string][]core.FacetValue{
		"country":    {{Value: "UK", Count: 2}, {Value: "Canada", Count: 1}, {Value: "Germany", Count: 1}},
		"level":      {{Value: "master", Count: 2}, {Value: "bachelor", Count: 1}, {Value: "phd", Count: 1}},
		"discipline": {{Value: "Computing", Count: 2}, {Value: "Business", Count: 1}, {Value: "Science", Count: 1}},
	}
	if diff := cmp.Diff(want, page.Facets); diff != "" {
		t.Errorf("List() facets mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, page.Pagination.TotalPages)
}
