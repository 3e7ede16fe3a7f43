package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/user"
)

func savePage(t *testing.T, title, content string, published bool) catalog.Page {
	t.Helper()
	page, err := svcs.Pages.Save(context.Background(), "", catalog.Page{Title: title, Content: content, Published: published})
	require.NoError(t, err)
	return page
}

func pageTitles(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var page core.Page[catalog.Page]
	decode(t, rec, &page)
	titles := make([]string, 0, len(page.Items))
	for _, p := range page.Items {
		titles = append(titles, p.Title)
	}
	return titles
}

func Test_catalogApi_pagesVisibility(t *testing.T) {
	app := setup(t)

	savePage(t, "About Us", "Who we are.", true)
	draft := savePage(t, "Draft News", "Soon.", false)
	editor := createUser(t, "Editor", "editor", "editor@safari.test", "", []string{user.RoleStaffEditor}, true)
	editorToken := getToken(t, app, editor)

	tests := []struct {
		name       string
		path       string
		token      string
		wantTitles []string
	}{
		{name: "anonymous", path: "/api/pages", wantTitles: []string{"About Us"}},
		{name: "anonymous cannot lift the flag", path: "/api/pages?published=false", wantTitles: []string{"About Us"}},
		{name: "staff sees drafts", path: "/api/pages", token: editorToken, wantTitles: []string{"About Us", "Draft News"}},
		{name: "staff filters drafts", path: "/api/pages?published=false", token: editorToken, wantTitles: []string{"Draft News"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantTitles, pageTitles(t, rec))
		})
	}

	t.Run("draft detail", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/pages/"+draft.Slug)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)}, rec)

		req, rec = newAuthRequest(http.MethodGet, "/api/pages/"+draft.ID, editorToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshalObj(t, draft)}, rec)
	})

	t.Run("stale session cookie reads as anonymous", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/pages/about-us")
		req.AddCookie(&http.Cookie{Name: conf.Server.SessionCookieName, Value: "stale"})
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func Test_catalogApi_pagesWrite(t *testing.T) {
	app := setup(t)

	editor := createUser(t, "Editor", "editor", "editor@safari.test", "", []string{user.RoleStaffEditor}, true)
	counsellor := createUser(t, "Counsellor", "counsellor", "counsellor@safari.test", "", []string{user.RoleStaffCounsellor}, true)
	admin := createUser(t, "Admin", "admin", "admin@safari.test", "", []string{user.RoleAdmin}, true)
	editorToken := getToken(t, app, editor)

	visaGuide := marshalObj(t, catalog.Page{Title: "Visa Guide", Content: "Everything about student visas."})

	tests := []httpTest{
		{name: "Auth required", body: visaGuide, wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errAuthRequired)},
		{name: "counsellors cannot edit pages", body: visaGuide, token: getToken(t, app, counsellor), wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{name: "created by an editor", body: visaGuide, token: editorToken, wantCode: http.StatusCreated},
		{
			name: "duplicate slug", body: visaGuide, token: editorToken, wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"slug": "slug already in use"}),
		},
		{
			name: "admins always pass", token: getToken(t, app, admin), wantCode: http.StatusCreated,
			body: marshalObj(t, catalog.Page{Title: "Scholarships", Slug: "funding", Content: "How to fund your studies."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/pages"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	var page catalog.Page
	t.Run("slug derived from the title", func(t *testing.T) {
		got, err := svcs.Pages.Get(context.Background(), "visa-guide")
		require.NoError(t, err)
		assert.False(t, got.Published)
		assert.False(t, got.CreatedAt.IsZero())
		page = got

		funding, err := svcs.Pages.Get(context.Background(), "funding")
		require.NoError(t, err)
		assert.Equal(t, "Scholarships", funding.Title)
	})

	t.Run("blank fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/pages", editorToken, marshalObj(t, catalog.Page{Title: "  "}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var flds map[string]string
		decode(t, rec, &flds)
		assert.Contains(t, flds, "title")
		assert.Contains(t, flds, "content")
	})

	t.Run("update", func(t *testing.T) {
		page.Published = true
		page.Content = "Updated."
		req, rec := newAuthRequest(http.MethodPut, "/api/pages/"+page.ID, editorToken, marshalObj(t, page))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got catalog.Page
		decode(t, rec, &got)
		assert.Equal(t, page.ID, got.ID)
		assert.Equal(t, page.CreatedAt, got.CreatedAt)
		assert.True(t, got.Published)
		assert.Equal(t, "Updated.", got.Content)
	})

	t.Run("update unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/pages/unknown", editorToken, marshalObj(t, page))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)}, rec)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/pages/"+page.ID, editorToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/api/pages/"+page.ID, editorToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_catalogApi_programsQuery(t *testing.T) {
	app := setup(t)

	ctx := context.Background()
	for _, p := range []catalog.Program{
		{UniversityID: "oxford", Title: "Computer Science BSc", Level: "bachelor", Discipline: "Computing", Country: "UK", DurationMonths: 36, TuitionFee: 15000},
		{UniversityID: "oxford", Title: "Data Science MSc", Level: "master", Discipline: "Computing", Country: "UK", DurationMonths: 12, TuitionFee: 22000},
		{UniversityID: "mcgill", Title: "MBA", Level: "master", Discipline: "Business", Country: "Canada", DurationMonths: 24, TuitionFee: 30000},
		{UniversityID: "tum", Title: "Physics PhD", Level: "phd", Discipline: "Science", Country: "Germany", DurationMonths: 48},
	} {
		_, err := svcs.Programs.Save(ctx, "", p)
		require.NoError(t, err)
	}

	allFacets := map[string][]core.FacetValue{
		"country":    {{Value: "UK", Count: 2}, {Value: "Canada", Count: 1}, {Value: "Germany", Count: 1}},
		"level":      {{Value: "master", Count: 2}, {Value: "bachelor", Count: 1}, {Value: "phd", Count: 1}},
		"discipline": {{Value: "Computing", Count: 2}, {Value: "Business", Count: 1}, {Value: "Science", Count: 1}},
	}

	tests := []struct {
		name           string
		path           string
		wantTitles     []string
		wantPagination core.Pagination
	}{
		{
			name:           "default ordering",
			path:           "/api/programs",
			wantTitles:     []string{"Computer Science BSc", "Data Science MSc", "MBA", "Physics PhD"},
			wantPagination: core.Pagination{Page: 1, PerPage: 12, Total: 4, TotalPages: 1},
		},
		{
			name:           "set and range",
			path:           "/api/programs?country=UK,Canada&tuition_fee_max=25000",
			wantTitles:     []string{"Computer Science BSc", "Data Science MSc"},
			wantPagination: core.Pagination{Page: 1, PerPage: 12, Total: 2, TotalPages: 1},
		},
		{
			name:           "ordering",
			path:           "/api/programs?level=master&ordering=-tuition_fee",
			wantTitles:     []string{"MBA", "Data Science MSc"},
			wantPagination: core.Pagination{Page: 1, PerPage: 12, Total: 2, TotalPages: 1},
		},
		{
			name:           "search",
			path:           "/api/programs?search=science",
			wantTitles:     []string{"Computer Science BSc", "Data Science MSc", "Physics PhD"},
			wantPagination: core.Pagination{Page: 1, PerPage: 12, Total: 3, TotalPages: 1},
		},
		{
			name:           "pagination",
			path:           "/api/programs?per_page=3&page=2",
			wantTitles:     []string{"Physics PhD"},
			wantPagination: core.Pagination{Page: 2, PerPage: 3, Total: 4, TotalPages: 2},
		},
		{
			name:           "per_page is capped",
			path:           "/api/programs?per_page=1000",
			wantTitles:     []string{"Computer Science BSc", "Data Science MSc", "MBA", "Physics PhD"},
			wantPagination: core.Pagination{Page: 1, PerPage: 100, Total: 4, TotalPages: 1},
		},
		{
			name:           "unknown parameters are ignored",
			path:           "/api/programs?colour=blue&ordering=colour",
			wantTitles:     []string{"Computer Science BSc", "Data Science MSc", "MBA", "Physics PhD"},
			wantPagination: core.Pagination{Page: 1, PerPage: 12, Total: 4, TotalPages: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var page core.Page[catalog.Program]
			decode(t, rec, &page)
			titles := make([]string, 0, len(page.Items))
			for _, p := range page.Items {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.wantTitles, titles)
			assert.Equal(t, tt.wantPagination, page.Pagination)
		})
	}

	t.Run("facets ignore filters", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/programs?country=Germany")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page core.Page[catalog.Program]
		decode(t, rec, &page)
		if diff := cmp.Diff(allFacets, page.Facets); diff != "" {
			t.Errorf("facets mismatch (-want +got):\n%s", diff)
		}
	})

	for _, tt := range []httpTest{
		{name: "invalid range", path: "/api/programs?tuition_fee_min=cheap", wantData: marshalObj(t, map[string]string{"tuition_fee_min": "must be a number"})},
		{name: "invalid flag", path: "/api/programs?featured=maybe", wantData: marshalObj(t, map[string]string{"featured": "must be true or false"})},
		{
			name: "invalid page", path: "/api/programs?page=0&per_page=x",
			wantData: marshalObj(t, map[string]string{"page": "must be a positive integer", "per_page": "must be a positive integer"}),
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusBadRequest
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_catalogApi_heroSlides(t *testing.T) {
	app := setup(t)

	ctx := context.Background()
	live, err := svcs.HeroSlides.Save(ctx, "", catalog.HeroSlide{Title: "Study in Canada", ImageURL: "https://cdn.safari.test/canada.jpg", Active: true})
	require.NoError(t, err)
	_, err = svcs.HeroSlides.Save(ctx, "", catalog.HeroSlide{Title: "Hidden", ImageURL: "https://cdn.safari.test/hidden.jpg", OrderIndex: 1})
	require.NoError(t, err)

	req, rec := newRequest(http.MethodGet, "/api/hero-slides")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var page core.Page[catalog.HeroSlide]
	decode(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, live.ID, page.Items[0].ID)

	// detail is back-office only
	req, rec = newRequest(http.MethodGet, "/api/hero-slides/"+live.ID)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errAuthRequired)}, rec)
}
