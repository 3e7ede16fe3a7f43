package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/listing"
	"github.com/trezcool/safari/core/user"
	"github.com/trezcool/safari/core/wizard"
	"github.com/trezcool/safari/services/remotesync"
)

// An editor creates the "About Us" page through the page wizard, over HTTP,
// and the pages list picks it up on its next fetch.
func TestAboutUsPage(t *testing.T) {
	app := setup(t)
	createUser(t, "Editor", "editor", "editor@safari.test", testPassword, []string{user.RoleStaffEditor}, true)

	var pagePosts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/pages" {
			atomic.AddInt32(&pagePosts, 1)
		}
		app.ServeHTTP(w, r)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := remotesync.NewClient(remotesync.Options{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})
	require.NoError(t, err)

	// the list is back-office only until logged in
	pages := listing.New[catalog.Page](ctx, listing.Config[catalog.Page]{
		Collection: catalog.Pages,
		Filters:    []listing.Filter{{Name: "search", Default: listing.Text("")}, {Name: "published", Default: listing.AnyFlag()}},
		Sync:       client,
	})
	require.NoError(t, pages.SetField("published", listing.Flag(false)))
	pages.Wait()
	assert.Empty(t, pages.Result().Items, "visitors only see published pages")

	res := client.Login(ctx, "editor", testPassword)
	require.True(t, res.OK, res.Message)
	require.True(t, client.HasSession())

	var saved catalog.Page
	validate, translator := catalog.NewValidator()
	wiz, err := wizard.New[catalog.Page](wizard.Config[catalog.Page]{
		Collection: catalog.Pages,
		Steps:      catalog.PageSteps(),
		Sync:       client,
		Validate:   validate,
		Translator: translator,
		OnSuccess:  func(p catalog.Page) { saved = p },
	})
	require.NoError(t, err)

	// the first step gates on the title
	assert.Error(t, wiz.Next())
	require.NoError(t, wiz.SetField("title", "About Us"))
	require.NoError(t, wiz.Next())
	require.NoError(t, wiz.SetField("content", "# Who we are\nCounsellors helping students study abroad since 2010."))
	require.NoError(t, wiz.Next())
	require.NoError(t, wiz.SetField("published", true))
	assert.Equal(t, "about-us", wiz.Draft().Slug)

	status, err := wiz.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, wizard.Succeeded, status.Phase, status.Reason)
	assert.Equal(t, int32(1), atomic.LoadInt32(&pagePosts))
	assert.Equal(t, wizard.EditMode, wiz.Mode())
	assert.NotEmpty(t, wiz.ID())
	assert.Equal(t, wiz.ID(), saved.ID)
	assert.Equal(t, "about-us", saved.Slug)

	stored, err := svcs.Pages.Get(ctx, "about-us")
	require.NoError(t, err)
	assert.True(t, stored.Published)

	// the list refetches and shows the page
	require.NoError(t, pages.SetField("published", listing.Flag(true)))
	pages.Wait()
	require.NoError(t, pages.LastError())
	result := pages.Result()
	require.Len(t, result.Items, 1)
	assert.Equal(t, "About Us", result.Items[0].Title)
	assert.Equal(t, core.Pagination{Page: 1, PerPage: conf.Server.DefaultPageSize, Total: 1, TotalPages: 1}, result.Pagination)

	// a second submit of the same title is rejected on the slug
	again, err := wizard.NewWithDraft[catalog.Page](wizard.Config[catalog.Page]{
		Collection: catalog.Pages,
		Steps:      catalog.PageSteps(),
		Sync:       client,
		Validate:   validate,
		Translator: translator,
	}, catalog.Page{Title: "About Us", Content: "Copy."})
	require.NoError(t, err)
	status, err = again.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, wizard.Failed, status.Phase)
	assert.Equal(t, core.ServerRejection, status.Kind)
	assert.Equal(t, "slug already in use", again.FieldErrors()["slug"])

	// a logged out wizard asks for a new session
	require.True(t, client.Logout(ctx).OK)
	authRequired := make(chan struct{}, 1)
	third, err := wizard.NewWithDraft[catalog.Page](wizard.Config[catalog.Page]{
		Collection:     catalog.Pages,
		Steps:          catalog.PageSteps(),
		Sync:           client,
		Validate:       validate,
		Translator:     translator,
		OnAuthRequired: func() { authRequired <- struct{}{} },
	}, catalog.Page{Title: "Visas", Content: "How to apply."})
	require.NoError(t, err)
	status, err = third.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.AuthRequired, status.Kind)
	select {
	case <-authRequired:
	default:
		t.Error("OnAuthRequired was not called")
	}
}
