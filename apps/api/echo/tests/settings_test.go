package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/safari/apps/api/echo"
	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/user"
)

func Test_settingsApi_setup(t *testing.T) {
	app := setup(t)

	status := func(t *testing.T, want bool) {
		t.Helper()
		req, rec := newRequest(http.MethodGet, "/api/setup")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshalObj(t, echoapi.SetupStatusResponse{IsSetUp: want})}, rec)
	}
	status(t, false)

	// settings do not exist until set up
	req, rec := newRequest(http.MethodGet, "/api/settings")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)}, rec)

	setupReq := catalog.SetupRequest{
		SiteName:             "Safari Study Abroad",
		Tagline:              "Your path to a degree abroad",
		ContactEmail:         "Hello@Safari.test",
		PrimaryColor:         "#0A7E5C",
		OwnerName:            "Neema Owner",
		OwnerEmail:           "owner@safari.test",
		OwnerPassword:        "Kil1m@njaro!",
		OwnerPasswordConfirm: "Kil1m@njaro!",
	}

	t.Run("invalid request", func(t *testing.T) {
		bad := setupReq
		bad.SiteName = ""
		bad.OwnerPasswordConfirm = "different"
		req, rec := newRequest(http.MethodPost, "/api/setup", marshalObj(t, bad))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		var flds map[string]string
		decode(t, rec, &flds)
		assert.Contains(t, flds, "site_name")
		assert.Contains(t, flds, "owner_password_confirm")
		status(t, false)
	})

	t.Run("set up", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/setup", marshalObj(t, setupReq))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.SetupResponse
		decode(t, rec, &resp)
		assert.Equal(t, catalog.SettingsID, resp.Settings.ID)
		assert.Equal(t, "hello@safari.test", resp.Settings.ContactEmail)
		assert.Equal(t, "#0a7e5c", resp.Settings.PrimaryColor)
		assert.Equal(t, []string{user.RoleAdminOwner}, resp.Owner.Roles)
		assert.NotContains(t, rec.Body.String(), "Kil1m@njaro!")
		status(t, true)
	})

	t.Run("only once", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/setup", marshalObj(t, setupReq))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: catalog.ErrAlreadySetUp.Error()})}, rec)
	})

	t.Run("owner can log in", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/users/login", marshalObj(t, echoapi.LoginRequest{Username: setupReq.OwnerEmail, Password: setupReq.OwnerPassword}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func Test_settingsApi_update(t *testing.T) {
	app := setup(t)

	_, _, err := svcs.Setup.Run(t.Context(), catalog.SetupRequest{
		SiteName:             "Safari",
		ContactEmail:         "hello@safari.test",
		OwnerName:            "Owner",
		OwnerEmail:           "owner@safari.test",
		OwnerPassword:        "Kil1m@njaro!",
		OwnerPasswordConfirm: "Kil1m@njaro!",
	})
	require.NoError(t, err)

	admin := createUser(t, "Admin", "admin", "admin@safari.test", "", []string{user.RoleAdmin}, true)
	editor := createUser(t, "Editor", "editor", "editor@safari.test", "", []string{user.RoleStaffEditor}, true)

	updated := catalog.SiteSettings{
		SiteName:     "Safari Study Abroad",
		ContactEmail: "team@safari.test",
		SocialLinks:  []catalog.SocialLink{{Network: "instagram", URL: "https://instagram.com/safari"}},
	}

	tests := []httpTest{
		{name: "Auth required", body: marshalObj(t, updated), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errAuthRequired)},
		{name: "Admin required", body: marshalObj(t, updated), token: getToken(t, app, editor), wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{
			name: "invalid social link", token: getToken(t, app, admin), wantCode: http.StatusBadRequest,
			body: marshalObj(t, catalog.SiteSettings{SiteName: "Safari", ContactEmail: "team@safari.test", SocialLinks: []catalog.SocialLink{{Network: "x", URL: "nope"}}}),
		},
		{name: "updated", body: marshalObj(t, updated), token: getToken(t, app, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		tt.path = "/api/settings"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// public read
	req, rec := newRequest(http.MethodGet, "/api/settings")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var got catalog.SiteSettings
	decode(t, rec, &got)
	assert.Equal(t, "Safari Study Abroad", got.SiteName)
	assert.Equal(t, "team@safari.test", got.ContactEmail)
	assert.Equal(t, updated.SocialLinks, got.SocialLinks)
}
