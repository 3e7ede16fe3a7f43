package catalog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/wizard"
	emailsvc "github.com/trezcool/safari/services/email"
	inmemdb "github.com/trezcool/safari/storage/database/inmem"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	conf    *core.Config
	mailSvc *emailsvc.ConsoleServiceMock
	svcs    *catalog.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conf := core.NewTestConfig()
	conf.AppointmentNotifyAddress = "counsellors@test.local"
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	validate, translator := catalog.NewValidator()
	svcs := catalog.NewServices(conf, inmemdb.NewRepositories(inmemdb.Open()), mailSvc, validate, translator, core.NopLogger())
	svcs.Pages.NowFunc = func() time.Time { return testNow }
	svcs.Courses.NowFunc = func() time.Time { return testNow }
	svcs.Appointments.NowFunc = func() time.Time { return testNow }
	return &testEnv{conf: conf, mailSvc: mailSvc, svcs: svcs}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "expected a validation error, got %v", err)
	return vErr.FieldMap()
}

func TestService_SaveDerivesSlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	page, err := env.svcs.Pages.Save(ctx, "", catalog.Page{Title: "  About   Us ", Content: "Who we are"})
	require.NoError(t, err)
	assert.NotEmpty(t, page.ID)
	assert.Equal(t, "About Us", page.Title)
	assert.Equal(t, "about-us", page.Slug)
	assert.Equal(t, testNow, page.CreatedAt)
	assert.Equal(t, testNow, page.UpdatedAt)

	got, err := env.svcs.Pages.Get(ctx, "about-us")
	require.NoError(t, err)
	assert.Equal(t, page.ID, got.ID)
}

func TestService_SaveDuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svcs.Pages.Save(ctx, "", catalog.Page{Title: "About Us", Content: "a"})
	require.NoError(t, err)

	_, err = env.svcs.Pages.Save(ctx, "", catalog.Page{Title: "About us", Content: "b"})
	flds := fieldErrors(t, err)
	assert.Equal(t, core.ErrSlugExists.Error(), flds["slug"])
}

func TestService_SaveUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	page, err := env.svcs.Pages.Save(ctx, "", catalog.Page{Title: "Visa Guidance", Content: "v1"})
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	env.svcs.Pages.NowFunc = func() time.Time { return later }

	// same slug on the same record is not a conflict
	page.Content = "v2"
	updated, err := env.svcs.Pages.Save(ctx, page.ID, page)
	require.NoError(t, err)
	assert.Equal(t, page.ID, updated.ID)
	assert.Equal(t, "v2", updated.Content)
	assert.Equal(t, testNow, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)

	// the id in the payload is ignored
	page.ID = "someone-else"
	updated, err = env.svcs.Pages.Save(ctx, "visa-guidance", page)
	require.NoError(t, err)
	assert.NotEqual(t, "someone-else", updated.ID)

	_, err = env.svcs.Pages.Save(ctx, "missing", page)
	assert.Equal(t, core.ErrNotFound, errors.Cause(err))
}

func TestService_SaveValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := catalog.Course{
		Title:    "IELTS Prep",
		Category: "language",
		Level:    "expert",
		Modules: []catalog.Module{
			{ID: wizard.TempID(), Title: "Listening", Lessons: []catalog.Lesson{{ID: wizard.TempID(), Title: " "}}},
		},
	}
	_, err := env.svcs.Courses.Save(ctx, "", course)
	flds := fieldErrors(t, err)
	assert.Contains(t, flds, "level")
	assert.Contains(t, flds, "modules[0].lessons[0].title")

	page, err := env.svcs.Pages.Save(ctx, "", catalog.Page{Title: "Bad", Slug: "Not A Slug!", Content: "x"})
	assert.Empty(t, page.ID)
	assert.Contains(t, fieldErrors(t, err), "slug")
}

func TestService_SaveAssignsNestedIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := catalog.Course{
		Title:    "IELTS Prep",
		Category: "language",
		Level:    catalog.LevelIntermediate,
		Modules: []catalog.Module{
			{ID: wizard.TempID(), Title: "Listening", Lessons: []catalog.Lesson{
				{ID: wizard.TempID(), Title: "Section 1"},
				{Title: "Section 2"},
			}},
		},
	}
	saved, err := env.svcs.Courses.Save(ctx, "", course)
	require.NoError(t, err)

	modID := saved.Modules[0].ID
	assert.False(t, wizard.IsTempID(modID))
	for _, l := range saved.Modules[0].Lessons {
		assert.False(t, wizard.IsTempID(l.ID))
	}

	// persistent ids survive later saves
	saved.Modules = append(saved.Modules, catalog.Module{ID: wizard.TempID(), Title: "Reading"})
	saved, err = env.svcs.Courses.Save(ctx, saved.ID, saved)
	require.NoError(t, err)
	require.Len(t, saved.Modules, 2)
	assert.Equal(t, modID, saved.Modules[0].ID)
	assert.False(t, wizard.IsTempID(saved.Modules[1].ID))
}

func TestService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	page, err := env.svcs.Pages.Save(ctx, "", catalog.Page{Title: "FAQ", Content: "x"})
	require.NoError(t, err)

	require.NoError(t, env.svcs.Pages.Delete(ctx, "faq"))
	_, err = env.svcs.Pages.Get(ctx, page.ID)
	assert.Equal(t, core.ErrNotFound, errors.Cause(err))
	assert.Equal(t, core.ErrNotFound, errors.Cause(env.svcs.Pages.Delete(ctx, page.ID)))
}

func TestService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, title := range []string{"Careers", "About Us", "Blog"} {
		_, err := env.svcs.Pages.Save(ctx, "", catalog.Page{Title: title, Content: title, Published: title != "Blog"})
		require.NoError(t, err)
	}

	page, err := env.svcs.Pages.List(ctx, core.ListQuery{
		Flags:   map[string]bool{"published": true},
		Page:    1,
		PerPage: 10,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "About Us", page.Items[0].Title)
	assert.Equal(t, "Careers", page.Items[1].Title)
	assert.Equal(t, 2, page.Pagination.Total)

	empty, err := env.svcs.Pages.List(ctx, core.ListQuery{Search: "nothing matches", Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestSettings_Singleton(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings := catalog.SiteSettings{SiteName: "Safari", ContactEmail: "Hello@Safari.test"}
	saved, err := env.svcs.Settings.Save(ctx, "", settings)
	require.NoError(t, err)
	assert.Equal(t, catalog.SettingsID, saved.ID)
	assert.Equal(t, "hello@safari.test", saved.ContactEmail)

	saved.Tagline = "Study anywhere"
	saved, err = env.svcs.Settings.Save(ctx, catalog.SettingsID, saved)
	require.NoError(t, err)
	assert.Equal(t, "Study anywhere", saved.Tagline)
}

func TestAppointments_Book(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	appt := catalog.Appointment{
		FullName:      "Neema Mwamba",
		Email:         "neema@test.cd",
		PreferredDate: "2026-03-05",
		TimeSlot:      "10:00",
		Status:        catalog.StatusConfirmed, // ignored
	}
	booked, err := env.svcs.Appointments.Book(ctx, appt)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusPending, booked.Status)

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, "neema@test.cd", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, env.svcs.Appointments.CancelToken(booked))
	assert.Equal(t, env.conf.AppointmentNotifyAddress, sent[1].To[0].Address)
}

func TestAppointments_BookInvalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		date      string
		slot      string
		wantField string
	}{
		{name: "past date", date: "2026-03-01", slot: "10:00", wantField: "preferred_date"},
		{name: "unknown slot", date: "2026-03-05", slot: "10:30", wantField: "time_slot"},
		{name: "malformed date", date: "05/03/2026", slot: "10:00", wantField: "preferred_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svcs.Appointments.Book(ctx, catalog.Appointment{
				FullName: "Neema", Email: "neema@test.cd", PreferredDate: tt.date, TimeSlot: tt.slot,
			})
			assert.Contains(t, fieldErrors(t, err), tt.wantField)
		})
	}
	assert.Empty(t, env.mailSvc.SentMessages())
}

func TestAppointments_Cancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booked, err := env.svcs.Appointments.Book(ctx, catalog.Appointment{
		FullName: "Neema", Email: "neema@test.cd", PreferredDate: "2026-03-05", TimeSlot: "09:00",
	})
	require.NoError(t, err)
	uid := core.EncodeUID(booked.ID)
	token := env.svcs.Appointments.CancelToken(booked)

	_, err = env.svcs.Appointments.Cancel(ctx, uid, "bad-token")
	assert.True(t, strings.Contains(err.Error(), "invalid or expired"), err)
	_, err = env.svcs.Appointments.Cancel(ctx, "bad-uid", token)
	assert.Error(t, err)

	cancelled, err := env.svcs.Appointments.Cancel(ctx, uid, token)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusCancelled, cancelled.Status)

	// the link is single use
	_, err = env.svcs.Appointments.Cancel(ctx, uid, token)
	assert.Error(t, err)
}

func TestSetup_Run(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	done, err := env.svcs.Setup.IsSetUp(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	req := catalog.SetupRequest{
		SiteName:             "Safari",
		ContactEmail:         "hello@safari.test",
		OwnerName:            "Amani Kabeya",
		OwnerEmail:           "amani@safari.test",
		OwnerPassword:        "Kilimanjaro#58",
		OwnerPasswordConfirm: "nope",
	}
	_, _, err = env.svcs.Setup.Run(ctx, req)
	assert.Contains(t, fieldErrors(t, err), "owner_password_confirm")

	req.OwnerPasswordConfirm = req.OwnerPassword
	settings, owner, err := env.svcs.Setup.Run(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, catalog.SettingsID, settings.ID)
	assert.True(t, owner.IsOwner())

	done, err = env.svcs.Setup.IsSetUp(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	_, _, err = env.svcs.Setup.Run(ctx, req)
	assert.Equal(t, catalog.ErrAlreadySetUp, err)
}
