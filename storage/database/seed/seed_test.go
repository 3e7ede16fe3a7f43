package seed

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	emailsvc "github.com/trezcool/safari/services/email"
	inmemdb "github.com/trezcool/safari/storage/database/inmem"
)

func newServices() *catalog.Services {
	conf := core.NewTestConfig()
	validate, translator := catalog.NewValidator()
	return catalog.NewServices(
		conf, inmemdb.NewRepositories(inmemdb.Open()), emailsvc.NewConsoleServiceMock(conf),
		validate, translator, core.NopLogger(),
	)
}

func TestRun_Default(t *testing.T) {
	ctx := context.Background()
	svcs := newServices()

	f, err := LoadDefault()
	require.NoError(t, err)

	report, err := Run(ctx, svcs, f, core.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, Report{
		catalog.Settings:     1,
		catalog.Universities: 3,
		catalog.Programs:     3,
		catalog.Courses:      1,
		catalog.Tests:        1,
		catalog.Pages:        2,
		catalog.HeroSlides:   1,
	}, report)

	prog, err := svcs.Programs.Get(ctx, "msc-data-science")
	require.NoError(t, err)
	uni, err := svcs.Universities.Get(ctx, prog.UniversityID)
	require.NoError(t, err)
	assert.Equal(t, "university-of-manchester", uni.Slug)

	page, err := svcs.Pages.Get(ctx, "about-us")
	require.NoError(t, err)
	assert.Contains(t, page.Content, "# About Safari")

	// seeding again is a no-op
	report, err = Run(ctx, svcs, f, core.NopLogger())
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestRun_InvalidRecord(t *testing.T) {
	fsys := fstest.MapFS{
		"seed.yaml": {Data: []byte("pages:\n  - title: Empty\n")},
	}
	f, err := Load(fsys, "seed.yaml")
	require.NoError(t, err)

	_, err = Run(context.Background(), newServices(), f, core.NopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seeding pages")
	assert.Contains(t, err.Error(), "content")
}

func TestRun_UnknownUniversity(t *testing.T) {
	fsys := fstest.MapFS{
		"seed.yaml": {Data: []byte("programs:\n  - university: nowhere\n    title: MBA\n")},
	}
	f, err := Load(fsys, "seed.yaml")
	require.NoError(t, err)

	_, err = Run(context.Background(), newServices(), f, core.NopLogger())
	assert.Equal(t, core.ErrNotFound, errors.Cause(err))
}
