// Package seed loads demo catalog records from YAML files.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	appfs "github.com/trezcool/safari/fs"
)

const DefaultFile = "seeds/catalog.yaml"

type record = map[string]interface{}

// File mirrors a seed file. Records use the JSON field names of the API;
// programs name their university by slug under "university".
type File struct {
	Settings     record   `yaml:"settings"`
	Universities []record `yaml:"universities"`
	Programs     []record `yaml:"programs"`
	Courses      []record `yaml:"courses"`
	Tests        []record `yaml:"tests"`
	Events       []record `yaml:"events"`
	Pages        []record `yaml:"pages"`
	HeroSlides   []record `yaml:"hero_slides"`
}

// Report counts the records created per collection.
type Report map[string]int

func Load(fsys fs.FS, path string) (*File, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var f File
	if err = yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &f, nil
}

// LoadDefault loads the seed file embedded in the binary.
func LoadDefault() (*File, error) {
	return Load(appfs.FS, DefaultFile)
}

// Run creates the records of f that do not exist yet; it can be run repeatedly.
// Sluggable records are matched by slug, the others are only seeded into an empty collection.
func Run(ctx context.Context, svcs *catalog.Services, f *File, logger core.Logger) (Report, error) {
	report := make(Report)

	if f.Settings != nil {
		_, err := svcs.Settings.Get(ctx, catalog.SettingsID)
		switch errors.Cause(err) {
		case core.ErrNotFound:
			if _, err = seedOne(ctx, svcs.Settings, f.Settings); err != nil {
				return report, errors.Wrap(err, "seeding settings")
			}
			report[catalog.Settings]++
		case nil:
		default:
			return report, errors.Wrap(err, "getting settings")
		}
	}

	steps := []struct {
		name string
		run  func() (int, error)
	}{
		{catalog.Universities, func() (int, error) { return seedAll(ctx, svcs.Universities, f.Universities, nil) }},
		{catalog.Programs, func() (int, error) {
			return seedAll(ctx, svcs.Programs, f.Programs, universityResolver(ctx, svcs))
		}},
		{catalog.Courses, func() (int, error) { return seedAll(ctx, svcs.Courses, f.Courses, nil) }},
		{catalog.Tests, func() (int, error) { return seedAll(ctx, svcs.Tests, f.Tests, nil) }},
		{catalog.Events, func() (int, error) { return seedAll(ctx, svcs.Events, f.Events, nil) }},
		{catalog.Pages, func() (int, error) { return seedAll(ctx, svcs.Pages, f.Pages, nil) }},
		{catalog.HeroSlides, func() (int, error) { return seedAll(ctx, svcs.HeroSlides, f.HeroSlides, nil) }},
	}
	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			return report, errors.Wrapf(err, "seeding %s", step.name)
		}
		if n > 0 {
			report[step.name] = n
			logger.Info(fmt.Sprintf("seeded %d %s", n, step.name))
		}
	}
	return report, nil
}

func seedAll[T any, PT catalog.EntityPtr[T]](
	ctx context.Context,
	svc *catalog.Service[T, PT],
	records []record,
	prepare func(record) error,
) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var zero T
	if _, sluggable := any(PT(&zero)).(catalog.Sluggable); !sluggable {
		page, err := svc.List(ctx, core.ListQuery{Page: 1, PerPage: 1})
		if err != nil {
			return 0, err
		}
		if page.Pagination.Total > 0 {
			return 0, nil
		}
	}

	var created int
	for i, rec := range records {
		if prepare != nil {
			if err := prepare(rec); err != nil {
				return created, errors.Wrapf(err, "record %d", i)
			}
		}
		ok, err := seedOne(ctx, svc, rec)
		if err != nil {
			return created, errors.Wrapf(err, "record %d", i)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// seedOne creates rec unless a record with the same slug exists.
func seedOne[T any, PT catalog.EntityPtr[T]](ctx context.Context, svc *catalog.Service[T, PT], rec record) (bool, error) {
	ent, err := decode[T](rec)
	if err != nil {
		return false, err
	}
	if s, ok := any(PT(&ent)).(catalog.Sluggable); ok {
		slug := s.GetSlug()
		if slug == "" {
			slug = core.Slugify(s.SlugSource())
		}
		_, err = svc.Get(ctx, slug)
		if err == nil {
			return false, nil
		}
		if errors.Cause(err) != core.ErrNotFound {
			return false, err
		}
	}
	if _, err = svc.Save(ctx, "", ent); err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			return false, errors.Errorf("invalid record: %v", vErr.FieldMap())
		}
		return false, err
	}
	return true, nil
}

// universityResolver replaces the "university" slug of a program by the university id.
func universityResolver(ctx context.Context, svcs *catalog.Services) func(record) error {
	return func(rec record) error {
		slug, ok := rec["university"].(string)
		if !ok {
			return nil
		}
		uni, err := svcs.Universities.Get(ctx, slug)
		if err != nil {
			return errors.Wrapf(err, "university %q", slug)
		}
		delete(rec, "university")
		rec["university_id"] = uni.ID
		return nil
	}
}

func decode[T any](rec record) (T, error) {
	var ent T
	data, err := json.Marshal(rec)
	if err != nil {
		return ent, errors.Wrap(err, "encoding record")
	}
	if err = json.Unmarshal(data, &ent); err != nil {
		return ent, errors.Wrap(err, "decoding record")
	}
	return ent, nil
}
