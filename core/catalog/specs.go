package catalog

import (
	"github.com/trezcool/safari/core"
)

// Collection names, as used in API paths and by Remote Sync.
const (
	Universities = "universities"
	Programs     = "programs"
	Courses      = "courses"
	Tests        = "tests"
	Events       = "events"
	Pages        = "pages"
	HeroSlides   = "hero-slides"
	Appointments = "appointments"
	Settings     = "settings"
	Setup        = "setup"
)

var (
	asc  = func(f string) core.DBOrdering { return core.DBOrdering{Field: f, Ascending: true} }
	desc = func(f string) core.DBOrdering { return core.DBOrdering{Field: f} }

	UniversitySpec = core.ListSpec{
		Table:         "universities",
		SearchColumns: []string{"name", "city", "description"},
		SetFilters:    []string{"country"},
		RangeFilters:  []string{"ranking"},
		FlagFilters:   []string{"featured"},
		Facets:        []string{"country"},
		Orderable:     []string{"name", "ranking", "created_at"},
		DefaultOrder:  []core.DBOrdering{asc("name")},
	}

	ProgramSpec = core.ListSpec{
		Table:         "programs",
		SearchColumns: []string{"title", "discipline", "description"},
		SetFilters:    []string{"country", "level", "discipline", "university_id"},
		RangeFilters:  []string{"tuition_fee", "duration_months"},
		FlagFilters:   []string{"featured"},
		Facets:        []string{"country", "level", "discipline"},
		Orderable:     []string{"title", "tuition_fee", "duration_months", "created_at"},
		DefaultOrder:  []core.DBOrdering{asc("title")},
	}

	CourseSpec = core.ListSpec{
		Table:         "courses",
		SearchColumns: []string{"title", "category", "description"},
		SetFilters:    []string{"category", "level"},
		RangeFilters:  []string{"price", "duration_weeks"},
		FlagFilters:   []string{"published"},
		Facets:        []string{"category", "level"},
		Orderable:     []string{"title", "price", "created_at"},
		DefaultOrder:  []core.DBOrdering{asc("title")},
	}

	TestSpec = core.ListSpec{
		Table:         "tests",
		SearchColumns: []string{"title", "description"},
		SetFilters:    []string{"exam"},
		RangeFilters:  []string{"duration_minutes"},
		FlagFilters:   []string{"published"},
		Facets:        []string{"exam"},
		Orderable:     []string{"title", "duration_minutes", "created_at"},
		DefaultOrder:  []core.DBOrdering{asc("title")},
	}

	EventSpec = core.ListSpec{
		Table:         "events",
		SearchColumns: []string{"title", "description", "location"},
		SetFilters:    []string{"kind"},
		RangeFilters:  []string{"capacity"},
		FlagFilters:   []string{"online"},
		Facets:        []string{"kind"},
		Orderable:     []string{"starts_at", "title", "created_at"},
		DefaultOrder:  []core.DBOrdering{asc("starts_at")},
	}

	PageSpec = core.ListSpec{
		Table:         "pages",
		SearchColumns: []string{"title", "content"},
		FlagFilters:   []string{"published"},
		Orderable:     []string{"title", "updated_at"},
		DefaultOrder:  []core.DBOrdering{asc("title")},
	}

	HeroSlideSpec = core.ListSpec{
		Table:         "hero_slides",
		SearchColumns: []string{"title", "subtitle"},
		FlagFilters:   []string{"active"},
		Orderable:     []string{"order_index", "created_at"},
		DefaultOrder:  []core.DBOrdering{asc("order_index")},
		NumericFields: []string{"order_index"},
	}

	AppointmentSpec = core.ListSpec{
		Table:         "appointments",
		SearchColumns: []string{"full_name", "email", "phone"},
		SetFilters:    []string{"status", "time_slot", "destination_country", "study_level"},
		Facets:        []string{"status", "destination_country"},
		Orderable:     []string{"preferred_date", "created_at"},
		DefaultOrder:  []core.DBOrdering{desc("created_at")},
	}

	SettingsSpec = core.ListSpec{
		Table:        "site_settings",
		DefaultOrder: []core.DBOrdering{asc("created_at")},
	}
)

// PublicFlags names, per collection, the flag anonymous visitors are pinned to.
var PublicFlags = map[string]string{
	Courses:    "published",
	Tests:      "published",
	Pages:      "published",
	HeroSlides: "active",
}
