package database

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	boiledrepos "github.com/trezcool/safari/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/safari/storage/database/sqlx"
)

const driverName = "postgres"

// Store is the PostgreSQL repository of one collection:
// sqlx does the record reads and writes, sqlboiler query mods build the list queries.
type Store[T any, PT catalog.EntityPtr[T]] struct {
	*sqlxrepos.Table[T, PT]
	*boiledrepos.Lister[T]
}

var _ catalog.Repository[catalog.Page] = (*Store[catalog.Page, *catalog.Page])(nil) // interface compliance check

func NewStore[T any, PT catalog.EntityPtr[T]](db *sqlx.DB, spec core.ListSpec) *Store[T, PT] {
	return &Store[T, PT]{
		Table:  sqlxrepos.NewTable[T, PT](db, spec.Table),
		Lister: boiledrepos.NewLister[T](db, spec, sqlxrepos.FromRow[T, PT]),
	}
}

func NewRepositories(db *sql.DB) catalog.Repositories {
	xdb := sqlx.NewDb(db, driverName)
	return catalog.Repositories{
		Users:        boiledrepos.NewUserRepository(db),
		Universities: NewStore[catalog.University](xdb, catalog.UniversitySpec),
		Programs:     NewStore[catalog.Program](xdb, catalog.ProgramSpec),
		Courses:      NewStore[catalog.Course](xdb, catalog.CourseSpec),
		Tests:        NewStore[catalog.Test](xdb, catalog.TestSpec),
		Events:       NewStore[catalog.Event](xdb, catalog.EventSpec),
		Pages:        NewStore[catalog.Page](xdb, catalog.PageSpec),
		HeroSlides:   NewStore[catalog.HeroSlide](xdb, catalog.HeroSlideSpec),
		Appointments: NewStore[catalog.Appointment](xdb, catalog.AppointmentSpec),
		Settings:     NewStore[catalog.SiteSettings](xdb, catalog.SettingsSpec),
	}
}
