// Package inmemdb keeps records in memory. It backs the tests and the API's -inmem mode.
package inmemdb

import (
	"sync"

	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/user"
)

type (
	DB struct {
		user *userTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
	}
}

// NewRepositories returns in-memory repositories for every collection.
func NewRepositories(db *DB) catalog.Repositories {
	return catalog.Repositories{
		Users:        NewUserRepository(db),
		Universities: NewTable[catalog.University](catalog.UniversitySpec),
		Programs:     NewTable[catalog.Program](catalog.ProgramSpec),
		Courses:      NewTable[catalog.Course](catalog.CourseSpec),
		Tests:        NewTable[catalog.Test](catalog.TestSpec),
		Events:       NewTable[catalog.Event](catalog.EventSpec),
		Pages:        NewTable[catalog.Page](catalog.PageSpec),
		HeroSlides:   NewTable[catalog.HeroSlide](catalog.HeroSlideSpec),
		Appointments: NewTable[catalog.Appointment](catalog.AppointmentSpec),
		Settings:     NewTable[catalog.SiteSettings](catalog.SettingsSpec),
	}
}
