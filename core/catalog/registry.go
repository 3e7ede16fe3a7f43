package catalog

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/user"
)

// Repositories gathers one repository per collection, whatever the storage backend.
type Repositories struct {
	Users        user.Repository
	Universities Repository[University]
	Programs     Repository[Program]
	Courses      Repository[Course]
	Tests        Repository[Test]
	Events       Repository[Event]
	Pages        Repository[Page]
	HeroSlides   Repository[HeroSlide]
	Appointments Repository[Appointment]
	Settings     Repository[SiteSettings]
}

// Services gathers the services the API, the admin CLI and the seeder work with.
type Services struct {
	Users        user.Service
	Universities *Service[University, *University]
	Programs     *Service[Program, *Program]
	Courses      *Service[Course, *Course]
	Tests        *Service[Test, *Test]
	Events       *Service[Event, *Event]
	Pages        *Service[Page, *Page]
	HeroSlides   *Service[HeroSlide, *HeroSlide]
	Appointments *AppointmentService
	Settings     *Service[SiteSettings, *SiteSettings]
	Setup        *SetupService
}

func NewServices(
	conf *core.Config,
	repos Repositories,
	mailSvc core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *Services {
	svcs := &Services{
		Users:        user.NewService(conf, repos.Users, mailSvc, logger),
		Universities: NewService[University](repos.Universities, validate, translator, logger),
		Programs:     NewService[Program](repos.Programs, validate, translator, logger),
		Courses:      NewService[Course](repos.Courses, validate, translator, logger),
		Tests:        NewService[Test](repos.Tests, validate, translator, logger),
		Events:       NewService[Event](repos.Events, validate, translator, logger),
		Pages:        NewService[Page](repos.Pages, validate, translator, logger),
		HeroSlides:   NewService[HeroSlide](repos.HeroSlides, validate, translator, logger),
		Appointments: NewAppointmentService(conf, repos.Appointments, mailSvc, validate, translator, logger),
		Settings:     NewService[SiteSettings](repos.Settings, validate, translator, logger, WithFixedID(SettingsID)),
	}
	svcs.Setup = NewSetupService(svcs.Settings, svcs.Users, validate, translator, logger)
	return svcs
}
