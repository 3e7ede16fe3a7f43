package catalog

import (
	"strings"

	"github.com/trezcool/safari/core"
)

// Program levels
const (
	LevelFoundation = "foundation"
	LevelDiploma    = "diploma"
	LevelBachelor   = "bachelor"
	LevelMaster     = "master"
	LevelPhD        = "phd"
)

var ProgramLevels = []string{LevelFoundation, LevelDiploma, LevelBachelor, LevelMaster, LevelPhD}

type University struct {
	Base
	Name        string `json:"name" validate:"notblank,max=200"`
	Slug        string `json:"slug" validate:"omitempty,slug,max=200"`
	Country     string `json:"country" validate:"notblank"`
	City        string `json:"city"`
	Ranking     int    `json:"ranking" validate:"min=0"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
	Website     string `json:"website" validate:"omitempty,url"`
	Featured    bool   `json:"featured"`
}

func (u *University) SlugSource() string { return u.Name }
func (u *University) GetSlug() string    { return u.Slug }
func (u *University) SetSlug(s string)   { u.Slug = s }

func (u *University) Clean() {
	cleanStrings(&u.Name, &u.Country, &u.City, &u.Description, &u.LogoURL, &u.Website)
	u.Slug = core.CleanString(u.Slug, true /* lower */)
}

type Program struct {
	Base
	UniversityID   string   `json:"university_id" validate:"required"`
	Title          string   `json:"title" validate:"notblank,max=200"`
	Slug           string   `json:"slug" validate:"omitempty,slug,max=200"`
	Level          string   `json:"level" validate:"required,oneof=foundation diploma bachelor master phd"`
	Discipline     string   `json:"discipline" validate:"notblank"`
	Country        string   `json:"country" validate:"notblank"`
	DurationMonths int      `json:"duration_months" validate:"min=1"`
	TuitionFee     float64  `json:"tuition_fee" validate:"min=0"`
	Currency       string   `json:"currency" validate:"omitempty,len=3,uppercase"`
	IntakeMonths   []string `json:"intake_months"`
	Description    string   `json:"description"`
	Featured       bool     `json:"featured"`
}

func (p *Program) SlugSource() string { return p.Title }
func (p *Program) GetSlug() string    { return p.Slug }
func (p *Program) SetSlug(s string)   { p.Slug = s }

func (p *Program) Clean() {
	cleanStrings(&p.UniversityID, &p.Title, &p.Discipline, &p.Country, &p.Description)
	p.Slug = core.CleanString(p.Slug, true /* lower */)
	p.Level = core.CleanString(p.Level, true /* lower */)
	p.Currency = strings.ToUpper(core.CleanString(p.Currency))
	months := p.IntakeMonths[:0]
	for _, m := range p.IntakeMonths {
		if m = core.CleanString(m); m != "" {
			months = append(months, m)
		}
	}
	p.IntakeMonths = months
}

// Page is a free-form content page ("About Us", "Visa Guidance"...). Content is markdown.
type Page struct {
	Base
	Title     string `json:"title" validate:"notblank,max=200"`
	Slug      string `json:"slug" validate:"omitempty,slug,max=200"`
	Content   string `json:"content" validate:"notblank"`
	Published bool   `json:"published"`
}

func (p *Page) SlugSource() string { return p.Title }
func (p *Page) GetSlug() string    { return p.Slug }
func (p *Page) SetSlug(s string)   { p.Slug = s }

func (p *Page) Clean() {
	p.Title = core.CleanString(p.Title)
	p.Slug = core.CleanString(p.Slug, true /* lower */)
}

// HeroSlide is one slide of the home page carousel, shown by OrderIndex.
type HeroSlide struct {
	Base
	Title      string `json:"title" validate:"notblank,max=120"`
	Subtitle   string `json:"subtitle" validate:"max=240"`
	ImageURL   string `json:"image_url" validate:"required,url"`
	CTALabel   string `json:"cta_label" validate:"required_with=CTAURL"`
	CTAURL     string `json:"cta_url" validate:"omitempty,url"`
	OrderIndex int    `json:"order_index" validate:"min=0"`
	Active     bool   `json:"active"`
}

func (h *HeroSlide) Clean() {
	cleanStrings(&h.Title, &h.Subtitle, &h.ImageURL, &h.CTALabel, &h.CTAURL)
}

func (p *Page) IsPublic() bool      { return p.Published }
func (h *HeroSlide) IsPublic() bool { return h.Active }
