package catalog

import (
	"github.com/trezcool/safari/core"
)

// SettingsID is the id of the single SiteSettings record.
const SettingsID = "site"

type SocialLink struct {
	Network string `json:"network" validate:"notblank"`
	URL     string `json:"url" validate:"required,url"`
}

// SiteSettings is the site wide configuration edited from the back office.
type SiteSettings struct {
	Base
	SiteName     string       `json:"site_name" validate:"notblank,max=120"`
	Tagline      string       `json:"tagline" validate:"max=240"`
	ContactEmail string       `json:"contact_email" validate:"required,email"`
	ContactPhone string       `json:"contact_phone"`
	Address      string       `json:"address"`
	LogoURL      string       `json:"logo_url" validate:"omitempty,url"`
	PrimaryColor string       `json:"primary_color" validate:"omitempty,hexcolor"`
	AccentColor  string       `json:"accent_color" validate:"omitempty,hexcolor"`
	SocialLinks  []SocialLink `json:"social_links" validate:"dive"`
}

func (s *SiteSettings) Clean() {
	cleanStrings(&s.SiteName, &s.Tagline, &s.ContactPhone, &s.Address, &s.LogoURL)
	s.ContactEmail = core.CleanString(s.ContactEmail, true /* lower */)
	s.PrimaryColor = core.CleanString(s.PrimaryColor, true /* lower */)
	s.AccentColor = core.CleanString(s.AccentColor, true /* lower */)
	for i := range s.SocialLinks {
		cleanStrings(&s.SocialLinks[i].Network, &s.SocialLinks[i].URL)
	}
}

// SetupRequest is submitted once, by the setup wizard, to configure a fresh install.
type SetupRequest struct {
	SiteName             string `json:"site_name" validate:"notblank,max=120"`
	Tagline              string `json:"tagline" validate:"max=240"`
	ContactEmail         string `json:"contact_email" validate:"required,email"`
	ContactPhone         string `json:"contact_phone"`
	PrimaryColor         string `json:"primary_color" validate:"omitempty,hexcolor"`
	OwnerName            string `json:"owner_name" validate:"notblank"`
	OwnerEmail           string `json:"owner_email" validate:"required,email"`
	OwnerPassword        string `json:"owner_password" validate:"required"`
	OwnerPasswordConfirm string `json:"owner_password_confirm" validate:"eqfield=OwnerPassword"`
}

func (r *SetupRequest) Clean() {
	cleanStrings(&r.SiteName, &r.Tagline, &r.ContactPhone, &r.OwnerName)
	r.ContactEmail = core.CleanString(r.ContactEmail, true /* lower */)
	r.OwnerEmail = core.CleanString(r.OwnerEmail, true /* lower */)
	r.PrimaryColor = core.CleanString(r.PrimaryColor, true /* lower */)
}

func (r *SetupRequest) Settings() SiteSettings {
	return SiteSettings{
		Base:         Base{ID: SettingsID},
		SiteName:     r.SiteName,
		Tagline:      r.Tagline,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		PrimaryColor: r.PrimaryColor,
		SocialLinks:  []SocialLink{},
	}
}
