package catalog

import (
	"github.com/trezcool/safari/core"
	w "github.com/trezcool/safari/core/wizard"
)

// Steps of the back-office wizards, one list per collection.

func PageSteps() []w.Step[Page] {
	return []w.Step[Page]{
		{ID: "basics", Label: "Basics", Fields: []w.Field{
			{Name: "title", Label: "Title", Kind: w.Text, Required: true},
			{Name: "slug", Label: "Slug", Kind: w.Text, Help: "derived from the title when left untouched"},
		}},
		{ID: "content", Label: "Content", Fields: []w.Field{
			{Name: "content", Label: "Content", Kind: w.Markdown, Required: true},
		}},
		{ID: "publish", Label: "Publish", Fields: []w.Field{
			{Name: "published", Label: "Published", Kind: w.Bool},
		}},
	}
}

func UniversitySteps() []w.Step[University] {
	return []w.Step[University]{
		{ID: "identity", Label: "Identity", Fields: []w.Field{
			{Name: "name", Label: "Name", Kind: w.Text, Required: true},
			{Name: "slug", Label: "Slug", Kind: w.Text},
			{Name: "country", Label: "Country", Kind: w.Text, Required: true},
			{Name: "city", Label: "City", Kind: w.Text},
		}},
		{ID: "profile", Label: "Profile", Fields: []w.Field{
			{Name: "ranking", Label: "World ranking", Kind: w.Number},
			{Name: "description", Label: "Description", Kind: w.Markdown},
			{Name: "logo_url", Label: "Logo URL", Kind: w.Text},
			{Name: "website", Label: "Website", Kind: w.Text},
			{Name: "featured", Label: "Featured", Kind: w.Bool},
		}},
	}
}

func ProgramSteps() []w.Step[Program] {
	return []w.Step[Program]{
		{ID: "basics", Label: "Basics", Fields: []w.Field{
			{Name: "university_id", Label: "University", Kind: w.Text, Required: true},
			{Name: "title", Label: "Title", Kind: w.Text, Required: true},
			{Name: "slug", Label: "Slug", Kind: w.Text},
			{Name: "level", Label: "Level", Kind: w.Select, Options: ProgramLevels, Required: true},
			{Name: "discipline", Label: "Discipline", Kind: w.Text, Required: true},
			{Name: "country", Label: "Country", Kind: w.Text, Required: true},
		}},
		{ID: "terms", Label: "Duration & fees", Fields: []w.Field{
			{Name: "duration_months", Label: "Duration (months)", Kind: w.Number, Required: true},
			{Name: "tuition_fee", Label: "Tuition fee", Kind: w.Number},
			{Name: "currency", Label: "Currency", Kind: w.Text, Help: "ISO code, e.g. GBP"},
		}},
		{ID: "details", Label: "Details", Fields: []w.Field{
			{Name: "description", Label: "Description", Kind: w.Markdown},
			{Name: "featured", Label: "Featured", Kind: w.Bool},
		}},
	}
}

func CourseSteps() []w.Step[Course] {
	return []w.Step[Course]{
		{ID: "basics", Label: "Basics", Fields: []w.Field{
			{Name: "title", Label: "Title", Kind: w.Text, Required: true},
			{Name: "slug", Label: "Slug", Kind: w.Text},
			{Name: "category", Label: "Category", Kind: w.Text, Required: true},
			{Name: "level", Label: "Level", Kind: w.Select, Options: CourseLevels, Required: true},
		}},
		{ID: "pricing", Label: "Pricing", Fields: []w.Field{
			{Name: "price", Label: "Price", Kind: w.Number},
			{Name: "duration_weeks", Label: "Duration (weeks)", Kind: w.Number},
			{Name: "description", Label: "Description", Kind: w.Markdown},
		}},
		{
			ID: "curriculum", Label: "Curriculum",
			Fields: []w.Field{{Name: "modules", Label: "Modules", Kind: w.Groups, Required: true}},
			Check: func(c *Course) error {
				if len(c.Modules) == 0 {
					return requiredGroups("modules", "add at least one module")
				}
				return nil
			},
		},
		{ID: "publish", Label: "Publish", Fields: []w.Field{
			{Name: "published", Label: "Published", Kind: w.Bool},
		}},
	}
}

func TestSteps() []w.Step[Test] {
	return []w.Step[Test]{
		{ID: "basics", Label: "Basics", Fields: []w.Field{
			{Name: "title", Label: "Title", Kind: w.Text, Required: true},
			{Name: "slug", Label: "Slug", Kind: w.Text},
			{Name: "exam", Label: "Exam", Kind: w.Select, Options: Exams, Required: true},
			{Name: "duration_minutes", Label: "Duration (minutes)", Kind: w.Number, Required: true},
			{Name: "pass_mark", Label: "Pass mark", Kind: w.Number},
		}},
		{
			ID: "sections", Label: "Sections",
			Fields: []w.Field{{Name: "sections", Label: "Sections", Kind: w.Groups, Required: true}},
			Check: func(t *Test) error {
				if len(t.Sections) == 0 {
					return requiredGroups("sections", "add at least one section")
				}
				if t.PassMark > t.TotalPoints() {
					return core.NewValidationError(nil, core.FieldError{
						Field: "pass_mark", Error: "cannot exceed the total points of the questions",
					})
				}
				return nil
			},
		},
		{ID: "publish", Label: "Publish", Fields: []w.Field{
			{Name: "description", Label: "Description", Kind: w.Markdown},
			{Name: "published", Label: "Published", Kind: w.Bool},
		}},
	}
}

func EventSteps() []w.Step[Event] {
	return []w.Step[Event]{
		{ID: "basics", Label: "Basics", Fields: []w.Field{
			{Name: "title", Label: "Title", Kind: w.Text, Required: true},
			{Name: "slug", Label: "Slug", Kind: w.Text},
			{Name: "kind", Label: "Kind", Kind: w.Select, Options: EventKinds, Required: true},
		}},
		{ID: "schedule", Label: "Schedule", Fields: []w.Field{
			{Name: "starts_at", Label: "Starts at", Kind: w.DateTime, Required: true},
			{Name: "ends_at", Label: "Ends at", Kind: w.DateTime, Required: true},
		}},
		{ID: "venue", Label: "Venue", Fields: []w.Field{
			{Name: "online", Label: "Online", Kind: w.Bool},
			{Name: "location", Label: "Location", Kind: w.Text, Help: "required unless online"},
			{Name: "capacity", Label: "Capacity", Kind: w.Number},
			{Name: "registration_url", Label: "Registration URL", Kind: w.Text},
			{Name: "description", Label: "Description", Kind: w.Markdown},
		}},
	}
}

func HeroSlideSteps() []w.Step[HeroSlide] {
	return []w.Step[HeroSlide]{
		{ID: "slide", Label: "Slide", Fields: []w.Field{
			{Name: "title", Label: "Title", Kind: w.Text, Required: true},
			{Name: "subtitle", Label: "Subtitle", Kind: w.Text},
			{Name: "image_url", Label: "Image URL", Kind: w.Text, Required: true},
		}},
		{ID: "call-to-action", Label: "Call to action", Fields: []w.Field{
			{Name: "cta_label", Label: "Button label", Kind: w.Text},
			{Name: "cta_url", Label: "Button link", Kind: w.Text},
			{Name: "order_index", Label: "Position", Kind: w.Number},
			{Name: "active", Label: "Active", Kind: w.Bool},
		}},
	}
}

// BookingSteps are the steps of the public appointment wizard. slots are the bookable times of day.
func BookingSteps(slots []string) []w.Step[Appointment] {
	return []w.Step[Appointment]{
		{ID: "contact", Label: "Your details", Fields: []w.Field{
			{Name: "full_name", Label: "Full name", Kind: w.Text, Required: true},
			{Name: "email", Label: "Email", Kind: w.Email, Required: true},
			{Name: "phone", Label: "Phone", Kind: w.Text, Help: "international format, e.g. +243812345678"},
		}},
		{ID: "plans", Label: "Your plans", Fields: []w.Field{
			{Name: "destination_country", Label: "Destination", Kind: w.Text},
			{Name: "study_level", Label: "Study level", Kind: w.Select, Options: ProgramLevels},
			{Name: "message", Label: "Message", Kind: w.TextArea},
		}},
		{
			ID: "schedule", Label: "Pick a time",
			Fields: []w.Field{
				{Name: "preferred_date", Label: "Date", Kind: w.Date, Required: true},
				{Name: "time_slot", Label: "Time", Kind: w.Select, Options: slots, Required: true},
			},
			Check: func(a *Appointment) error {
				for _, s := range slots {
					if s == a.TimeSlot {
						return nil
					}
				}
				return core.NewValidationError(nil, core.FieldError{Field: "time_slot", Error: errUnknownSlot})
			},
		},
	}
}

func SetupSteps() []w.Step[SetupRequest] {
	return []w.Step[SetupRequest]{
		{ID: "site", Label: "Your site", Fields: []w.Field{
			{Name: "site_name", Label: "Site name", Kind: w.Text, Required: true},
			{Name: "tagline", Label: "Tagline", Kind: w.Text},
			{Name: "primary_color", Label: "Brand color", Kind: w.Text, Help: "hex, e.g. #0f766e"},
		}},
		{ID: "contact", Label: "Contact", Fields: []w.Field{
			{Name: "contact_email", Label: "Contact email", Kind: w.Email, Required: true},
			{Name: "contact_phone", Label: "Contact phone", Kind: w.Text},
		}},
		{ID: "owner", Label: "Owner account", Fields: []w.Field{
			{Name: "owner_name", Label: "Name", Kind: w.Text, Required: true},
			{Name: "owner_email", Label: "Email", Kind: w.Email, Required: true},
			{Name: "owner_password", Label: "Password", Kind: w.Text, Required: true},
			{Name: "owner_password_confirm", Label: "Confirm password", Kind: w.Text, Required: true},
		}},
	}
}

func requiredGroups(field, msg string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
}
