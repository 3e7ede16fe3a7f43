package catalog

import (
	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/wizard"
)

// Exams a mock test prepares for
var Exams = []string{"ielts", "toefl", "pte", "gre", "gmat", "sat", "duolingo"}

// Question kinds
const (
	QuestionSingle   = "single"
	QuestionMultiple = "multiple"
	QuestionText     = "text"
)

type Question struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt" validate:"notblank"`
	Kind       string   `json:"kind" validate:"required,oneof=single multiple text"`
	Options    []string `json:"options" validate:"required_unless=Kind text"`
	Answer     string   `json:"answer"`
	Points     int      `json:"points" validate:"min=0"`
	OrderIndex int      `json:"order_index"`
}

type Section struct {
	ID         string     `json:"id"`
	Title      string     `json:"title" validate:"notblank,max=200"`
	OrderIndex int        `json:"order_index"`
	Questions  []Question `json:"questions" validate:"dive"`
}

// Test is a mock exam made of sections, each holding questions.
type Test struct {
	Base
	Title           string    `json:"title" validate:"notblank,max=200"`
	Slug            string    `json:"slug" validate:"omitempty,slug,max=200"`
	Exam            string    `json:"exam" validate:"required,oneof=ielts toefl pte gre gmat sat duolingo"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=1"`
	PassMark        int       `json:"pass_mark" validate:"min=0"`
	Published       bool      `json:"published"`
	Sections        []Section `json:"sections" validate:"dive"`
}

func (t *Test) SlugSource() string { return t.Title }
func (t *Test) GetSlug() string    { return t.Slug }
func (t *Test) SetSlug(s string)   { t.Slug = s }

func (t *Test) Clean() {
	cleanStrings(&t.Title, &t.Description)
	t.Slug = core.CleanString(t.Slug, true /* lower */)
	t.Exam = core.CleanString(t.Exam, true /* lower */)
	for i := range t.Sections {
		s := &t.Sections[i]
		s.Title = core.CleanString(s.Title)
		for j := range s.Questions {
			q := &s.Questions[j]
			q.Prompt = core.CleanString(q.Prompt)
			q.Kind = core.CleanString(q.Kind, true /* lower */)
		}
	}
}

func (t *Test) AssignIDs(newID func() string) {
	for i := range t.Sections {
		s := &t.Sections[i]
		if wizard.IsTempID(s.ID) {
			s.ID = newID()
		}
		for j := range s.Questions {
			if wizard.IsTempID(s.Questions[j].ID) {
				s.Questions[j].ID = newID()
			}
		}
	}
}

// TotalPoints sums the points of every question.
func (t *Test) TotalPoints() int {
	var total int
	for _, s := range t.Sections {
		for _, q := range s.Questions {
			total += q.Points
		}
	}
	return total
}

func sectionID(s *Section) string   { return s.ID }
func questionID(q *Question) string { return q.ID }

func (t *Test) GroupCount() int { return len(t.Sections) }

func (t *Test) AppendGroup(id string, orderIndex int) {
	t.Sections = append(t.Sections, Section{ID: id, OrderIndex: orderIndex, Questions: []Question{}})
}

func (t *Test) DropGroup(id string) bool {
	var ok bool
	t.Sections, ok = removeByID(t.Sections, id, sectionID)
	return ok
}

func (t *Test) AppendItem(groupID, itemID string) bool {
	i := indexByID(t.Sections, groupID, sectionID)
	if i < 0 {
		return false
	}
	s := &t.Sections[i]
	s.Questions = append(s.Questions, Question{ID: itemID, Kind: QuestionSingle, Points: 1, OrderIndex: len(s.Questions)})
	return true
}

func (t *Test) DropItem(groupID, itemID string) (bool, bool) {
	i := indexByID(t.Sections, groupID, sectionID)
	if i < 0 {
		return false, false
	}
	var ok bool
	t.Sections[i].Questions, ok = removeByID(t.Sections[i].Questions, itemID, questionID)
	return true, ok
}

func (t *Test) IsPublic() bool { return t.Published }
