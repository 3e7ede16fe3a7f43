package catalog

import (
	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/wizard"
)

// Course levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

var CourseLevels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

type Lesson struct {
	ID              string `json:"id"`
	Title           string `json:"title" validate:"notblank,max=200"`
	Content         string `json:"content"`
	DurationMinutes int    `json:"duration_minutes" validate:"min=0"`
	OrderIndex      int    `json:"order_index"`
}

type Module struct {
	ID         string   `json:"id"`
	Title      string   `json:"title" validate:"notblank,max=200"`
	OrderIndex int      `json:"order_index"`
	Lessons    []Lesson `json:"lessons" validate:"dive"`
}

// Course is a language or test-prep course made of modules, each holding lessons.
type Course struct {
	Base
	Title         string   `json:"title" validate:"notblank,max=200"`
	Slug          string   `json:"slug" validate:"omitempty,slug,max=200"`
	Category      string   `json:"category" validate:"notblank"`
	Level         string   `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" validate:"min=0"`
	DurationWeeks int      `json:"duration_weeks" validate:"min=0"`
	Published     bool     `json:"published"`
	Modules       []Module `json:"modules" validate:"dive"`
}

func (c *Course) SlugSource() string { return c.Title }
func (c *Course) GetSlug() string    { return c.Slug }
func (c *Course) SetSlug(s string)   { c.Slug = s }

func (c *Course) Clean() {
	cleanStrings(&c.Title, &c.Category, &c.Description)
	c.Slug = core.CleanString(c.Slug, true /* lower */)
	c.Level = core.CleanString(c.Level, true /* lower */)
	for i := range c.Modules {
		m := &c.Modules[i]
		m.Title = core.CleanString(m.Title)
		for j := range m.Lessons {
			m.Lessons[j].Title = core.CleanString(m.Lessons[j].Title)
		}
	}
}

func (c *Course) AssignIDs(newID func() string) {
	for i := range c.Modules {
		m := &c.Modules[i]
		if wizard.IsTempID(m.ID) {
			m.ID = newID()
		}
		for j := range m.Lessons {
			if wizard.IsTempID(m.Lessons[j].ID) {
				m.Lessons[j].ID = newID()
			}
		}
	}
}

func moduleID(m *Module) string { return m.ID }
func lessonID(l *Lesson) string { return l.ID }

func (c *Course) GroupCount() int { return len(c.Modules) }

func (c *Course) AppendGroup(id string, orderIndex int) {
	c.Modules = append(c.Modules, Module{ID: id, OrderIndex: orderIndex, Lessons: []Lesson{}})
}

func (c *Course) DropGroup(id string) bool {
	var ok bool
	c.Modules, ok = removeByID(c.Modules, id, moduleID)
	return ok
}

func (c *Course) AppendItem(groupID, itemID string) bool {
	i := indexByID(c.Modules, groupID, moduleID)
	if i < 0 {
		return false
	}
	m := &c.Modules[i]
	m.Lessons = append(m.Lessons, Lesson{ID: itemID, OrderIndex: len(m.Lessons)})
	return true
}

func (c *Course) DropItem(groupID, itemID string) (bool, bool) {
	i := indexByID(c.Modules, groupID, moduleID)
	if i < 0 {
		return false, false
	}
	var ok bool
	c.Modules[i].Lessons, ok = removeByID(c.Modules[i].Lessons, itemID, lessonID)
	return true, ok
}

func (c *Course) IsPublic() bool { return c.Published }
