package main

import (
	"strconv"
	"strings"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/wizard"
)

// An outline lists one group per line; the item lines below a group start with "-".
//
//	Listening
//	- Note completion
//	- Maps and plans
//	Reading
//	- Skimming
type outlineGroup struct {
	title string
	items []string
}

func parseOutline(field, text string) ([]outlineGroup, error) {
	var groups []outlineGroup
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			if len(groups) == 0 {
				return nil, core.NewValidationError(nil, core.FieldError{
					Field: field,
					Error: "line " + strconv.Itoa(n+1) + ": an item needs a group line above it",
				})
			}
			g := &groups[len(groups)-1]
			g.items = append(g.items, strings.TrimSpace(line[1:]))
			continue
		}
		groups = append(groups, outlineGroup{title: line})
	}
	return groups, nil
}

func renderOutline(groups []outlineGroup) string {
	var b strings.Builder
	for _, g := range groups {
		b.WriteString(g.title + "\n")
		for _, it := range g.items {
			b.WriteString("- " + it + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// grouper is the group-editing half of a wizard.Controller.
type grouper interface {
	AddGroup() (string, error)
	RemoveGroup(groupID string) error
	AddItem(groupID string) (string, error)
	RemoveItem(groupID, itemID string) error
}

type groupIDs struct {
	id    string
	items []string
}

// reshape adds and removes groups and items, from the end, until the draft has the shape of want.
// Kept groups and items keep their ids, so an edited entity keeps its persisted ones.
func reshape(g grouper, have []groupIDs, want []outlineGroup) error {
	for i := len(want); i < len(have); i++ {
		if err := g.RemoveGroup(have[i].id); err != nil {
			return err
		}
	}
	if len(have) > len(want) {
		have = have[:len(want)]
	}
	for len(have) < len(want) {
		id, err := g.AddGroup()
		if err != nil {
			return err
		}
		have = append(have, groupIDs{id: id})
	}
	for i, grp := range have {
		for j := len(want[i].items); j < len(grp.items); j++ {
			if err := g.RemoveItem(grp.id, grp.items[j]); err != nil {
				return err
			}
		}
		for j := len(grp.items); j < len(want[i].items); j++ {
			if _, err := g.AddItem(grp.id); err != nil {
				return err
			}
		}
	}
	return nil
}

// courseOutline edits course modules (groups) and their lessons (items).
type courseOutline struct {
	ctl *wizard.Controller[catalog.Course]
}

func (o courseOutline) Text(string) string {
	draft := o.ctl.Draft()
	groups := make([]outlineGroup, 0, len(draft.Modules))
	for _, m := range draft.Modules {
		g := outlineGroup{title: m.Title}
		for _, l := range m.Lessons {
			g.items = append(g.items, l.Title)
		}
		groups = append(groups, g)
	}
	return renderOutline(groups)
}

func (o courseOutline) Apply(field, text string) error {
	want, err := parseOutline(field, text)
	if err != nil {
		return err
	}
	draft := o.ctl.Draft()
	have := make([]groupIDs, 0, len(draft.Modules))
	for _, m := range draft.Modules {
		ids := groupIDs{id: m.ID}
		for _, l := range m.Lessons {
			ids.items = append(ids.items, l.ID)
		}
		have = append(have, ids)
	}
	if err = reshape(o.ctl, have, want); err != nil {
		return err
	}
	o.ctl.Update(func(c *catalog.Course) {
		for i, g := range want {
			c.Modules[i].Title = g.title
			for j, title := range g.items {
				c.Modules[i].Lessons[j].Title = title
			}
		}
	})
	return nil
}

// testOutline edits test sections (groups) and their questions (items).
// A question line reads "prompt | option, option | answer | points"; only the prompt is required.
// Questions with options are single choice, the others free text.
type testOutline struct {
	ctl *wizard.Controller[catalog.Test]
}

func (o testOutline) Text(string) string {
	draft := o.ctl.Draft()
	groups := make([]outlineGroup, 0, len(draft.Sections))
	for _, s := range draft.Sections {
		g := outlineGroup{title: s.Title}
		for _, q := range s.Questions {
			g.items = append(g.items, formatQuestion(q))
		}
		groups = append(groups, g)
	}
	return renderOutline(groups)
}

func (o testOutline) Apply(field, text string) error {
	want, err := parseOutline(field, text)
	if err != nil {
		return err
	}
	draft := o.ctl.Draft()
	have := make([]groupIDs, 0, len(draft.Sections))
	for _, s := range draft.Sections {
		ids := groupIDs{id: s.ID}
		for _, q := range s.Questions {
			ids.items = append(ids.items, q.ID)
		}
		have = append(have, ids)
	}
	if err = reshape(o.ctl, have, want); err != nil {
		return err
	}
	o.ctl.Update(func(t *catalog.Test) {
		for i, g := range want {
			t.Sections[i].Title = g.title
			for j, line := range g.items {
				q := &t.Sections[i].Questions[j]
				parseQuestion(line, q)
			}
		}
	})
	return nil
}

func parseQuestion(line string, q *catalog.Question) {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	q.Prompt = parts[0]
	q.Kind = catalog.QuestionText
	q.Options = nil
	q.Answer = ""
	q.Points = 1
	if len(parts) > 1 && parts[1] != "" {
		for _, opt := range strings.Split(parts[1], ",") {
			if opt = strings.TrimSpace(opt); opt != "" {
				q.Options = append(q.Options, opt)
			}
		}
		if len(q.Options) > 0 {
			q.Kind = catalog.QuestionSingle
		}
	}
	if len(parts) > 2 {
		q.Answer = parts[2]
	}
	if len(parts) > 3 {
		if pts, err := strconv.Atoi(parts[3]); err == nil && pts >= 0 {
			q.Points = pts
		}
	}
}

func formatQuestion(q catalog.Question) string {
	parts := []string{q.Prompt, strings.Join(q.Options, ", "), q.Answer, strconv.Itoa(q.Points)}
	// drop trailing defaults
	if q.Points == 1 {
		parts = parts[:3]
		if q.Answer == "" {
			parts = parts[:2]
			if len(q.Options) == 0 {
				parts = parts[:1]
			}
		}
	}
	return strings.Join(parts, " | ")
}
