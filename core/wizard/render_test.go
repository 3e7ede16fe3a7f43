package wizard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	draft := course{
		Title: "IELTS", Slug: "ielts", Level: "beginner", Price: 99.9, Published: true,
		Modules: []module{{ID: "m-1"}, {ID: "m-2"}},
	}
	errs := map[string]string{
		"price":             "must be positive",
		"modules[1].title":  "this field is required",
		"modules[0].lessons": "too short",
	}

	got := Render(draft, courseSteps[1], 1, 3, errs)
	want := View{
		StepID: "details", Label: "Details", Index: 1, Total: 3,
		Fields: []FieldView{
			{Field: courseSteps[1].Fields[0], Value: "beginner"},
			{Field: courseSteps[1].Fields[1], Value: "99.9", Error: "must be positive"},
			{Field: courseSteps[1].Fields[2], Value: "true"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.HasErrors())
	assert.False(t, got.IsFirst())
	assert.False(t, got.IsLast())

	curriculum := Render(draft, courseSteps[2], 2, 3, errs)
	assert.Equal(t, "2", curriculum.Fields[0].Value)
	assert.Equal(t, "modules[0].lessons: too short; modules[1].title: this field is required", curriculum.Fields[0].Error)
	assert.True(t, curriculum.IsLast())

	// pure: same input, same output, draft untouched
	assert.Equal(t, got, Render(draft, courseSteps[1], 1, 3, errs))
	assert.Equal(t, "IELTS", draft.Title)
}

func TestController_View(t *testing.T) {
	c := newCourseWizard(t, &fakeSync{})
	_ = c.Next()

	v := c.View()
	assert.Equal(t, "basics", v.StepID)
	assert.True(t, v.IsFirst())
	assert.Equal(t, "this field is required", v.Fields[0].Error)
	assert.Equal(t, "", v.Fields[1].Error)
}
