package core

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Annual University Fair 2025!", want: "annual-university-fair-2025"},
		{in: "About Us", want: "about-us"},
		{in: "  IELTS   Prep -- Week 1  ", want: "ielts-prep-week-1"},
		{in: "---Leading and trailing---", want: "leading-and-trailing"},
		{in: "Études à Paris", want: "tudes-paris"},
		{in: "C++ & Go", want: "c-go"},
		{in: "tab\tand\nnewline", want: "tab-and-newline"},
		{in: "!!!", want: ""},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugify_Properties(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9-]*$`)
	inputs := []string{
		"Annual University Fair 2025!", "a - b", "-", "--a--", "Ünïcödé title", "MiXeD CaSe_with_underscores",
		"emoji 🎓 graduation", "  ", "x y", "1. Intro", "a--b---c", "slug-already-ok",
	}
	for _, s := range inputs {
		got := Slugify(s)
		assert.Equal(t, got, Slugify(got), "not idempotent for %q", s)
		assert.Regexp(t, valid, got, "invalid chars for %q", s)
		if got != "" {
			assert.NotEqual(t, '-', rune(got[0]), "leading hyphen for %q", s)
			assert.NotEqual(t, '-', rune(got[len(got)-1]), "trailing hyphen for %q", s)
		}
		assert.NotContains(t, got, "--", "repeated hyphen for %q", s)
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Hello", CleanString("  Hello \n"))
	assert.Equal(t, "hello", CleanString("  HeLLo ", true))
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "modules[0].title", FieldPath("Course.modules[0].title"))
	assert.Equal(t, "title", FieldPath("Page.title"))
	assert.Equal(t, "modules", TopField("modules[0].title"))
	assert.Equal(t, "title", TopField("title"))
	assert.Equal(t, "owner", TopField("owner.email"))
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, PerPage: 12, Total: 0, TotalPages: 1}, NewPagination(0, 12, 0))
	assert.Equal(t, Pagination{Page: 2, PerPage: 12, Total: 25, TotalPages: 3}, NewPagination(2, 12, 25))
	assert.Equal(t, Pagination{Page: 1, PerPage: 10, Total: 10, TotalPages: 1}, NewPagination(1, 10, 10))
}

func TestListSpec_CleanOrdering(t *testing.T) {
	spec := ListSpec{
		Orderable:    []string{"title", "created_at"},
		DefaultOrder: []DBOrdering{{Field: "created_at"}},
	}
	assert.Equal(t, []DBOrdering{{Field: "title", Ascending: true}},
		spec.CleanOrdering([]DBOrdering{{Field: "title", Ascending: true}, {Field: "password; DROP TABLE x"}}))
	assert.Equal(t, spec.DefaultOrder, spec.CleanOrdering(nil))
	assert.Equal(t, "created_at DESC", DBOrdering{Field: "created_at"}.String())
}
