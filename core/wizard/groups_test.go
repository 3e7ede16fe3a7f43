package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Groups(t *testing.T) {
	c := newCourseWizard(t, &fakeSync{})

	g1, err := c.AddGroup()
	require.NoError(t, err)
	g2, _ := c.AddGroup()
	g3, _ := c.AddGroup()
	assert.True(t, IsTempID(g1))
	assert.NotEqual(t, g1, g2)

	d := c.Draft()
	require.Len(t, d.Modules, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{d.Modules[0].OrderIndex, d.Modules[1].OrderIndex, d.Modules[2].OrderIndex})

	// removal leaves a gap; new groups go after the current count
	require.NoError(t, c.RemoveGroup(g2))
	g4, _ := c.AddGroup()
	d = c.Draft()
	require.Len(t, d.Modules, 3)
	assert.Equal(t, g1, d.Modules[0].ID)
	assert.Equal(t, 0, d.Modules[0].OrderIndex)
	assert.Equal(t, g3, d.Modules[1].ID)
	assert.Equal(t, 2, d.Modules[1].OrderIndex)
	assert.Equal(t, g4, d.Modules[2].ID)
	assert.Equal(t, 2, d.Modules[2].OrderIndex)

	assert.Equal(t, ErrGroupNotFound, c.RemoveGroup(g2))

	i1, err := c.AddItem(g3)
	require.NoError(t, err)
	i2, _ := c.AddItem(g3)
	d = c.Draft()
	require.Len(t, d.Modules[1].Lessons, 2)
	assert.Equal(t, 1, d.Modules[1].Lessons[1].OrderIndex)
	assert.Empty(t, d.Modules[0].Lessons, "items are scoped to their group")

	require.NoError(t, c.RemoveItem(g3, i1))
	d = c.Draft()
	require.Len(t, d.Modules[1].Lessons, 1)
	assert.Equal(t, i2, d.Modules[1].Lessons[0].ID)

	assert.Equal(t, ErrItemNotFound, c.RemoveItem(g3, i1))
	assert.Equal(t, ErrItemNotFound, c.RemoveItem(g1, i2))
	assert.Equal(t, ErrGroupNotFound, c.RemoveItem("missing", i2))
	_, err = c.AddItem("missing")
	assert.Equal(t, ErrGroupNotFound, err)
}

type flat struct {
	Name string `json:"name" validate:"required"`
}

func TestController_GroupsOnFlatDraft(t *testing.T) {
	c, err := New(Config[flat]{Steps: []Step[flat]{{ID: "only", Fields: []Field{{Name: "name"}}}}})
	require.NoError(t, err)
	_, err = c.AddGroup()
	assert.Equal(t, ErrNotGrouped, err)
}

func TestIsTempID(t *testing.T) {
	assert.True(t, IsTempID(TempID()))
	assert.True(t, IsTempID(""))
	assert.False(t, IsTempID("6f1c7c1e-4a0e-4d55-9d0b-3b2a5a1b2c3d"))
}
