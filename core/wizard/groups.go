package wizard

import (
	"strings"

	"github.com/google/uuid"
)

const tempIDPrefix = "tmp-"

// Grouped drafts hold one nested one-to-many block, e.g. course modules with their lessons.
// Order indexes are sort keys: removals leave gaps and nothing is renumbered.
type Grouped interface {
	GroupCount() int
	// AppendGroup appends an empty group with the given id and order index.
	AppendGroup(id string, orderIndex int)
	DropGroup(id string) bool
	// AppendItem appends an empty item at the end of the group; false if the group is unknown.
	AppendItem(groupID, itemID string) bool
	// DropItem returns (groupFound, itemFound).
	DropItem(groupID, itemID string) (bool, bool)
}

// TempID returns a client side id, stable for the session, replaced by the server on save.
func TempID() string {
	return tempIDPrefix + uuid.NewString()
}

func IsTempID(id string) bool {
	return id == "" || strings.HasPrefix(id, tempIDPrefix)
}

// AddGroup appends a group with a temporary id and order index equal to the current group count.
func (c *Controller[T]) AddGroup() (string, error) {
	id := TempID()
	err := c.apply(func(draft *T) error {
		g, ok := any(draft).(Grouped)
		if !ok {
			return ErrNotGrouped
		}
		g.AppendGroup(id, g.GroupCount())
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *Controller[T]) RemoveGroup(groupID string) error {
	return c.apply(func(draft *T) error {
		g, ok := any(draft).(Grouped)
		if !ok {
			return ErrNotGrouped
		}
		if !g.DropGroup(groupID) {
			return ErrGroupNotFound
		}
		return nil
	})
}

func (c *Controller[T]) AddItem(groupID string) (string, error) {
	id := TempID()
	err := c.apply(func(draft *T) error {
		g, ok := any(draft).(Grouped)
		if !ok {
			return ErrNotGrouped
		}
		if !g.AppendItem(groupID, id) {
			return ErrGroupNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *Controller[T]) RemoveItem(groupID, itemID string) error {
	return c.apply(func(draft *T) error {
		g, ok := any(draft).(Grouped)
		if !ok {
			return ErrNotGrouped
		}
		groupFound, itemFound := g.DropItem(groupID, itemID)
		if !groupFound {
			return ErrGroupNotFound
		}
		if !itemFound {
			return ErrItemNotFound
		}
		return nil
	})
}
