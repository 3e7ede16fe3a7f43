package logsvc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/safari/core/user"
)

func TestZapOutput(t *testing.T) {
	var buf bytes.Buffer
	l := RollbarLogger{zl: NewZapLogger(&buf, false)}

	l.Debug("hidden")
	l.Error("saving page", errors.New("boom"), user.User{ID: "u-1"}, map[string]interface{}{"collection": "pages"})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "saving page")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "u-1")
	assert.Contains(t, out, "pages")
}

func TestLocalLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLocalLogger(&buf, true)

	l.Debug("fetching courses")
	l.Warn("session expired")

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "fetching courses")
	assert.Contains(t, out, "WARN")
}
