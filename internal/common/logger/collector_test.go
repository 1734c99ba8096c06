package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsWarningsAndErrors(t *testing.T) {
	c := NewCollector(NewTestLogger(t))

	c.Debug("debug line", nil)
	c.Info("info line", map[string]interface{}{"k": 1})
	c.Warn("first warning", map[string]interface{}{"slideIndex": 2})
	c.Error("render failed", nil)

	events := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, LevelWarn, events[0].Level)
	assert.Equal(t, "first warning", events[0].Message)
	assert.Equal(t, 2, events[0].Fields["slideIndex"])
	assert.Equal(t, LevelError, events[1].Level)
	assert.Equal(t, 1, c.Warnings())
	assert.Equal(t, 1, c.Errors())
}

func TestCollector_DerivedLoggersShareEvents(t *testing.T) {
	c := NewCollector(NewNoOpLogger())

	child := c.WithFields(map[string]interface{}{"component": "fitter"})
	child.Warn("aspect fallback", map[string]interface{}{"path": "a.png"})
	c.WithError(errors.New("boom")).Error("write failed", nil)

	events := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "fitter", events[0].Fields["component"])
	assert.Equal(t, "a.png", events[0].Fields["path"])
	assert.Equal(t, "boom", events[1].Fields["error"])
}

func TestCollector_EventsReturnsCopy(t *testing.T) {
	c := NewCollector(nil)
	c.Warn("w", nil)

	events := c.Events()
	events[0].Message = "changed"

	assert.Equal(t, "w", c.Events()[0].Message)
}
