package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type manualClock struct{ now time.Duration }

func (c *manualClock) Now() time.Duration { return c.now }

func TestTimer_IndependentResets(t *testing.T) {
	c := &manualClock{now: 5 * time.Second}
	stim := NewTimer(c)
	block := NewTimer(c)
	assert.Zero(t, stim.Elapsed())

	c.now += 2 * time.Second
	stim.Reset()
	c.now += 500 * time.Millisecond

	assert.Equal(t, 500*time.Millisecond, stim.Elapsed())
	assert.Equal(t, 2500*time.Millisecond, block.Elapsed())

	block.Reset()
	assert.Zero(t, block.Elapsed())
	assert.Equal(t, 500*time.Millisecond, stim.Elapsed())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "playback", StimulusPlayback.String())
	assert.Equal(t, "block_sync", BlockSync.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, Abort.Terminal())
	assert.True(t, SessionComplete.Terminal())
	assert.False(t, RecordCommit.Terminal())
}
