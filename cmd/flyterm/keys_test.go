package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ru51kXD/Likvi/internal/sim"
)

func TestHeldKeysExpire(t *testing.T) {
	now := time.Unix(0, 0)
	h := newHeldKeys()
	h.now = func() time.Time { return now }

	h.press("W")
	assert.True(t, h.Pressed(sim.KeyW))
	assert.True(t, h.Pressed("ц"))

	now = now.Add(100 * time.Millisecond)
	assert.True(t, h.Pressed(sim.KeyW))

	now = now.Add(60 * time.Millisecond)
	assert.False(t, h.Pressed(sim.KeyW))

	h.press(sim.KeyLeft)
	h.clear()
	assert.False(t, h.Pressed(sim.KeyLeft))
}
