package main

import (
	"time"

	"github.com/Ru51kXD/Likvi/internal/sim"
)

// holdWindow is how long a key counts as held after its last press or repeat.
// Terminals report no key releases, so autorepeat keeps a key alive.
const holdWindow = 150 * time.Millisecond

type heldKeys struct {
	seen map[sim.Key]time.Time
	now  func() time.Time
}

func newHeldKeys() *heldKeys {
	return &heldKeys{seen: make(map[sim.Key]time.Time), now: time.Now}
}

func (h *heldKeys) press(k sim.Key) {
	h.seen[sim.Canonical(k)] = h.now()
}

func (h *heldKeys) Pressed(k sim.Key) bool {
	t, ok := h.seen[sim.Canonical(k)]
	return ok && h.now().Sub(t) < holdWindow
}

func (h *heldKeys) clear() {
	clear(h.seen)
}
