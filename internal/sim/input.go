package sim

// Key is a layout-independent key name as reported by the host.
type Key string

const (
	KeyQ     Key = "q"
	KeyE     Key = "e"
	KeyW     Key = "w"
	KeyS     Key = "s"
	KeyA     Key = "a"
	KeyD     Key = "d"
	KeyLeft  Key = "ArrowLeft"
	KeyRight Key = "ArrowRight"
)

// keyAliases maps upper case and the Cyrillic layout onto the control keys.
var keyAliases = map[Key]Key{
	"Q": KeyQ, "й": KeyQ, "Й": KeyQ,
	"E": KeyE, "у": KeyE, "У": KeyE,
	"W": KeyW, "ц": KeyW, "Ц": KeyW,
	"S": KeyS, "ы": KeyS, "Ы": KeyS,
	"A": KeyA, "ф": KeyA, "Ф": KeyA,
	"D": KeyD, "в": KeyD, "В": KeyD,
}

// Canonical returns the control key k stands for, or k itself.
func Canonical(k Key) Key {
	if c, ok := keyAliases[k]; ok {
		return c
	}
	return k
}

func IsControlKey(k Key) bool {
	switch Canonical(k) {
	case KeyQ, KeyE, KeyW, KeyS, KeyA, KeyD, KeyLeft, KeyRight:
		return true
	}
	return false
}

// KeySource reports which keys are held at sampling time.
type KeySource interface {
	Pressed(k Key) bool
}

// KeyState is a plain set of held keys. Aliases are folded on write.
type KeyState map[Key]bool

func (ks KeyState) Pressed(k Key) bool { return ks[Canonical(k)] }

func (ks KeyState) Set(k Key, down bool) {
	k = Canonical(k)
	if down {
		ks[k] = true
		return
	}
	delete(ks, k)
}

// Per-tick control deltas.
const (
	ThrottleRate = 0.025
	TiltRate     = 0.08
	YawRate      = 0.04
	Recenter     = 0.88
)

// InputSampler turns held keys into control setpoints once per tick.
type InputSampler struct {
	keys KeySource
}

func NewInputSampler(keys KeySource) *InputSampler {
	return &InputSampler{keys: keys}
}

// Sample reads the key source and writes controls through the store.
// While awaiting start any control key starts the flight and nothing else happens that tick.
// It returns true when the sample started a flight.
func (in *InputSampler) Sample(st *Store) bool {
	if in == nil || in.keys == nil {
		return false
	}
	s := st.State()
	switch s.Phase {
	case PhaseCrashed:
		return false
	case PhaseAwaitingStart:
		if in.anyControl() {
			return st.StartFlight() == nil
		}
		return false
	}

	k := in.keys
	c := s.Controls

	if k.Pressed(KeyQ) {
		st.SetThrottle(s.Controls.Throttle + ThrottleRate)
	}
	if k.Pressed(KeyE) {
		st.SetThrottle(s.Controls.Throttle - ThrottleRate)
	}

	pitch, roll, yaw := c.Pitch, c.Roll, c.Yaw
	fwd, back := k.Pressed(KeyW), k.Pressed(KeyS)
	left, right := k.Pressed(KeyA), k.Pressed(KeyD)
	yawL, yawR := k.Pressed(KeyLeft), k.Pressed(KeyRight)

	if fwd {
		pitch += TiltRate
	}
	if back {
		pitch -= TiltRate
	}
	if right {
		roll += TiltRate
	}
	if left {
		roll -= TiltRate
	}
	if yawL {
		yaw += YawRate
	}
	if yawR {
		yaw -= YawRate
	}

	if !fwd && !back {
		pitch *= Recenter
	}
	if !left && !right {
		roll *= Recenter
	}
	if !yawL && !yawR {
		yaw *= Recenter
	}

	st.SetPitch(pitch)
	st.SetRoll(roll)
	st.SetYaw(yaw)
	return false
}

func (in *InputSampler) anyControl() bool {
	for _, k := range []Key{KeyQ, KeyE, KeyW, KeyS, KeyA, KeyD, KeyLeft, KeyRight} {
		if in.keys.Pressed(k) {
			return true
		}
	}
	return false
}
