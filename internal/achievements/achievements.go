// Package achievements unlocks pilot milestones from session snapshots.
package achievements

import "github.com/Ru51kXD/Likvi/internal/sim"

type Achievement struct {
	ID          string
	Name        string
	Description string
	condition   func(s *sim.VehicleState) bool
}

// Table is the fixed set of achievements in unlock-check order.
var Table = []Achievement{
	{ID: "first_flight", Name: "First flight", Description: "Climb to 10 m",
		condition: func(s *sim.VehicleState) bool { return s.Stats.MaxAltitude >= 10 }},
	{ID: "high_flyer", Name: "High flyer", Description: "Climb to 50 m",
		condition: func(s *sim.VehicleState) bool { return s.Stats.MaxAltitude >= 50 }},
	{ID: "speed_demon", Name: "Speed demon", Description: "Reach 50 km/h",
		condition: func(s *sim.VehicleState) bool { return s.Telemetry.SpeedKmh >= 50 }},
	{ID: "long_flight", Name: "Long flight", Description: "Stay airborne for 60 s",
		condition: func(s *sim.VehicleState) bool { return s.Stats.FlightTime >= 60 }},
	{ID: "explorer", Name: "Explorer", Description: "Get 500 m from the start",
		condition: func(s *sim.VehicleState) bool { return s.Stats.Distance >= 500 }},
	{ID: "survivor", Name: "Survivor", Description: "Fly 5 minutes without crashing",
		condition: func(s *sim.VehicleState) bool { return s.Stats.FlightTime >= 300 && !s.IsCrash() }},
}

// Tracker remembers what has been unlocked. Each achievement unlocks once.
type Tracker struct {
	unlocked map[string]bool
}

func NewTracker() *Tracker {
	return &Tracker{unlocked: make(map[string]bool)}
}

// Check returns the achievements newly unlocked by s.
func (t *Tracker) Check(s sim.VehicleState) []Achievement {
	var out []Achievement
	for _, a := range Table {
		if t.unlocked[a.ID] || !a.condition(&s) {
			continue
		}
		t.unlocked[a.ID] = true
		out = append(out, a)
	}
	return out
}

func (t *Tracker) Unlocked(id string) bool { return t.unlocked[id] }

func (t *Tracker) Count() int { return len(t.unlocked) }
