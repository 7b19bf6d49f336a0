package race

import "fmt"

type State int

const (
	Running State = iota
	RetiredMechanical
	RetiredIncident
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case RetiredMechanical:
		return "Retired (mechanical)"
	case RetiredIncident:
		return "Retired (incident)"
	case Finished:
		return "Finished"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) Retired() bool {
	return s == RetiredMechanical || s == RetiredIncident
}

type Incident int

const (
	NoIncident Incident = iota
	MechanicalFailure
	DriverError
	Collision
	Puncture
	WeatherRelated
)

func (i Incident) Description() string {
	switch i {
	case MechanicalFailure:
		return "Mechanical failure"
	case DriverError:
		return "Driver error, went off track"
	case Collision:
		return "Collision with another car"
	case Puncture:
		return "Puncture, slow lap to the pits"
	case WeatherRelated:
		return "Aquaplaned off in the wet"
	}
	return ""
}

// Terminal reports whether the incident ends the driver's race.
func (i Incident) Terminal() bool {
	return i != NoIncident && i != Puncture
}

type EventKind string

const (
	EventPitStop  EventKind = "pit"
	EventIncident EventKind = "incident"
	EventOvertake EventKind = "overtake"
)

// Event is an entry of the race log.
type Event struct {
	Lap      int
	Kind     EventKind
	DriverID string
	// Other is the driver passed in an overtake.
	Other    string
	Incident Incident
	Duration float64 // time lost in the pits, seconds
}

func (e Event) String() string {
	switch e.Kind {
	case EventPitStop:
		return fmt.Sprintf("Lap %d: %s pits (%.1fs)", e.Lap, e.DriverID, e.Duration)
	case EventOvertake:
		return fmt.Sprintf("Lap %d: %s passes %s", e.Lap, e.DriverID, e.Other)
	case EventIncident:
		return fmt.Sprintf("Lap %d: %s - %s", e.Lap, e.DriverID, e.Incident.Description())
	}
	return fmt.Sprintf("Lap %d: %s", e.Lap, e.DriverID)
}
