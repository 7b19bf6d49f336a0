package championship

import (
	"sort"
	"sync"

	"f1weekendsim/pkg/pubsub"
	"f1weekendsim/pkg/race"
	"f1weekendsim/pkg/registry"
)

const TopicRaceCompleted = "race.completed"

// Standing is one row of a championship table, for a driver or a team.
type Standing struct {
	Position int
	ID       string
	Name     string
	TeamID   string // drivers only
	Points   int
	Wins     int
	Podiums  int
	Races    int
}

// RaceCompleted is published once a result has been recorded.
type RaceCompleted struct {
	Round     int
	TrackID   string
	TrackName string
	Podium    []race.Entry
	Drivers   []Standing
	Teams     []Standing
}

// Leader returns the championship leader after the race.
func (e RaceCompleted) Leader() (Standing, bool) {
	if len(e.Drivers) == 0 {
		return Standing{}, false
	}
	return e.Drivers[0], true
}

type Tracker struct {
	mu      sync.Mutex
	reg     *registry.Registry
	ps      *pubsub.PubSub[RaceCompleted]
	races   int
	drivers map[string]*Standing
	teams   map[string]*Standing
}

// NewTracker creates an empty championship. ps may be nil when nobody
// listens for results.
func NewTracker(reg *registry.Registry, ps *pubsub.PubSub[RaceCompleted]) *Tracker {
	return &Tracker{
		reg:     reg,
		ps:      ps,
		drivers: map[string]*Standing{},
		teams:   map[string]*Standing{},
	}
}

// Record adds a race result to the standings.
func (t *Tracker) Record(res race.Result) {
	t.mu.Lock()
	t.races++
	teamsSeen := map[string]bool{}
	for _, e := range res.Classification {
		d := t.driver(e.DriverID, e.TeamID)
		d.Races++
		d.Points += e.Points
		tm := t.team(e.TeamID)
		if !teamsSeen[e.TeamID] {
			tm.Races++
			teamsSeen[e.TeamID] = true
		}
		tm.Points += e.Points
		if e.State != race.Finished {
			continue
		}
		if e.Position == 1 {
			d.Wins++
			tm.Wins++
		}
		if e.Position <= 3 {
			d.Podiums++
			tm.Podiums++
		}
	}

	event := RaceCompleted{
		Round:   t.races,
		TrackID: res.TrackID,
		Podium:  res.Podium(),
		Drivers: rank(t.drivers),
		Teams:   rank(t.teams),
	}
	if tr, err := t.reg.Track(res.TrackID); err == nil {
		event.TrackName = tr.Name
	}
	t.mu.Unlock()

	if t.ps != nil {
		t.ps.Publish(TopicRaceCompleted, event)
	}
}

func (t *Tracker) driver(id, teamID string) *Standing {
	s, ok := t.drivers[id]
	if !ok {
		s = &Standing{ID: id, Name: id}
		if d, err := t.reg.Driver(id); err == nil {
			s.Name = d.Name
		}
		t.drivers[id] = s
	}
	s.TeamID = teamID
	return s
}

func (t *Tracker) team(id string) *Standing {
	s, ok := t.teams[id]
	if !ok {
		s = &Standing{ID: id, Name: id}
		if tm, err := t.reg.Team(id); err == nil {
			s.Name = tm.Name
		}
		t.teams[id] = s
	}
	return s
}

func (t *Tracker) Races() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.races
}

// Drivers returns the drivers' standings.
func (t *Tracker) Drivers() []Standing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return rank(t.drivers)
}

// Teams returns the constructors' standings.
func (t *Tracker) Teams() []Standing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return rank(t.teams)
}

// rank orders by points, then wins, then podiums, then name.
func rank(m map[string]*Standing) []Standing {
	out := make([]Standing, 0, len(m))
	for _, s := range m {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Podiums != b.Podiums {
			return a.Podiums > b.Podiums
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}
