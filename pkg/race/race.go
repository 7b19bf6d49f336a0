package race

import (
	"math/rand/v2"
	"sort"

	"f1weekendsim/pkg/qualifying"
	"f1weekendsim/pkg/queues"
	"f1weekendsim/pkg/registry"
	"f1weekendsim/pkg/weather"
)

const (
	gridSpacing  = 0.3  // seconds between grid slots at the start
	pitLaneLoss  = 18.0 // seconds
	punctureLoss = 8.0  // slow lap back to the pits
	minHoldGap   = 0.2
	maxHoldGap   = 0.5
)

// Forced retires a driver at a given lap regardless of the draws.
type Forced struct {
	DriverID string
	Lap      int
	State    State
}

type Options struct {
	Forced []Forced
}

// Entry is one row of the final classification.
type Entry struct {
	Position   int
	DriverID   string
	TeamID     string
	Grid       int
	State      State
	Laps       int // laps completed
	RetiredLap int
	Incident   Incident
	Time       float64 // total race time, finishers only
	Gap        float64 // to the winner, finishers on the lead lap
	LapsDown   int
	BestLap    float64
	BestLapNo  int
	FastestLap bool
	PitStops   int
	Points     int
}

type Result struct {
	TrackID        string
	TotalLaps      int
	Classification []Entry
	// PositionsByLap[i] is the running order after lap i+1.
	PositionsByLap [][]string
	Events         *queues.Queue[Event]
}

func (r Result) Entry(driverID string) (Entry, bool) {
	for _, e := range r.Classification {
		if e.DriverID == driverID {
			return e, true
		}
	}
	return Entry{}, false
}

func (r Result) Winner() Entry {
	return r.Classification[0]
}

func (r Result) Podium() []Entry {
	podium := []Entry{}
	for _, e := range r.Classification {
		if e.State == Finished && len(podium) < 3 {
			podium = append(podium, e)
		}
	}
	return podium
}

func (r Result) FastestLap() (Entry, bool) {
	for _, e := range r.Classification {
		if e.FastestLap {
			return e, true
		}
	}
	return Entry{}, false
}

func (r Result) Retirements() []Entry {
	out := []Entry{}
	for _, e := range r.Classification {
		if e.State.Retired() {
			out = append(out, e)
		}
	}
	return out
}

type car struct {
	driver     registry.Driver
	team       registry.Team
	grid       int
	state      State
	pace       float64
	time       float64
	laps       int
	tyreAge    int
	stint      int
	pitStops   int
	retiredLap int
	incident   Incident
	best       float64
	bestLap    int
	pitted     bool
}

type simulation struct {
	track   registry.Track
	weather weather.Weather
	rng     *rand.Rand
	forced  map[string]Forced
	events  *queues.Queue[Event]
}

// BaseLapTime is the race reference lap, a little slower than qualifying.
func BaseLapTime(track registry.Track) float64 {
	return qualifying.BaseLapTime(track) * 1.04
}

// Simulate runs the race from the given grid. Ids unknown to reg are left
// out. The race never aborts: every failure is a driver state transition.
func Simulate(reg *registry.Registry, track registry.Track, w weather.Weather, grid []string, rng *rand.Rand, opts Options) Result {
	s := &simulation{
		track:   track,
		weather: w,
		rng:     rng,
		forced:  map[string]Forced{},
		events:  queues.NewQueue[Event](),
	}
	for _, f := range opts.Forced {
		s.forced[f.DriverID] = f
	}

	cars := []*car{}
	for _, id := range grid {
		d, err := reg.Driver(id)
		if err != nil {
			continue
		}
		c := &car{
			driver: d,
			team:   reg.TeamOf(d),
			grid:   len(cars) + 1,
			state:  Running,
		}
		c.pace = s.pace(c)
		c.time = float64(c.grid-1) * gridSpacing
		c.stint = s.stintLength()
		cars = append(cars, c)
	}

	order := append([]*car(nil), cars...)
	positions := [][]string{}
	for lap := 1; lap <= track.Laps; lap++ {
		for _, c := range order {
			s.runLap(c, lap)
		}
		order = running(order)
		s.overtakes(order, lap)
		positions = append(positions, ids(order))
	}
	for _, c := range order {
		c.state = Finished
	}

	return Result{
		TrackID:        track.ID,
		TotalLaps:      track.Laps,
		Classification: s.classify(cars, order),
		PositionsByLap: positions,
		Events:         s.events,
	}
}

func (s *simulation) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *simulation) pace(c *car) float64 {
	p := BaseLapTime(s.track) + 3*(1-c.driver.Overall()) + 2.5*(1-c.team.CarRating())
	if s.weather.IsWet() {
		p += 1.5 * (1 - c.driver.SkillWet)
	} else {
		p += 0.5 * (1 - c.driver.SkillDry)
	}
	return p * (1 + (1-s.weather.Impact())*0.5)
}

// stintLength is the tyre life in laps, shorter on high wear circuits.
func (s *simulation) stintLength() int {
	base := float64(s.track.Laps) * (0.75 - 0.04*float64(s.track.TyreWear))
	return int(base) + s.rng.IntN(7) - 3
}

func (s *simulation) runLap(c *car, lap int) {
	if c.state != Running {
		return
	}
	c.pitted = false

	if f, ok := s.forced[c.driver.ID]; ok && f.Lap <= lap {
		state := f.State
		if !state.Retired() {
			state = RetiredMechanical
		}
		incident := MechanicalFailure
		if state == RetiredIncident {
			incident = DriverError
		}
		s.retire(c, lap, state, incident)
		return
	}

	incident := s.incidentCheck(c, lap)
	if incident.Terminal() {
		state := RetiredIncident
		if incident == MechanicalFailure {
			state = RetiredMechanical
		}
		s.retire(c, lap, state, incident)
		return
	}

	lapTime := c.pace +
		0.045*float64(c.tyreAge)*float64(s.track.TyreWear)/10 -
		0.03*float64(lap) +
		s.uniform(-0.3, 0.3)*(1.5-c.driver.Consistency)

	c.time += lapTime
	c.laps = lap
	c.tyreAge++
	if c.best == 0 || lapTime < c.best {
		c.best = lapTime
		c.bestLap = lap
	}

	if incident == Puncture {
		s.events.Push(Event{Lap: lap, Kind: EventIncident, DriverID: c.driver.ID, Incident: Puncture})
		c.time += punctureLoss
		s.pit(c, lap)
		return
	}
	if c.tyreAge >= c.stint && s.track.Laps-lap >= 5 {
		s.pit(c, lap)
	}
}

func (s *simulation) pit(c *car, lap int) {
	loss := pitLaneLoss + 4*(1-c.team.PitEfficiency) + s.uniform(0, 1.5)
	c.time += loss
	c.tyreAge = 0
	c.stint = s.stintLength()
	c.pitStops++
	c.pitted = true
	s.events.Push(Event{Lap: lap, Kind: EventPitStop, DriverID: c.driver.ID, Duration: loss})
}

func (s *simulation) retire(c *car, lap int, state State, incident Incident) {
	c.state = state
	c.retiredLap = lap
	c.laps = lap - 1
	c.incident = incident
	s.events.Push(Event{Lap: lap, Kind: EventIncident, DriverID: c.driver.ID, Incident: incident})
}

// MechanicalProbability is the per-lap chance of a car failure.
func MechanicalProbability(team registry.Team) float64 {
	return 0.0004 + 0.004*(1-team.Reliability)
}

// ErrorProbability is the per-lap chance of a driver mistake.
func ErrorProbability(d registry.Driver, w weather.Weather, lap, totalLaps int) float64 {
	p := 0.004 * (1 - d.Consistency) * w.Severity()
	if lap < 3 {
		p *= 4
	}
	if float64(lap) > 0.8*float64(totalLaps) {
		p *= 1.5
	}
	if d.IsRookie() {
		p *= 1.5
	}
	p *= 1 + 0.8*d.Aggression
	if p > 0.15 {
		p = 0.15
	}
	return p
}

func (s *simulation) incidentCheck(c *car, lap int) Incident {
	if s.rng.Float64() < MechanicalProbability(c.team) {
		return MechanicalFailure
	}
	if s.rng.Float64() >= ErrorProbability(c.driver, s.weather, lap, s.track.Laps) {
		return NoIncident
	}

	x := s.rng.Float64()
	if s.weather.IsWet() {
		switch {
		case x < 0.35:
			return WeatherRelated
		case x < 0.6:
			return DriverError
		case x < 0.85:
			return Collision
		}
		return Puncture
	}
	switch {
	case x < 0.45:
		return DriverError
	case x < 0.8:
		return Collision
	}
	return Puncture
}

// OvertakeThreshold is the margin a pursuer needs before attempting a pass.
func OvertakeThreshold(difficulty int) float64 {
	return 0.1 + 0.06*float64(difficulty)
}

// OvertakeProbability is the chance an attempt succeeds.
func OvertakeProbability(overtaking float64, difficulty int) float64 {
	p := overtaking * (1.05 - 0.085*float64(difficulty))
	if p < 0.02 {
		return 0.02
	}
	if p > 0.95 {
		return 0.95
	}
	return p
}

// overtakes settles the running order for the lap, front to back. A car
// that lost time in the pits is passed without a fight; otherwise the
// pursuer must be faster by the track threshold and win the draw, or it is
// held behind.
func (s *simulation) overtakes(order []*car, lap int) {
	threshold := OvertakeThreshold(s.track.OvertakingDifficulty)
	for i := 1; i < len(order); i++ {
		ahead, behind := order[i-1], order[i]
		switch {
		case behind.time > ahead.time:
			continue
		case ahead.pitted && !behind.pitted:
			order[i-1], order[i] = behind, ahead
		case behind.time < ahead.time-threshold &&
			s.rng.Float64() < OvertakeProbability(behind.driver.Overtaking, s.track.OvertakingDifficulty):
			order[i-1], order[i] = behind, ahead
			s.events.Push(Event{Lap: lap, Kind: EventOvertake, DriverID: behind.driver.ID, Other: ahead.driver.ID})
		default:
			behind.time = ahead.time + s.uniform(minHoldGap, maxHoldGap)
		}
	}
	// a car that got past one rival may still be quicker than the next one
	for i := 1; i < len(order); i++ {
		if order[i].time <= order[i-1].time {
			order[i].time = order[i-1].time + s.uniform(minHoldGap, maxHoldGap)
		}
	}
}

func running(order []*car) []*car {
	out := order[:0]
	for _, c := range order {
		if c.state == Running {
			out = append(out, c)
		}
	}
	return out
}

func ids(order []*car) []string {
	out := make([]string, len(order))
	for i, c := range order {
		out[i] = c.driver.ID
	}
	return out
}

func (s *simulation) classify(cars, finishers []*car) []Entry {
	retired := []*car{}
	for _, c := range cars {
		if c.state.Retired() {
			retired = append(retired, c)
		}
	}
	sort.SliceStable(retired, func(i, j int) bool {
		a, b := retired[i], retired[j]
		if a.laps != b.laps {
			return a.laps > b.laps
		}
		if a.retiredLap != b.retiredLap {
			return a.retiredLap > b.retiredLap
		}
		return a.grid < b.grid
	})

	entries := []Entry{}
	var leader *car
	for _, c := range append(append([]*car(nil), finishers...), retired...) {
		e := Entry{
			Position:   len(entries) + 1,
			DriverID:   c.driver.ID,
			TeamID:     c.team.ID,
			Grid:       c.grid,
			State:      c.state,
			Laps:       c.laps,
			RetiredLap: c.retiredLap,
			Incident:   c.incident,
			BestLap:    c.best,
			BestLapNo:  c.bestLap,
			PitStops:   c.pitStops,
		}
		if c.state == Finished {
			if leader == nil {
				leader = c
			}
			e.Time = c.time
			gap := c.time - leader.time
			lapsDown := int(gap / (leader.time / float64(s.track.Laps)))
			if lapsDown > 0 {
				e.LapsDown = lapsDown
				e.Laps = s.track.Laps - lapsDown
			} else {
				e.Gap = gap
			}
		}
		e.Points = PointsFor(e.Position, e.State)
		entries = append(entries, e)
	}

	fastest := -1
	for i, e := range entries {
		if e.BestLap == 0 {
			continue
		}
		if fastest < 0 {
			fastest = i
			continue
		}
		f := entries[fastest]
		if e.BestLap < f.BestLap ||
			(e.BestLap == f.BestLap && (e.BestLapNo < f.BestLapNo || (e.BestLapNo == f.BestLapNo && e.Grid < f.Grid))) {
			fastest = i
		}
	}
	if fastest >= 0 {
		entries[fastest].FastestLap = true
	}
	return entries
}
