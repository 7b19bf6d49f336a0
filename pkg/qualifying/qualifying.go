package qualifying

import (
	"math/rand/v2"
	"sort"

	"f1weekendsim/pkg/registry"
	"f1weekendsim/pkg/weather"
)

// Slot is one position on the starting grid.
type Slot struct {
	Position int
	DriverID string
	TeamID   string
	LapTime  float64 // best of the three runs, seconds
	Runs     [3]float64
	Gap      float64 // to pole
	skill    float64 // raw skill for the session's conditions, breaks ties
}

type Result struct {
	Grid []Slot
}

func (r Result) Pole() Slot {
	return r.Grid[0]
}

// Order returns driver ids in grid order.
func (r Result) Order() []string {
	ids := make([]string, len(r.Grid))
	for i, s := range r.Grid {
		ids[i] = s.DriverID
	}
	return ids
}

// BaseLapTime is the reference lap for a circuit of the given length.
func BaseLapTime(track registry.Track) float64 {
	return 90 + (track.LengthKm-5)*5
}

type span struct{ min, max float64 }

var runFactors = [3]span{{1.001, 1.01}, {0.995, 1.005}, {0.99, 1.005}}

func uniform(rng *rand.Rand, s span) float64 {
	return s.min + rng.Float64()*(s.max-s.min)
}

// Simulate runs qualifying for every driver in reg. Drivers are visited in
// roster order, so a given rng state always yields the same grid.
func Simulate(reg *registry.Registry, track registry.Track, w weather.Weather, rng *rand.Rand) Result {
	base := BaseLapTime(track)
	grid := []Slot{}

	for _, d := range reg.Drivers() {
		car := reg.TeamOf(d)

		lap := base + 5*(1-d.Overall()) + 3*(1-car.CarRating())
		lap += uniform(rng, span{-0.5, 0.5}) // track specialisation
		if w.IsWet() {
			lap += 2 * (1 - d.SkillWet)
		} else {
			lap += 0.5 * (1 - d.SkillDry)
		}
		lap += uniform(rng, span{-0.2, 0.3})

		switch {
		case w.IsWet():
			lap *= uniform(rng, span{1.02, 1.15})
		case w.Condition == weather.Mixed:
			lap *= uniform(rng, span{1.0, 1.08})
		}

		slot := Slot{DriverID: d.ID, TeamID: d.TeamID, skill: d.SkillDry}
		if w.IsWet() {
			slot.skill = d.SkillWet
		}
		best := 0.0
		for i, f := range runFactors {
			slot.Runs[i] = lap * uniform(rng, f)
			if best == 0 || slot.Runs[i] < best {
				best = slot.Runs[i]
			}
		}
		slot.LapTime = best
		grid = append(grid, slot)
	}

	rank(grid)
	return Result{Grid: grid}
}

// rank orders by lap time, then raw skill descending, then driver id, and
// assigns positions.
func rank(grid []Slot) {
	sort.SliceStable(grid, func(i, j int) bool {
		a, b := grid[i], grid[j]
		if a.LapTime != b.LapTime {
			return a.LapTime < b.LapTime
		}
		if a.skill != b.skill {
			return a.skill > b.skill
		}
		return a.DriverID < b.DriverID
	})

	for i := range grid {
		grid[i].Position = i + 1
		grid[i].Gap = grid[i].LapTime - grid[0].LapTime
	}
}
