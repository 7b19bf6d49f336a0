package history

import (
	"gonum.org/v1/gonum/stat"
)

// Attribute names a rating that historical data can supply.
type Attribute string

const (
	SkillDry    Attribute = "skill_dry"
	Overtaking  Attribute = "overtaking"
	Consistency Attribute = "consistency"
	Aggression  Attribute = "aggression"
	Performance Attribute = "performance"
	Reliability Attribute = "reliability"
)

// MinRaces is the number of starts below which no record is produced.
const MinRaces = 3

// Stats is the historical record of one driver or team. Ratings only holds
// the attributes that could be derived from the data.
type Stats struct {
	ID      string
	Kind    Kind
	Races   int
	Ratings map[Attribute]float64
}

func clampTo(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// positionRating maps an average finishing position to a rating: P1 is 1.0
// and every place behind costs 0.04.
func positionRating(meanPos float64) float64 {
	return clampTo(1-(meanPos-1)*0.04, 0.2, 1)
}

type summary struct {
	starts     int
	finishes   []float64
	gains      []float64
	incidents  int
	mechanical int
}

func summarize(entries []RaceEntry) summary {
	s := summary{}
	for _, e := range entries {
		if !e.Started() {
			continue
		}
		s.starts++
		switch {
		case e.Finished():
			s.finishes = append(s.finishes, float64(e.Position))
			// pit lane starts are reported as grid 0
			if e.Grid > 0 {
				s.gains = append(s.gains, float64(e.Grid-e.Position))
			}
		case e.DriverIncident():
			s.incidents++
		case e.MechanicalFailure():
			s.mechanical++
		}
	}
	return s
}

func DriverStats(id string, entries []RaceEntry) (*Stats, bool) {
	s := summarize(entries)
	if s.starts < MinRaces {
		return nil, false
	}

	ratings := map[Attribute]float64{
		Aggression: clampTo(0.6+2*float64(s.incidents)/float64(s.starts), 0.2, 1),
	}
	if len(s.finishes) > 0 {
		ratings[SkillDry] = positionRating(stat.Mean(s.finishes, nil))
	}
	if len(s.gains) > 0 {
		ratings[Overtaking] = clampTo(0.7+stat.Mean(s.gains, nil)*0.03, 0.2, 1)
	}
	if len(s.finishes) > 1 {
		ratings[Consistency] = clampTo(1-stat.StdDev(s.finishes, nil)*0.05, 0.2, 1)
	}
	return &Stats{ID: id, Kind: KindDriver, Races: s.starts, Ratings: ratings}, true
}

func TeamStats(id string, entries []RaceEntry) (*Stats, bool) {
	s := summarize(entries)
	if s.starts < MinRaces {
		return nil, false
	}

	ratings := map[Attribute]float64{
		Reliability: clampTo(1-float64(s.mechanical)/float64(s.starts), 0.5, 1),
	}
	if len(s.finishes) > 0 {
		ratings[Performance] = positionRating(stat.Mean(s.finishes, nil))
	}
	return &Stats{ID: id, Kind: KindTeam, Races: s.starts, Ratings: ratings}, true
}
