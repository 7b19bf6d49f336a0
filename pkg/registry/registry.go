package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"f1weekendsim/pkg/helper"
)

type ClimateKind string

const (
	Temperate ClimateKind = "temperate"
	WetProne  ClimateKind = "wet-prone"
	Arid      ClimateKind = "arid"
)

// Climate describes what a circuit usually gets on race weekend.
type Climate struct {
	Kind ClimateKind
	// TempOffset is added to the seasonal base temperature, in Celsius.
	TempOffset float64
}

type Driver struct {
	ID           string
	Name         string
	Code         string
	Number       int
	Nationality  string
	Age          int
	TeamID       string
	Experience   int // seasons in F1
	SkillDry     float64
	SkillWet     float64
	Overtaking   float64
	Consistency  float64
	Aggression   float64
	HistoricalID string
}

// Overall is the weighted driver rating used by the simulators.
func (d Driver) Overall() float64 {
	exp := float64(d.Experience) / 15
	if exp > 1 {
		exp = 1
	}
	return d.SkillDry*0.35 + d.SkillWet*0.15 + d.Overtaking*0.20 + d.Consistency*0.20 + exp*0.10
}

func (d Driver) IsRookie() bool {
	return d.Experience < 2
}

func (d Driver) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Code)
}

type Team struct {
	ID              string
	Name            string
	Constructor     string
	Engine          string
	Performance     float64
	Reliability     float64
	PitEfficiency   float64
	DevelopmentRate float64
	Aerodynamics    float64
	Power           float64
	Color           string // hex, used by charts
	HistoricalID    string
}

func (t Team) CarRating() float64 {
	return t.Performance*0.30 + t.Reliability*0.20 + t.Aerodynamics*0.25 + t.Power*0.25
}

type Track struct {
	ID                   string
	Name                 string
	Country              string
	City                 string
	LengthKm             float64
	Laps                 int
	Corners              int
	Straights            int
	TopSpeed             int
	Downforce            int // 1-10
	TyreWear             int // 1-10
	Braking              int // 1-10
	OvertakingDifficulty int // 1-10, 10 is hardest
	Date                 time.Time
	Climate              Climate
}

func (t Track) Type() string {
	switch {
	case t.Downforce >= 8:
		return "High Downforce"
	case t.Downforce <= 4:
		return "Low Downforce"
	default:
		return "Medium Downforce"
	}
}

func (t Track) RaceDistance() float64 {
	return t.LengthKm * float64(t.Laps)
}

func (t Track) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Country)
}

// Registry holds the attribute records for one simulation run. Lookups keep
// roster order so that every consumer iterates deterministically.
type Registry struct {
	drivers []Driver
	teams   []Team
	tracks  []Track

	driverIdx map[string]int
	teamIdx   map[string]int
	trackIdx  map[string]int
}

func New(drivers []Driver, teams []Team, tracks []Track) *Registry {
	r := &Registry{
		drivers: append([]Driver(nil), drivers...),
		teams:   append([]Team(nil), teams...),
		tracks:  append([]Track(nil), tracks...),
	}
	r.reindex()
	return r
}

func (r *Registry) reindex() {
	r.driverIdx = make(map[string]int, len(r.drivers))
	for i, d := range r.drivers {
		r.driverIdx[d.ID] = i
	}
	r.teamIdx = make(map[string]int, len(r.teams))
	for i, t := range r.teams {
		r.teamIdx[t.ID] = i
	}
	r.trackIdx = make(map[string]int, len(r.tracks))
	for i, t := range r.tracks {
		r.trackIdx[t.ID] = i
	}
}

// Clone returns a deep copy. Records hold no references, so copying the
// slices is enough.
func (r *Registry) Clone() *Registry {
	return New(r.drivers, r.teams, r.tracks)
}

func (r *Registry) Drivers() []Driver {
	return append([]Driver(nil), r.drivers...)
}

func (r *Registry) Teams() []Team {
	return append([]Team(nil), r.teams...)
}

func (r *Registry) Tracks() []Track {
	return append([]Track(nil), r.tracks...)
}

func (r *Registry) Driver(id string) (Driver, error) {
	i, ok := r.driverIdx[strings.ToLower(id)]
	if !ok {
		return Driver{}, newValidationError("driver", id)
	}
	return r.drivers[i], nil
}

func (r *Registry) Team(id string) (Team, error) {
	i, ok := r.teamIdx[strings.ToLower(id)]
	if !ok {
		return Team{}, newValidationError("team", id)
	}
	return r.teams[i], nil
}

func (r *Registry) Track(id string) (Track, error) {
	i, ok := r.trackIdx[strings.ToLower(id)]
	if !ok {
		return Track{}, newValidationError("track", id)
	}
	return r.tracks[i], nil
}

// TeamOf returns the team of a driver known to the registry.
func (r *Registry) TeamOf(d Driver) Team {
	return r.teams[r.teamIdx[d.TeamID]]
}

func (r *Registry) DriversOf(teamID string) []Driver {
	ds := []Driver{}
	for _, d := range r.drivers {
		if d.TeamID == teamID {
			ds = append(ds, d)
		}
	}
	return ds
}

// FindTeam matches a team by id, or by a cleaned, case-insensitive substring
// of its name ("Red Bull Racing" and "red bull" both match red_bull).
func (r *Registry) FindTeam(query string) (Team, error) {
	if t, err := r.Team(query); err == nil {
		return t, nil
	}
	q := strings.ToLower(helper.CleanTeamName(query))
	if q == "" {
		return Team{}, newValidationError("team", query)
	}
	for _, t := range r.teams {
		name := strings.ToLower(helper.CleanTeamName(t.Name))
		if strings.Contains(name, q) || strings.Contains(q, name) {
			return t, nil
		}
	}
	return Team{}, newValidationError("team", query)
}

// Calendar returns the tracks in race-date order.
func (r *Registry) Calendar() []Track {
	ts := r.Tracks()
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].Date.Before(ts[j].Date)
	})
	return ts
}

func (r *Registry) UpdateDriver(d Driver) error {
	i, ok := r.driverIdx[d.ID]
	if !ok {
		return newValidationError("driver", d.ID)
	}
	r.drivers[i] = d
	return nil
}

func (r *Registry) UpdateTeam(t Team) error {
	i, ok := r.teamIdx[t.ID]
	if !ok {
		return newValidationError("team", t.ID)
	}
	r.teams[i] = t
	return nil
}

// SelectDrivers returns a registry restricted to the given drivers, keeping
// roster order. An empty selection keeps the full field.
func (r *Registry) SelectDrivers(ids []string) (*Registry, error) {
	if len(ids) == 0 {
		return r.Clone(), nil
	}
	wanted := map[string]bool{}
	for _, id := range ids {
		d, err := r.Driver(id)
		if err != nil {
			return nil, err
		}
		wanted[d.ID] = true
	}
	ds := []Driver{}
	for _, d := range r.drivers {
		if wanted[d.ID] {
			ds = append(ds, d)
		}
	}
	return New(ds, r.teams, r.tracks), nil
}

// Validate checks ratings and references. A failure means the static data is
// broken, not that the user did something wrong.
func (r *Registry) Validate() error {
	for _, d := range r.drivers {
		if _, ok := r.teamIdx[d.TeamID]; !ok {
			return fmt.Errorf("driver %s references unknown team %q", d.ID, d.TeamID)
		}
		for name, v := range map[string]float64{
			"skill_dry":   d.SkillDry,
			"skill_wet":   d.SkillWet,
			"overtaking":  d.Overtaking,
			"consistency": d.Consistency,
			"aggression":  d.Aggression,
		} {
			if !InRange(v) {
				return fmt.Errorf("driver %s: %s %.3f out of range", d.ID, name, v)
			}
		}
	}
	for _, t := range r.teams {
		for name, v := range map[string]float64{
			"performance":      t.Performance,
			"reliability":      t.Reliability,
			"pit_efficiency":   t.PitEfficiency,
			"development_rate": t.DevelopmentRate,
			"aerodynamics":     t.Aerodynamics,
			"power":            t.Power,
		} {
			if !InRange(v) {
				return fmt.Errorf("team %s: %s %.3f out of range", t.ID, name, v)
			}
		}
	}
	for _, t := range r.tracks {
		if t.Laps <= 0 || t.LengthKm <= 0 {
			return fmt.Errorf("track %s: invalid distance", t.ID)
		}
		if t.OvertakingDifficulty < 1 || t.OvertakingDifficulty > 10 || t.TyreWear < 1 || t.TyreWear > 10 {
			return fmt.Errorf("track %s: rating out of range", t.ID)
		}
	}
	return nil
}

func InRange(v float64) bool {
	return v >= 0 && v <= 1
}

func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
