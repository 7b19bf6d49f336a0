package history

import (
	"strconv"
	"strings"
)

type Kind string

const (
	KindDriver Kind = "driver"
	KindTeam   Kind = "team"
)

// path segment used by the results API
func (k Kind) resource() string {
	if k == KindTeam {
		return "constructors"
	}
	return "drivers"
}

// RaceEntry is one car's result in one race. It is what gets cached.
type RaceEntry struct {
	Season        int    `json:"season"`
	Round         int    `json:"round"`
	RaceName      string `json:"raceName"`
	CircuitID     string `json:"circuitId"`
	DriverID      string `json:"driverId"`
	ConstructorID string `json:"constructorId"`
	Grid          int    `json:"grid"`
	Position      int    `json:"position"`
	Laps          int    `json:"laps"`
	Status        string `json:"status"`
}

func (e RaceEntry) Finished() bool {
	return e.Status == "Finished" || e.Status == "Lapped" || strings.HasPrefix(e.Status, "+")
}

func (e RaceEntry) Started() bool {
	switch e.Status {
	case "Did not start", "Withdrew", "Did not qualify", "Did not prequalify":
		return false
	}
	return true
}

// DriverIncident reports retirements the driver is usually blamed for.
func (e RaceEntry) DriverIncident() bool {
	switch e.Status {
	case "Accident", "Collision", "Collision damage", "Spun off":
		return true
	}
	return false
}

// MechanicalFailure covers every other retirement except disqualification.
func (e RaceEntry) MechanicalFailure() bool {
	if e.Finished() || !e.Started() || e.DriverIncident() {
		return false
	}
	return e.Status != "Disqualified"
}

// results API response, only the fields we read

type resultsResponse struct {
	MRData struct {
		Total     string `json:"total"`
		RaceTable struct {
			Season string    `json:"season"`
			Races  []apiRace `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

type apiRace struct {
	Season   string `json:"season"`
	Round    string `json:"round"`
	RaceName string `json:"raceName"`
	Circuit  struct {
		CircuitID string `json:"circuitId"`
	} `json:"Circuit"`
	Results []apiResult `json:"Results"`
}

type apiResult struct {
	Position string `json:"position"`
	Grid     string `json:"grid"`
	Laps     string `json:"laps"`
	Status   string `json:"status"`
	Driver   struct {
		DriverID string `json:"driverId"`
	} `json:"Driver"`
	Constructor struct {
		ConstructorID string `json:"constructorId"`
	} `json:"Constructor"`
}

func (r resultsResponse) entries() []RaceEntry {
	entries := []RaceEntry{}
	for _, race := range r.MRData.RaceTable.Races {
		season, _ := strconv.Atoi(race.Season)
		round, _ := strconv.Atoi(race.Round)
		for _, res := range race.Results {
			grid, _ := strconv.Atoi(res.Grid)
			pos, _ := strconv.Atoi(res.Position)
			laps, _ := strconv.Atoi(res.Laps)
			entries = append(entries, RaceEntry{
				Season:        season,
				Round:         round,
				RaceName:      race.RaceName,
				CircuitID:     race.Circuit.CircuitID,
				DriverID:      res.Driver.DriverID,
				ConstructorID: res.Constructor.ConstructorID,
				Grid:          grid,
				Position:      pos,
				Laps:          laps,
				Status:        res.Status,
			})
		}
	}
	return entries
}
