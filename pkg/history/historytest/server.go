// Package historytest serves canned race results in the shape of the
// Ergast-compatible results API, for tests and offline runs.
package historytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
)

type Result struct {
	Season        int
	Round         int
	RaceName      string
	CircuitID     string
	DriverID      string
	ConstructorID string
	Grid          int
	Position      int
	Laps          int
	Status        string
}

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	results []Result
	hits    map[string]int
	failing bool
}

func NewServer() *Server {
	s := &Server{hits: map[string]int{}}

	r := mux.NewRouter()
	r.HandleFunc("/{season:[0-9]{4}}/{resource:drivers|constructors}/{id}/results.json", s.handleResults).Methods(http.MethodGet)
	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) Add(results ...Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, results...)
}

// SetFailing makes every request answer 503.
func (s *Server) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Hits returns how many requests reached the given path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits[r.URL.Path]++
	if s.failing {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	vars := mux.Vars(r)
	season, _ := strconv.Atoi(vars["season"])
	match := func(res Result) bool {
		if res.Season != season {
			return false
		}
		if vars["resource"] == "constructors" {
			return res.ConstructorID == vars["id"]
		}
		return res.DriverID == vars["id"]
	}

	type rows struct {
		name, circuit string
		results       []map[string]any
	}
	byRound := map[int]*rows{}
	for _, res := range s.results {
		if !match(res) {
			continue
		}
		rr, ok := byRound[res.Round]
		if !ok {
			rr = &rows{name: res.RaceName, circuit: res.CircuitID}
			byRound[res.Round] = rr
		}
		rr.results = append(rr.results, map[string]any{
			"position":    strconv.Itoa(res.Position),
			"grid":        strconv.Itoa(res.Grid),
			"laps":        strconv.Itoa(res.Laps),
			"status":      res.Status,
			"Driver":      map[string]string{"driverId": res.DriverID},
			"Constructor": map[string]string{"constructorId": res.ConstructorID},
		})
	}

	rounds := []int{}
	for round := range byRound {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)

	races := []map[string]any{}
	total := 0
	for _, round := range rounds {
		rr := byRound[round]
		total += len(rr.results)
		races = append(races, map[string]any{
			"season":   strconv.Itoa(season),
			"round":    strconv.Itoa(round),
			"raceName": rr.name,
			"Circuit":  map[string]string{"circuitId": rr.circuit},
			"Results":  rr.results,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"MRData": map[string]any{
			"total": fmt.Sprint(total),
			"RaceTable": map[string]any{
				"season": strconv.Itoa(season),
				"Races":  races,
			},
		},
	})
}

// Season returns n results for one driver with the given finishing
// positions, starting from the grid slot of the same index.
func Season(season int, driverID, constructorID string, grid, positions []int, statuses []string) []Result {
	out := []Result{}
	for i := range positions {
		status := "Finished"
		if i < len(statuses) && statuses[i] != "" {
			status = statuses[i]
		}
		out = append(out, Result{
			Season:        season,
			Round:         i + 1,
			RaceName:      fmt.Sprintf("Round %d Grand Prix", i+1),
			CircuitID:     fmt.Sprintf("circuit_%d", i+1),
			DriverID:      driverID,
			ConstructorID: constructorID,
			Grid:          grid[i],
			Position:      positions[i],
			Laps:          57,
			Status:        status,
		})
	}
	return out
}
