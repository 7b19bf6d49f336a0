package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"f1weekendsim/pkg/championship"
	"f1weekendsim/pkg/history"
	"f1weekendsim/pkg/race"
	"f1weekendsim/pkg/registry"
	"f1weekendsim/pkg/weather"
	"f1weekendsim/pkg/weekend"
)

func newTestWeekend(t *testing.T) (*registry.Registry, *weekend.Weekend) {
	t.Helper()
	reg := registry.Default()
	wk, err := weekend.NewRunner(reg).Run(context.Background(), weekend.Request{
		TrackID:   "monaco",
		Condition: weather.Dry,
		Seed:      11,
		Forced:    []race.Forced{{DriverID: "hamilton", Lap: 2, State: race.RetiredMechanical}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return reg, wk
}

func TestQualifyingRows(t *testing.T) {
	reg, wk := newTestWeekend(t)
	rows := NewRenderer(reg, false).QualifyingRows(wk.Qualifying)
	if len(rows) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(rows))
	}
	if rows[0][0] != 1 || rows[0][5] != "" {
		t.Fatalf("unexpected pole row %v", rows[0])
	}
	if gap, _ := rows[1][5].(string); !strings.HasPrefix(gap, "+") {
		t.Fatalf("expected a gap for P2, got %v", rows[1][5])
	}
}

func TestRaceTableShowsRetirements(t *testing.T) {
	reg, wk := newTestWeekend(t)
	r := NewRenderer(reg, false)

	out := r.Race(wk.Track, wk.Race)
	for _, want := range []string{"Circuit de Monaco", "DNF L2 Mechanical failure", "HAM Lewis Hamilton", "Fastest lap"} {
		if !strings.Contains(out, want) {
			t.Fatalf("race table missing %q:\n%s", want, out)
		}
	}

	rows := r.RaceRows(wk.Race)
	last := rows[len(rows)-1]
	if pts := last[len(last)-1]; pts != 0 {
		t.Fatalf("last row scored %v", pts)
	}
}

func TestColorsOnlyWhenEnabled(t *testing.T) {
	reg, wk := newTestWeekend(t)
	plain := NewRenderer(reg, false).Race(wk.Track, wk.Race)
	colored := NewRenderer(reg, true).Race(wk.Track, wk.Race)
	if strings.Contains(plain, "\x1b[") {
		t.Fatal("plain output contains escape codes")
	}
	if !strings.Contains(colored, "\x1b[") {
		t.Fatal("colored output has no escape codes")
	}
}

func TestStandingsTables(t *testing.T) {
	reg, wk := newTestWeekend(t)
	tr := championship.NewTracker(reg, nil)
	tr.Record(wk.Race)

	r := NewRenderer(reg, false)
	rows := r.StandingsRows(tr.Drivers(), true)
	if len(rows) != 20 || rows[0][len(rows[0])-1] != 25 {
		t.Fatalf("unexpected driver rows %v", rows[0])
	}
	teams := r.TeamStandings(tr.Teams())
	if !strings.Contains(teams, "Constructors' Championship") {
		t.Fatalf("missing title:\n%s", teams)
	}
}

func TestWeekendReport(t *testing.T) {
	reg, wk := newTestWeekend(t)
	out := NewRenderer(reg, false).Weekend(wk)
	for _, want := range []string{"Weather", "Qualifying", "Race", "Podium", "Race log", "enhancement off"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestListings(t *testing.T) {
	r := NewRenderer(registry.Default(), false)
	if out := r.Drivers(); !strings.Contains(out, "VER") || !strings.Contains(out, "(R)") {
		t.Fatalf("drivers listing:\n%s", out)
	}
	if out := r.Teams(); !strings.Contains(out, "McLaren") {
		t.Fatalf("teams listing:\n%s", out)
	}
	cal := r.Calendar()
	if strings.Index(cal, "australia") > strings.Index(cal, "abu_dhabi") {
		t.Fatalf("calendar out of order:\n%s", cal)
	}
}

func TestCoverageLine(t *testing.T) {
	cov := history.Coverage{DriversEnhanced: 18, DriversTotal: 20, TeamsEnhanced: 8, TeamsTotal: 10}
	if got := Coverage(true, cov); got != "Historical enhancement: 18/20 drivers enhanced, 8/10 teams enhanced\n" {
		t.Fatalf("got %q", got)
	}
}

func TestFetchProgressCounts(t *testing.T) {
	var b bytes.Buffer
	p := NewFetchProgress(&b, 2, 1)
	p.Update(history.KindDriver, "norris", true)
	p.Update(history.KindDriver, "colapinto", false)
	p.Update(history.KindTeam, "mclaren", true)

	if p.drivers.Value() != 2 || !p.drivers.IsDone() {
		t.Fatalf("driver tracker at %d", p.drivers.Value())
	}
	if p.drivers.Message != "Drivers 1 found" || p.teams.Message != "Teams 1 found" {
		t.Fatalf("unexpected messages %q / %q", p.drivers.Message, p.teams.Message)
	}
}

func TestEventsFiltersByKind(t *testing.T) {
	reg, wk := newTestWeekend(t)
	r := NewRenderer(reg, false)

	incidents := wk.Race.Events.Filter(func(ev race.Event) bool { return ev.Kind == race.EventIncident })
	out := r.Events(wk.Race, race.EventIncident)
	if !strings.Contains(out, "Mechanical failure") {
		t.Fatalf("incident log missing the forced retirement:\n%s", out)
	}
	if strings.Contains(out, "Pit stop") {
		t.Fatalf("pit stops shown in an incident-only log:\n%s", out)
	}
	if want := fmt.Sprintf("%d of %d events", len(incidents), wk.Race.Events.Len()); !strings.Contains(out, want) {
		t.Fatalf("footer missing %q:\n%s", want, out)
	}
	if !strings.Contains(r.Events(wk.Race), "Pit stop") {
		t.Fatal("full log missing pit stops")
	}
}
