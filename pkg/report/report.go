package report

import (
	"bytes"
	"fmt"
	"strings"

	"f1weekendsim/pkg/championship"
	"f1weekendsim/pkg/helper"
	"f1weekendsim/pkg/history"
	"f1weekendsim/pkg/qualifying"
	"f1weekendsim/pkg/race"
	"f1weekendsim/pkg/registry"
	"f1weekendsim/pkg/weather"
	"f1weekendsim/pkg/weekend"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	tableDriver = "Driver"
	tableTeam   = "Team"
	tablePos    = "Pos"
	tablePoints = "Pts"
)

// Renderer turns simulation results into console tables.
type Renderer struct {
	reg   *registry.Registry
	color bool
}

func NewRenderer(reg *registry.Registry, color bool) *Renderer {
	return &Renderer{reg: reg, color: color}
}

func (r *Renderer) paint(s string, colors ...text.Color) string {
	if !r.color || s == "" {
		return s
	}
	return text.Colors(colors).Sprint(s)
}

func newTable(b *bytes.Buffer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(b)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func (r *Renderer) driverLabel(id string) string {
	d, err := r.reg.Driver(id)
	if err != nil {
		return id
	}
	return fmt.Sprintf("%s %s", d.Code, d.Name)
}

func (r *Renderer) teamName(id string) string {
	t, err := r.reg.Team(id)
	if err != nil {
		return id
	}
	return t.Name
}

func (r *Renderer) number(id string) string {
	d, err := r.reg.Driver(id)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("#%d", d.Number)
}

func (r *Renderer) QualifyingRows(q qualifying.Result) []table.Row {
	rows := []table.Row{}
	for _, s := range q.Grid {
		gap := ""
		if s.Position > 1 {
			gap = helper.SecondsToDiff(s.Gap)
		}
		rows = append(rows, table.Row{
			s.Position,
			r.number(s.DriverID),
			r.driverLabel(s.DriverID),
			r.teamName(s.TeamID),
			helper.SecondsToMinutes(s.LapTime),
			gap,
		})
	}
	return rows
}

func (r *Renderer) Qualifying(track registry.Track, q qualifying.Result) string {
	var b bytes.Buffer
	t := newTable(&b, fmt.Sprintf("Qualifying - %s", track.Name))
	t.AppendHeader(table.Row{tablePos, "No", tableDriver, tableTeam, "Time", "Gap"})
	t.AppendRows(r.QualifyingRows(q))
	t.Render()
	return b.String()
}

// status is the time column of the race table: total time for the winner,
// gap or laps down for the other finishers and the reason for retirees.
func (r *Renderer) status(e race.Entry) string {
	switch {
	case e.State.Retired():
		return r.paint(fmt.Sprintf("DNF L%d %s", e.RetiredLap, e.Incident.Description()), text.FgRed)
	case e.Position == 1:
		return helper.SecondsToRaceTime(e.Time)
	case e.LapsDown > 0:
		return helper.LapsDown(e.LapsDown)
	}
	return helper.SecondsToDiff(e.Gap)
}

func (r *Renderer) RaceRows(res race.Result) []table.Row {
	rows := []table.Row{}
	for _, e := range res.Classification {
		best := ""
		if e.BestLap > 0 {
			best = helper.SecondsToMinutes(e.BestLap)
		}
		if e.FastestLap {
			best = r.paint(best+" *", text.FgMagenta)
		}
		rows = append(rows, table.Row{
			e.Position,
			r.driverLabel(e.DriverID),
			r.teamName(e.TeamID),
			e.Grid,
			e.Laps,
			r.status(e),
			e.PitStops,
			best,
			e.Points,
		})
	}
	return rows
}

func (r *Renderer) Race(track registry.Track, res race.Result) string {
	var b bytes.Buffer
	t := newTable(&b, fmt.Sprintf("Race - %s (%d laps)", track.Name, res.TotalLaps))
	t.AppendHeader(table.Row{tablePos, tableDriver, tableTeam, "Grid", "Laps", "Time/Status", "Pits", "Best Lap", tablePoints})
	t.AppendRows(r.RaceRows(res))
	if fl, ok := res.FastestLap(); ok {
		t.AppendFooter(table.Row{"", "Fastest lap", r.driverLabel(fl.DriverID), "", fl.BestLapNo, helper.SecondsToMinutes(fl.BestLap)})
	}
	t.Render()
	return b.String()
}

func (r *Renderer) Podium(res race.Result) string {
	podium := res.Podium()
	if len(podium) == 0 {
		return "No classified finishers\n"
	}
	var b bytes.Buffer
	t := newTable(&b, "Podium")
	medals := []text.Color{text.FgHiYellow, text.FgHiWhite, text.FgYellow}
	for i, e := range podium {
		t.AppendRow(table.Row{r.paint(fmt.Sprintf("P%d", e.Position), medals[i]), r.driverLabel(e.DriverID), r.teamName(e.TeamID)})
	}
	t.Render()
	return b.String()
}

// Events lists incidents and pit stops from the race log, in lap order.
func (r *Renderer) Events(res race.Result, kinds ...race.EventKind) string {
	wanted := map[race.EventKind]bool{}
	for _, k := range kinds {
		wanted[k] = true
	}
	var b bytes.Buffer
	t := newTable(&b, "Race log")
	t.AppendHeader(table.Row{"Lap", tableDriver, "Event"})
	if res.Events == nil {
		t.Render()
		return b.String()
	}
	shown := res.Events.Filter(func(ev race.Event) bool { return len(wanted) == 0 || wanted[ev.Kind] })
	for _, ev := range shown {
		detail := ""
		switch ev.Kind {
		case race.EventPitStop:
			detail = fmt.Sprintf("Pit stop %.1fs", ev.Duration)
		case race.EventOvertake:
			detail = "Passes " + r.driverLabel(ev.Other)
		case race.EventIncident:
			detail = r.paint(ev.Incident.Description(), text.FgRed)
		}
		t.AppendRow(table.Row{ev.Lap, r.driverLabel(ev.DriverID), detail})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d of %d events", len(shown), res.Events.Len())})
	t.Render()
	return b.String()
}

func (r *Renderer) StandingsRows(standings []championship.Standing, drivers bool) []table.Row {
	rows := []table.Row{}
	for _, s := range standings {
		name := s.Name
		if drivers {
			name = r.driverLabel(s.ID)
		}
		row := table.Row{s.Position, name}
		if drivers {
			row = append(row, r.teamName(s.TeamID))
		}
		rows = append(rows, append(row, s.Wins, s.Podiums, s.Points))
	}
	return rows
}

func (r *Renderer) DriverStandings(standings []championship.Standing) string {
	var b bytes.Buffer
	t := newTable(&b, "Drivers' Championship")
	t.AppendHeader(table.Row{tablePos, tableDriver, tableTeam, "Wins", "Podiums", tablePoints})
	t.AppendRows(r.StandingsRows(standings, true))
	t.Render()
	return b.String()
}

func (r *Renderer) TeamStandings(standings []championship.Standing) string {
	var b bytes.Buffer
	t := newTable(&b, "Constructors' Championship")
	t.AppendHeader(table.Row{tablePos, tableTeam, "Wins", "Podiums", tablePoints})
	t.AppendRows(r.StandingsRows(standings, false))
	t.Render()
	return b.String()
}

func (r *Renderer) Weather(track registry.Track, w weather.Weather) string {
	var b bytes.Buffer
	t := newTable(&b, fmt.Sprintf("Weather - %s, %s", track.City, track.Country))
	cond := string(w.Condition)
	switch w.Condition {
	case weather.Wet:
		cond = r.paint(cond, text.FgBlue)
	case weather.Mixed:
		cond = r.paint(cond, text.FgCyan)
	}
	t.AppendRows([]table.Row{
		{"Condition", cond},
		{"Air", fmt.Sprintf("%.1f°C", w.AirTemp)},
		{"Track", fmt.Sprintf("%.1f°C", w.TrackTemp)},
		{"Humidity", fmt.Sprintf("%.0f%%", w.Humidity)},
		{"Wind", fmt.Sprintf("%.0f km/h", w.WindSpeed)},
		{"Rain chance", fmt.Sprintf("%.0f%%", w.RainChance)},
	})
	if w.RainIntensity > 0 {
		t.AppendRow(table.Row{"Rain intensity", fmt.Sprintf("%.1f/10", w.RainIntensity)})
	}
	t.Render()
	return b.String()
}

func Coverage(enhanced bool, cov history.Coverage) string {
	if !enhanced {
		return "Historical enhancement off, using baseline attributes\n"
	}
	return fmt.Sprintf("Historical enhancement: %s\n", cov)
}

func (r *Renderer) Drivers() string {
	var b bytes.Buffer
	t := newTable(&b, fmt.Sprintf("%d Drivers", registry.Season))
	t.AppendHeader(table.Row{"No", "Code", tableDriver, tableTeam, "Nationality", "Age", "Dry", "Wet", "Ovt", "Cons"})
	for _, d := range r.reg.Drivers() {
		name := d.Name
		if d.IsRookie() {
			name = r.paint(name+" (R)", text.FgGreen)
		}
		t.AppendRow(table.Row{
			d.Number, d.Code, name, r.teamName(d.TeamID), d.Nationality, d.Age,
			rating(d.SkillDry), rating(d.SkillWet), rating(d.Overtaking), rating(d.Consistency),
		})
	}
	t.Render()
	return b.String()
}

func (r *Renderer) Teams() string {
	var b bytes.Buffer
	t := newTable(&b, fmt.Sprintf("%d Teams", registry.Season))
	t.AppendHeader(table.Row{tableTeam, "Engine", "Drivers", "Perf", "Rel", "Pit", "Aero", "Power"})
	for _, tm := range r.reg.Teams() {
		codes := []string{}
		for _, d := range r.reg.DriversOf(tm.ID) {
			codes = append(codes, d.Code)
		}
		t.AppendRow(table.Row{
			tm.Name, tm.Engine, strings.Join(codes, ", "),
			rating(tm.Performance), rating(tm.Reliability), rating(tm.PitEfficiency), rating(tm.Aerodynamics), rating(tm.Power),
		})
	}
	t.Render()
	return b.String()
}

// Calendar lists the tracks in race order.
func (r *Renderer) Calendar() string {
	var b bytes.Buffer
	t := newTable(&b, fmt.Sprintf("%d Calendar", registry.Season))
	t.AppendHeader(table.Row{"Rd", "Date", "Id", "Circuit", "Country", "Laps", "Km", "Type", "Overtaking"})
	for i, tr := range r.reg.Calendar() {
		t.AppendRow(table.Row{
			i + 1, tr.Date.Format("Jan 02"), tr.ID, tr.Name, tr.Country, tr.Laps,
			fmt.Sprintf("%.3f", tr.LengthKm), tr.Type(), fmt.Sprintf("%d/10", tr.OvertakingDifficulty),
		})
	}
	t.Render()
	return b.String()
}

// Weekend renders the full weekend report.
func (r *Renderer) Weekend(wk *weekend.Weekend) string {
	parts := []string{
		fmt.Sprintf("%s Grand Prix weekend %s (seed %d)\n", wk.Track.Country, wk.ID, wk.Seed),
		Coverage(wk.Enhanced, wk.Coverage),
		r.Weather(wk.Track, wk.Weather),
		r.Qualifying(wk.Track, wk.Qualifying),
		r.Race(wk.Track, wk.Race),
		r.Podium(wk.Race),
	}
	if len(wk.Race.Retirements()) > 0 {
		parts = append(parts, r.Events(wk.Race, race.EventIncident))
	}
	return strings.Join(parts, "\n")
}

func rating(v float64) string {
	return fmt.Sprintf("%.0f", v*100)
}
