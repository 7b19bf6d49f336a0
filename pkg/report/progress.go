package report

import (
	"fmt"
	"io"
	"time"

	"f1weekendsim/pkg/history"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// FetchProgress shows how far the historical lookup has got, one tracker for
// drivers and one for teams. Update matches history.ProgressFunc.
type FetchProgress struct {
	pw      progress.Writer
	drivers *progress.Tracker
	teams   *progress.Tracker
	found   map[history.Kind]int
}

func NewFetchProgress(w io.Writer, drivers, teams int) *FetchProgress {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(true)
	pw.SetTrackerLength(30)
	pw.SetMessageWidth(18)
	pw.SetNumTrackersExpected(2)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors = progress.StyleColorsDefault
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.ETAOverall = false
	pw.Style().Visibility.Speed = false
	pw.Style().Visibility.SpeedOverall = false
	pw.Style().Visibility.TrackerOverall = false
	pw.Style().Visibility.Pinned = false
	pw.Style().Chars.BoxRight = "🏁"

	p := &FetchProgress{
		pw:      pw,
		drivers: &progress.Tracker{Message: "Drivers", Total: int64(drivers), Units: progress.UnitsDefault},
		teams:   &progress.Tracker{Message: "Teams", Total: int64(teams), Units: progress.UnitsDefault},
		found:   map[history.Kind]int{},
	}
	pw.AppendTracker(p.drivers)
	pw.AppendTracker(p.teams)
	return p
}

const renderWait = time.Second

func (p *FetchProgress) Start() {
	go p.pw.Render()
	waitFor(func() bool { return p.pw.IsRenderInProgress() })
}

// Update advances the tracker of kind and keeps its message showing how many
// records were found so far.
func (p *FetchProgress) Update(kind history.Kind, id string, enhanced bool) {
	tracker, label := p.drivers, "Drivers"
	if kind == history.KindTeam {
		tracker, label = p.teams, "Teams"
	}
	if enhanced {
		p.found[kind]++
		tracker.UpdateMessage(fmt.Sprintf("%s %d found", label, p.found[kind]))
	}
	tracker.Increment(1)
}

// Stop marks every tracker done and waits for the writer to draw the final
// state and stop on its own.
func (p *FetchProgress) Stop() {
	p.drivers.MarkAsDone()
	p.teams.MarkAsDone()
	waitFor(func() bool { return !p.pw.IsRenderInProgress() })
}

func waitFor(cond func() bool) {
	deadline := time.Now().Add(renderWait)
	for !cond() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}
