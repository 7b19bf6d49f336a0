package notification

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"f1weekendsim/pkg/championship"
	"f1weekendsim/pkg/pubsub"
	"f1weekendsim/pkg/race"
	"f1weekendsim/pkg/registry"
)

func testResult() race.Result {
	return race.Result{
		TrackID: "monza",
		Classification: []race.Entry{
			{Position: 1, DriverID: "leclerc", TeamID: "ferrari", State: race.Finished, Points: 25},
			{Position: 2, DriverID: "norris", TeamID: "mclaren", State: race.Finished, Points: 18},
			{Position: 3, DriverID: "hamilton", TeamID: "ferrari", State: race.Finished, Points: 15},
			{Position: 4, DriverID: "verstappen", TeamID: "red_bull", State: race.RetiredIncident},
		},
	}
}

func TestManagerAnnouncesRaces(t *testing.T) {
	reg := registry.Default()
	ps := pubsub.NewPubSub[championship.RaceCompleted]()
	var b bytes.Buffer
	m := NewManager(context.Background(), reg, ps, nil, NewConsole(&b))

	done := make(chan struct{})
	go func() {
		m.Start(make(chan bool))
		close(done)
	}()

	championship.NewTracker(reg, ps).Record(testResult())
	ps.Close()
	<-done

	out := b.String()
	for _, want := range []string{"Round 1: Autodromo Nazionale Monza", "P1 Charles Leclerc (Ferrari)", "P3 Lewis Hamilton (Ferrari)", "Championship leader: Charles Leclerc, 25 pts"} {
		if !strings.Contains(out, want) {
			t.Fatalf("announcement missing %q:\n%s", want, out)
		}
	}
}

func TestAnnouncementWithoutFinishers(t *testing.T) {
	subject, msg := Announcement(registry.Default(), championship.RaceCompleted{Round: 4, TrackID: "unknown"})
	if subject != "Round 4: unknown" || msg != "No classified finishers" {
		t.Fatalf("got %q / %q", subject, msg)
	}
}

func TestConsoleRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var b bytes.Buffer
	if err := NewConsole(&b).Send(ctx, "s", "m"); err == nil {
		t.Fatal("expected an error")
	}
	if b.Len() != 0 {
		t.Fatal("wrote despite cancellation")
	}
}

func TestManagerUnsubscribesOnExit(t *testing.T) {
	reg := registry.Default()
	// unbuffered: a publish to a live subscriber nobody reads would block
	ps := pubsub.NewBufferedPubSub[championship.RaceCompleted](0)
	var b bytes.Buffer
	m := NewManager(context.Background(), reg, ps, nil, NewConsole(&b))

	exit := make(chan bool)
	done := make(chan struct{})
	go func() {
		m.Start(exit)
		close(done)
	}()
	close(exit)
	<-done

	championship.NewTracker(reg, ps).Record(testResult())
	if b.Len() != 0 {
		t.Fatalf("announced after exit:\n%s", b.String())
	}
}
