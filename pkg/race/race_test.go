package race

import (
	"math"
	"math/rand/v2"
	"reflect"
	"sort"
	"testing"

	"f1weekendsim/pkg/qualifying"
	"f1weekendsim/pkg/registry"
	"f1weekendsim/pkg/weather"
)

type fixture struct {
	reg   *registry.Registry
	track registry.Track
	w     weather.Weather
	grid  []string
}

func newFixture(t *testing.T, trackID string, cond weather.Condition, seed uint64) fixture {
	t.Helper()
	reg := registry.Default()
	tr, err := reg.Track(trackID)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	rng := rand.New(rand.NewPCG(seed, 1))
	w := weather.NewGenerator(rng).Generate(tr, weather.Options{Force: cond})
	q := qualifying.Simulate(reg, tr, w, rng)
	return fixture{reg: reg, track: tr, w: w, grid: q.Order()}
}

func (f fixture) run(seed uint64, opts Options) Result {
	return Simulate(f.reg, f.track, f.w, f.grid, rand.New(rand.NewPCG(seed, 2)), opts)
}

func TestFinishingOrderIsPermutationOfGrid(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		f := newFixture(t, "bahrain", weather.Dry, seed)
		res := f.run(seed, Options{})

		got := []string{}
		for i, e := range res.Classification {
			if e.Position != i+1 {
				t.Fatalf("seed %d: row %d has position %d", seed, i, e.Position)
			}
			got = append(got, e.DriverID)
		}
		want := append([]string(nil), f.grid...)
		sort.Strings(got)
		sort.Strings(want)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("seed %d: classification %v is not a permutation of the grid", seed, got)
		}
	}
}

func TestSameSeedSameRace(t *testing.T) {
	f := newFixture(t, "britain", weather.Mixed, 5)
	a := f.run(99, Options{})
	b := f.run(99, Options{})
	if !reflect.DeepEqual(a.Classification, b.Classification) {
		t.Fatal("same seed produced different classifications")
	}
	if !reflect.DeepEqual(a.PositionsByLap, b.PositionsByLap) {
		t.Fatal("same seed produced different lap charts")
	}
}

func TestPointsComeFromTheTable(t *testing.T) {
	allowed := map[int]bool{0: true}
	for _, p := range PointsTable {
		allowed[p] = true
	}
	for seed := uint64(1); seed <= 30; seed++ {
		f := newFixture(t, "singapore", weather.Wet, seed)
		res := f.run(seed, Options{})

		total, finishers := 0, 0
		for _, e := range res.Classification {
			if !allowed[e.Points] {
				t.Fatalf("seed %d: %s got %d points", seed, e.DriverID, e.Points)
			}
			if e.State.Retired() && e.Points != 0 {
				t.Fatalf("seed %d: retiree %s scored", seed, e.DriverID)
			}
			if e.State == Finished {
				finishers++
			}
			total += e.Points
		}
		switch {
		case finishers >= len(PointsTable) && total != TablePoints():
			t.Fatalf("seed %d: %d finishers but %d points awarded", seed, finishers, total)
		case total > TablePoints():
			t.Fatalf("seed %d: %d points awarded", seed, total)
		}
	}
}

func TestForcedMechanicalRetirement(t *testing.T) {
	f := newFixture(t, "monaco", weather.Dry, 2025)
	victim := f.grid[0]
	res := f.run(2025, Options{Forced: []Forced{{DriverID: victim, Lap: 10, State: RetiredMechanical}}})

	e, ok := res.Entry(victim)
	if !ok {
		t.Fatal("retired driver missing from classification")
	}
	if e.State != RetiredMechanical || e.RetiredLap != 10 || e.Laps != 9 {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Points != 0 {
		t.Fatalf("retired driver scored %d", e.Points)
	}
	for _, other := range res.Classification {
		if other.State == Finished && other.Position > e.Position {
			t.Fatalf("finisher %s classified below the retiree", other.DriverID)
		}
	}
	for lap, order := range res.PositionsByLap {
		for _, id := range order {
			if id == victim && lap+1 >= 10 {
				t.Fatalf("retired driver still running after lap %d", lap+1)
			}
		}
	}
}

func TestRetireesOrderedByLapsCompleted(t *testing.T) {
	f := newFixture(t, "austria", weather.Dry, 3)
	res := f.run(3, Options{Forced: []Forced{
		{DriverID: f.grid[0], Lap: 5, State: RetiredMechanical},
		{DriverID: f.grid[1], Lap: 40, State: RetiredIncident},
		{DriverID: f.grid[2], Lap: 20, State: RetiredMechanical},
	}})

	rets := res.Retirements()
	for i := 1; i < len(rets); i++ {
		if rets[i].Laps > rets[i-1].Laps {
			t.Fatalf("retirees out of order: %+v before %+v", rets[i-1], rets[i])
		}
	}
	for _, id := range f.grid[:3] {
		if e, _ := res.Entry(id); !e.State.Retired() || e.RetiredLap > 40 {
			t.Fatalf("expected %s retired by lap 40, got %+v", id, e)
		}
	}
}

func TestEveryoneRetiringDoesNotAbort(t *testing.T) {
	f := newFixture(t, "monza", weather.Dry, 8)
	forced := []Forced{}
	for _, id := range f.grid {
		forced = append(forced, Forced{DriverID: id, Lap: 1, State: RetiredMechanical})
	}
	res := f.run(8, Options{Forced: forced})
	if len(res.Classification) != len(f.grid) {
		t.Fatalf("expected %d rows, got %d", len(f.grid), len(res.Classification))
	}
	for _, e := range res.Classification {
		if e.Points != 0 || e.State != RetiredMechanical {
			t.Fatalf("unexpected row %+v", e)
		}
	}
	if _, ok := res.FastestLap(); ok {
		t.Fatal("fastest lap awarded without any completed lap")
	}
	if len(res.Podium()) != 0 {
		t.Fatal("podium without finishers")
	}
}

func TestClassificationDetails(t *testing.T) {
	f := newFixture(t, "spain", weather.Dry, 12)
	res := f.run(12, Options{})

	if len(res.PositionsByLap) != f.track.Laps {
		t.Fatalf("expected %d laps of positions, got %d", f.track.Laps, len(res.PositionsByLap))
	}

	fastest := 0
	prevTime := 0.0
	for _, e := range res.Classification {
		if e.FastestLap {
			fastest++
		}
		if e.State != Finished {
			continue
		}
		if e.Time < prevTime {
			t.Fatalf("%s finished ahead with a slower total time", e.DriverID)
		}
		prevTime = e.Time
		if e.Gap < 0 {
			t.Fatalf("%s has negative gap", e.DriverID)
		}
		if e.PitStops < 1 {
			t.Fatalf("%s finished without stopping", e.DriverID)
		}
	}
	if fastest != 1 {
		t.Fatalf("expected exactly one fastest lap, got %d", fastest)
	}
	if res.Winner().Gap != 0 || res.Winner().State != Finished {
		t.Fatalf("unexpected winner row %+v", res.Winner())
	}
	if res.Events.Len() == 0 {
		t.Fatal("expected race events")
	}
}

func TestOvertakeModel(t *testing.T) {
	if OvertakeProbability(0.9, 10) >= OvertakeProbability(0.9, 3) {
		t.Fatal("harder track should lower overtake probability")
	}
	if OvertakeProbability(0.95, 5) <= OvertakeProbability(0.7, 5) {
		t.Fatal("better overtaker should raise overtake probability")
	}
	for d := 1; d <= 10; d++ {
		if p := OvertakeProbability(1, d); p < 0.02 || p > 0.95 {
			t.Fatalf("probability %v out of bounds", p)
		}
	}
	if OvertakeThreshold(10) <= OvertakeThreshold(1) {
		t.Fatal("threshold should grow with difficulty")
	}
}

func TestIncidentProbabilities(t *testing.T) {
	reg := registry.Default()
	d, _ := reg.Driver("bortoleto")
	dry := weather.Weather{Condition: weather.Dry}
	wet := weather.Weather{Condition: weather.Wet, RainIntensity: 8}

	if ErrorProbability(d, wet, 30, 60) <= ErrorProbability(d, dry, 30, 60) {
		t.Fatal("wet should raise error probability")
	}
	if ErrorProbability(d, dry, 1, 60) <= ErrorProbability(d, dry, 30, 60) {
		t.Fatal("opening laps should be riskier")
	}
	d.Consistency = 0
	d.Aggression = 1
	if p := ErrorProbability(d, wet, 1, 60); p != 0.15 {
		t.Fatalf("expected cap at 0.15, got %v", p)
	}

	good, _ := reg.Team("mercedes")
	bad, _ := reg.Team("haas")
	if MechanicalProbability(good) >= MechanicalProbability(bad) {
		t.Fatal("reliable team should fail less")
	}
}

func TestPointsFor(t *testing.T) {
	if PointsFor(1, Finished) != 25 || PointsFor(10, Finished) != 1 || PointsFor(11, Finished) != 0 {
		t.Fatal("points table mismatch")
	}
	if PointsFor(1, RetiredIncident) != 0 {
		t.Fatal("retirement scored")
	}
	if TablePoints() != 101 {
		t.Fatalf("table total %d", TablePoints())
	}
}

func TestPaceScalesWithWeatherImpact(t *testing.T) {
	reg := registry.Default()
	tr, _ := reg.Track("belgium")
	d, _ := reg.Driver("russell")
	c := &car{driver: d, team: reg.TeamOf(d)}
	raw := BaseLapTime(tr) + 3*(1-d.Overall()) + 2.5*(1-c.team.CarRating())

	dry := &simulation{track: tr, weather: weather.Weather{Condition: weather.Dry, TrackTemp: 30}}
	if got, want := dry.pace(c), raw+0.5*(1-d.SkillDry); math.Abs(got-want) > 1e-9 {
		t.Fatalf("dry pace %v, want %v", got, want)
	}

	storm := weather.Weather{Condition: weather.Wet, RainIntensity: 9}
	wet := &simulation{track: tr, weather: storm}
	if got, want := wet.pace(c), (raw+1.5*(1-d.SkillWet))*1.2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("heavy rain pace %v, want %v", got, want)
	}
}
