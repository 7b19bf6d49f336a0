package history

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"f1weekendsim/pkg/registry"
)

type fakeProvider struct {
	stats map[string]*Stats
	fail  map[string]bool
	calls int
}

func (p *fakeProvider) FetchStats(ctx context.Context, seasons []int, kind Kind, id string) (*Stats, bool, error) {
	p.calls++
	key := string(kind) + "/" + id
	if p.fail[key] {
		return nil, false, errors.New("api down")
	}
	st, ok := p.stats[key]
	return st, ok, nil
}

// providerCovering returns a provider with records for every entity except
// the ones listed in missing.
func providerCovering(reg *registry.Registry, missing ...string) *fakeProvider {
	skip := map[string]bool{}
	for _, m := range missing {
		skip[m] = true
	}
	p := &fakeProvider{stats: map[string]*Stats{}, fail: map[string]bool{}}
	for _, d := range reg.Drivers() {
		if !skip[d.ID] {
			p.stats["driver/"+d.HistoricalID] = &Stats{ID: d.HistoricalID, Kind: KindDriver, Races: 20, Ratings: map[Attribute]float64{
				SkillDry:    0.5,
				Consistency: 0.6,
			}}
		}
	}
	for _, tm := range reg.Teams() {
		if !skip[tm.ID] {
			p.stats["team/"+tm.HistoricalID] = &Stats{ID: tm.HistoricalID, Kind: KindTeam, Races: 40, Ratings: map[Attribute]float64{
				Reliability: 1.0,
			}}
		}
	}
	return p
}

func TestBlendStaysBetweenInputs(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		fict, hist := rng.Float64(), rng.Float64()
		got := Blend(fict, hist, DefaultWeight)
		lo, hi := min(fict, hist), max(fict, hist)
		if got < lo-1e-12 || got > hi+1e-12 {
			t.Fatalf("Blend(%v, %v) = %v outside [%v, %v]", fict, hist, got, lo, hi)
		}
	}
	if got := Blend(0.8, 0.5, 0.7); !near(got, 0.59) {
		t.Fatalf("Blend(0.8, 0.5) = %v, want 0.59", got)
	}
}

func TestEnhanceCoverage(t *testing.T) {
	base := registry.Default()
	p := providerCovering(base, "antonelli", "bortoleto", "kick_sauber", "racing_bulls")

	enhanced, cov := NewBlender(p, []int{2024}).Enhance(context.Background(), base)

	if got, want := cov.String(), "18/20 drivers enhanced, 8/10 teams enhanced"; got != want {
		t.Fatalf("coverage %q, want %q", got, want)
	}
	if cov.DriversEnhanced > cov.DriversTotal || cov.TeamsEnhanced > cov.TeamsTotal {
		t.Fatalf("coverage exceeds totals: %+v", cov)
	}

	nor, _ := enhanced.Driver("norris")
	if !near(nor.SkillDry, 0.3*0.97+0.7*0.5) {
		t.Fatalf("norris skill not blended: %v", nor.SkillDry)
	}
	if nor.SkillWet != 0.96 {
		t.Fatalf("attribute without history changed: %v", nor.SkillWet)
	}
	ant, _ := enhanced.Driver("antonelli")
	baseAnt, _ := base.Driver("antonelli")
	if ant != baseAnt {
		t.Fatalf("driver without record changed: %+v", ant)
	}
	if err := enhanced.Validate(); err != nil {
		t.Fatalf("enhanced registry invalid: %v", err)
	}
}

func TestEnhanceNeverMutatesBaseline(t *testing.T) {
	base := registry.Default()
	before := base.Drivers()
	beforeTeams := base.Teams()

	NewBlender(providerCovering(base), []int{2024}).Enhance(context.Background(), base)

	for i, d := range base.Drivers() {
		if d != before[i] {
			t.Fatalf("baseline driver %s mutated", d.ID)
		}
	}
	for i, tm := range base.Teams() {
		if tm != beforeTeams[i] {
			t.Fatalf("baseline team %s mutated", tm.ID)
		}
	}
}

func TestEnhanceFallsBackOnProviderErrors(t *testing.T) {
	base := registry.Default()
	p := providerCovering(base)
	p.fail["driver/norris"] = true
	p.fail["team/haas"] = true

	progress := 0
	enhanced, cov := NewBlender(p, []int{2024}, WithProgress(func(kind Kind, id string, ok bool) {
		progress++
	})).Enhance(context.Background(), base)

	if cov.DriversEnhanced != 19 || cov.TeamsEnhanced != 9 {
		t.Fatalf("unexpected coverage %s", cov)
	}
	nor, _ := enhanced.Driver("norris")
	baseNor, _ := base.Driver("norris")
	if nor != baseNor {
		t.Fatal("failed lookup should keep the baseline")
	}
	if progress != Lookups(base) {
		t.Fatalf("progress called %d times, want %d", progress, Lookups(base))
	}
}

func TestEnhanceStopsFetchingWhenCancelled(t *testing.T) {
	base := registry.Default()
	p := providerCovering(base)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, cov := NewBlender(p, []int{2024}).Enhance(ctx, base)
	if p.calls != 0 || cov.DriversEnhanced != 0 {
		t.Fatalf("expected no lookups after cancel, got %d calls", p.calls)
	}
	if cov.DriversTotal != 20 || cov.TeamsTotal != 10 {
		t.Fatalf("totals must still be reported: %+v", cov)
	}
}
