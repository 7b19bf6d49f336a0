package history

import (
	"context"
	"fmt"

	"f1weekendsim/pkg/logger"
	"f1weekendsim/pkg/registry"

	"github.com/charmbracelet/log"
)

// DefaultWeight is the share given to historical values when blending.
const DefaultWeight = 0.7

// Blend mixes a baseline and a historical value. The result always lies
// between the two for weights in [0,1].
func Blend(fict, hist, weight float64) float64 {
	return registry.Clamp((1-weight)*fict + weight*hist)
}

// Coverage tells how many entities got historical values.
type Coverage struct {
	DriversEnhanced int
	DriversTotal    int
	TeamsEnhanced   int
	TeamsTotal      int
}

func (c Coverage) String() string {
	return fmt.Sprintf("%d/%d drivers enhanced, %d/%d teams enhanced", c.DriversEnhanced, c.DriversTotal, c.TeamsEnhanced, c.TeamsTotal)
}

// ProgressFunc is called after every entity lookup.
type ProgressFunc func(kind Kind, id string, enhanced bool)

type Blender struct {
	provider Provider
	seasons  []int
	weight   float64
	logger   *log.Logger
	progress ProgressFunc
}

type BlenderOption func(*Blender)

func WithWeight(w float64) BlenderOption {
	return func(b *Blender) {
		b.weight = registry.Clamp(w)
	}
}

func WithBlendLogger(l *log.Logger) BlenderOption {
	return func(b *Blender) {
		b.logger = l
	}
}

func WithProgress(fn ProgressFunc) BlenderOption {
	return func(b *Blender) {
		b.progress = fn
	}
}

func NewBlender(p Provider, seasons []int, opts ...BlenderOption) *Blender {
	b := &Blender{
		provider: p,
		seasons:  seasons,
		weight:   DefaultWeight,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logger.OrDiscard(b.logger)
	return b
}

// Lookups returns the number of entities Enhance will look up.
func Lookups(reg *registry.Registry) int {
	return len(reg.Drivers()) + len(reg.Teams())
}

// Enhance returns a copy of reg with historical values blended in. Missing
// records and provider failures leave the baseline untouched; reg itself is
// never modified.
func (b *Blender) Enhance(ctx context.Context, reg *registry.Registry) (*registry.Registry, Coverage) {
	out := reg.Clone()
	cov := Coverage{}

	for _, d := range out.Drivers() {
		cov.DriversTotal++
		st, ok := b.lookup(ctx, KindDriver, d.ID, d.HistoricalID)
		if !ok {
			continue
		}
		if err := out.UpdateDriver(ApplyDriver(d, st, b.weight)); err != nil {
			b.logger.Debug("could not apply historical data", "kind", KindDriver, "id", d.ID, "err", err)
			continue
		}
		cov.DriversEnhanced++
	}

	for _, t := range out.Teams() {
		cov.TeamsTotal++
		st, ok := b.lookup(ctx, KindTeam, t.ID, t.HistoricalID)
		if !ok {
			continue
		}
		if err := out.UpdateTeam(ApplyTeam(t, st, b.weight)); err != nil {
			b.logger.Debug("could not apply historical data", "kind", KindTeam, "id", t.ID, "err", err)
			continue
		}
		cov.TeamsEnhanced++
	}

	b.logger.Info("historical data blended", "coverage", cov.String())
	return out, cov
}

func (b *Blender) lookup(ctx context.Context, kind Kind, id, historicalID string) (*Stats, bool) {
	found := false
	defer func() {
		if b.progress != nil {
			b.progress(kind, id, found)
		}
	}()

	if historicalID == "" || ctx.Err() != nil {
		return nil, false
	}
	st, ok, err := b.provider.FetchStats(ctx, b.seasons, kind, historicalID)
	if err != nil {
		b.logger.Debug("historical data unavailable, keeping baseline", "kind", kind, "id", id, "err", err)
		return nil, false
	}
	if !ok || st == nil || len(st.Ratings) == 0 {
		b.logger.Debug("no historical record, keeping baseline", "kind", kind, "id", id)
		return nil, false
	}
	found = true
	return st, true
}

func ApplyDriver(d registry.Driver, st *Stats, w float64) registry.Driver {
	for attr, v := range st.Ratings {
		switch attr {
		case SkillDry:
			d.SkillDry = Blend(d.SkillDry, v, w)
		case Overtaking:
			d.Overtaking = Blend(d.Overtaking, v, w)
		case Consistency:
			d.Consistency = Blend(d.Consistency, v, w)
		case Aggression:
			d.Aggression = Blend(d.Aggression, v, w)
		}
	}
	return d
}

func ApplyTeam(t registry.Team, st *Stats, w float64) registry.Team {
	for attr, v := range st.Ratings {
		switch attr {
		case Performance:
			t.Performance = Blend(t.Performance, v, w)
		case Reliability:
			t.Reliability = Blend(t.Reliability, v, w)
		}
	}
	return t
}
