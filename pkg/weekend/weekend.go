package weekend

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"

	"f1weekendsim/pkg/championship"
	"f1weekendsim/pkg/helper"
	"f1weekendsim/pkg/history"
	"f1weekendsim/pkg/logger"
	"f1weekendsim/pkg/qualifying"
	"f1weekendsim/pkg/race"
	"f1weekendsim/pkg/registry"
	"f1weekendsim/pkg/weather"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

// Enhancer blends historical data into a registry. *history.Blender is the
// production implementation.
type Enhancer interface {
	Enhance(ctx context.Context, reg *registry.Registry) (*registry.Registry, history.Coverage)
}

type Request struct {
	TrackID string
	// DriverIDs restricts the field. Empty runs every driver.
	DriverIDs []string
	// Condition forces the weather. Empty draws it from the track climate.
	Condition weather.Condition
	Seed      uint64
	Enhance   bool
	Forced    []race.Forced
}

type Weekend struct {
	ID         ksuid.KSUID
	Seed       uint64
	Track      registry.Track
	Weather    weather.Weather
	Qualifying qualifying.Result
	Race       race.Result
	Enhanced   bool
	Coverage   history.Coverage

	inputs string
}

// Key identifies the weekend inputs. Two weekends with the same key have the
// same results, so it can name generated files.
func (w Weekend) Key() string {
	return fmt.Sprintf("%s-%d-%08x", w.Track.ID, w.Seed, uint32(helper.ToID(w.inputs)))
}

// weekendInputs covers everything that shapes the results, the finishing
// order and the blend coverage included, since two enhanced runs can share a
// grid and still race different attributes.
func weekendInputs(wk *Weekend, forced []race.Forced) string {
	finish := make([]string, 0, len(wk.Race.Classification))
	for _, e := range wk.Race.Classification {
		finish = append(finish, fmt.Sprintf("%s:%d", e.DriverID, e.Laps))
	}
	return fmt.Sprintf("%v|%v|%s|%t|%s|%v", wk.Qualifying.Order(), finish, wk.Weather.Condition, wk.Enhanced, wk.Coverage, forced)
}

type Runner struct {
	mu       sync.Mutex
	reg      *registry.Registry
	enhancer Enhancer
	tracker  *championship.Tracker
	logger   *log.Logger

	enhanced *registry.Registry
	coverage history.Coverage
}

type Option func(*Runner)

func WithEnhancer(e Enhancer) Option {
	return func(r *Runner) {
		r.enhancer = e
	}
}

func WithTracker(t *championship.Tracker) Option {
	return func(r *Runner) {
		r.tracker = t
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

func NewRunner(reg *registry.Registry, opts ...Option) *Runner {
	r := &Runner{reg: reg}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracker == nil {
		r.tracker = championship.NewTracker(reg, nil)
	}
	r.logger = logger.OrDiscard(r.logger)
	return r
}

func (r *Runner) Tracker() *championship.Tracker {
	return r.tracker
}

// Validate checks a request against the registry without simulating.
func (r *Runner) Validate(req Request) error {
	track, err := r.reg.Track(req.TrackID)
	if err != nil {
		return err
	}
	switch req.Condition {
	case "", weather.Dry, weather.Wet, weather.Mixed:
	default:
		return registry.Invalid("weather condition", string(req.Condition))
	}

	selected := map[string]bool{}
	for _, id := range req.DriverIDs {
		d, err := r.reg.Driver(id)
		if err != nil {
			return err
		}
		if selected[d.ID] {
			return registry.Invalid("duplicate driver", id)
		}
		selected[d.ID] = true
	}
	for _, f := range req.Forced {
		d, err := r.reg.Driver(f.DriverID)
		if err != nil {
			return err
		}
		if len(selected) > 0 && !selected[d.ID] {
			return registry.Invalid("retirement for driver not in the field", f.DriverID)
		}
		if f.Lap < 1 || f.Lap > track.Laps {
			return registry.Invalid("retirement lap", strconv.Itoa(f.Lap))
		}
		if !f.State.Retired() {
			return registry.Invalid("retirement state", f.State.String())
		}
	}
	return nil
}

// Run simulates one weekend: weather, qualifying and the race. The result is
// recorded in the championship.
func (r *Runner) Run(ctx context.Context, req Request) (*Weekend, error) {
	if err := r.Validate(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "weekend cancelled")
	}

	base, cov, enhanced := r.attributes(ctx, req.Enhance)
	field, err := base.SelectDrivers(req.DriverIDs)
	if err != nil {
		return nil, err
	}
	forced := make([]race.Forced, 0, len(req.Forced))
	for _, f := range req.Forced {
		// ids are matched case-insensitively by the registry
		if d, err := field.Driver(f.DriverID); err == nil {
			f.DriverID = d.ID
		}
		forced = append(forced, f)
	}
	track, _ := field.Track(req.TrackID)

	rng := rand.New(rand.NewPCG(req.Seed, req.Seed))
	w := weather.NewGenerator(rng).Generate(track, weather.Options{Force: req.Condition})
	q := qualifying.Simulate(field, track, w, rng)
	res := race.Simulate(field, track, w, q.Order(), rng, race.Options{Forced: forced})

	wk := &Weekend{
		ID:         ksuid.New(),
		Seed:       req.Seed,
		Track:      track,
		Weather:    w,
		Qualifying: q,
		Race:       res,
		Enhanced:   enhanced,
		Coverage:   cov,
	}
	wk.inputs = weekendInputs(wk, forced)
	r.tracker.Record(res)

	winner := res.Winner()
	r.logger.Info("weekend simulated",
		"id", wk.ID,
		"track", track.ID,
		"weather", w.Condition,
		"pole", q.Pole().DriverID,
		"winner", winner.DriverID,
		"retirements", len(res.Retirements()),
	)
	return wk, nil
}

// attributes returns the registry a run should use. Blending happens once per
// runner and is reused for later weekends.
func (r *Runner) attributes(ctx context.Context, enhance bool) (*registry.Registry, history.Coverage, bool) {
	if !enhance {
		return r.reg, history.Coverage{}, false
	}
	if r.enhancer == nil {
		r.logger.Warn("enhancement requested without a historical source, using baseline")
		return r.reg, history.Coverage{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enhanced == nil {
		r.enhanced, r.coverage = r.enhancer.Enhance(ctx, r.reg)
	}
	return r.enhanced, r.coverage, true
}

// Season runs a weekend per track in calendar order. No track list means the
// full calendar. Each race seed is derived from seed and the track id.
func (r *Runner) Season(ctx context.Context, trackIDs []string, tmpl Request) ([]*Weekend, error) {
	tracks := []registry.Track{}
	if len(trackIDs) == 0 {
		tracks = r.reg.Calendar()
	}
	for _, id := range trackIDs {
		t, err := r.reg.Track(id)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].Date.Before(tracks[j].Date)
	})

	for _, t := range tracks {
		req := tmpl
		req.TrackID = t.ID
		req.Forced = nil
		if err := r.Validate(req); err != nil {
			return nil, err
		}
	}

	out := []*Weekend{}
	for round, t := range tracks {
		if err := ctx.Err(); err != nil {
			return out, errors.Wrapf(err, "season stopped before round %d", round+1)
		}
		req := tmpl
		req.TrackID = t.ID
		req.Forced = nil
		req.Seed = SeedFor(tmpl.Seed, t.ID)
		wk, err := r.Run(ctx, req)
		if err != nil {
			return out, errors.Wrapf(err, "round %d %s", round+1, t.ID)
		}
		out = append(out, wk)
	}
	r.logger.Info("season complete", "races", len(out))
	return out, nil
}

// SeedFor derives a race seed from a season seed and a track id.
func SeedFor(seed uint64, trackID string) uint64 {
	return seed ^ helper.ToID(trackID)
}
