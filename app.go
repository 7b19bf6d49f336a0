package main

import (
	"context"
	"io"
	"os"
	"strings"

	"f1weekendsim/pkg/championship"
	"f1weekendsim/pkg/history"
	"f1weekendsim/pkg/logger"
	"f1weekendsim/pkg/notification"
	"f1weekendsim/pkg/pubsub"
	"f1weekendsim/pkg/registry"
	"f1weekendsim/pkg/report"
	"f1weekendsim/pkg/settings"
	"f1weekendsim/pkg/weekend"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// app holds everything a command needs, wired from settings and flags.
type app struct {
	settings settings.Settings
	logger   *log.Logger
	logFile  *os.File
	reg      *registry.Registry
	renderer *report.Renderer
	runner   *weekend.Runner
	store    *history.Store

	ps        *pubsub.PubSub[championship.RaceCompleted]
	announced chan struct{}
}

func newApp(ctx context.Context, opts *rootOptions, out, errOut io.Writer, enhance bool) (*app, error) {
	s, err := opts.settings()
	if err != nil {
		return nil, err
	}

	a := &app{settings: s, reg: registry.Default()}
	if opts.logFile != "" {
		a.logger, a.logFile, err = logger.NewFile(errOut, opts.logFile, s.LogLevel)
		if err != nil {
			return nil, errors.Wrap(err, "opening log file")
		}
	} else {
		a.logger = logger.New(errOut, s.LogLevel)
	}
	if err := a.reg.Validate(); err != nil {
		a.Close()
		return nil, errors.Wrap(err, "static data")
	}
	a.renderer = report.NewRenderer(a.reg, s.Color)

	runnerOpts := []weekend.Option{weekend.WithLogger(a.logger)}

	if opts.announce {
		a.ps = pubsub.NewPubSub[championship.RaceCompleted]()
		runnerOpts = append(runnerOpts, weekend.WithTracker(championship.NewTracker(a.reg, a.ps)))
		m := notification.NewManager(ctx, a.reg, a.ps, a.logger, notification.NewConsole(out))
		a.announced = make(chan struct{})
		go func() {
			defer close(a.announced)
			// returns once Close shuts the pubsub down
			m.Start(nil)
		}()
	}

	if enhance {
		enhancer, err := a.enhancer(errOut)
		if err != nil {
			a.Close()
			return nil, err
		}
		runnerOpts = append(runnerOpts, weekend.WithEnhancer(enhancer))
	}

	a.runner = weekend.NewRunner(a.reg, runnerOpts...)
	return a, nil
}

// enhancer wires the historical data path: API client behind a breaker, the
// sqlite cache, the stats source and the blender, reporting progress to w.
func (a *app) enhancer(w io.Writer) (weekend.Enhancer, error) {
	store, err := history.NewStore(a.settings.CacheDB)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache %s", a.settings.CacheDB)
	}
	a.store = store
	if n, err := store.Len(); err == nil {
		a.logger.Debug("history cache opened", "path", a.settings.CacheDB, "entries", n)
	}

	client := history.NewClient(
		history.WithBaseURL(a.settings.APIBaseURL),
		history.WithTimeout(a.settings.HTTPTimeout),
		history.WithLogger(a.logger),
	)
	source := history.NewSource(history.NewCache(store, client, a.logger), a.logger)

	drivers, teams := len(a.reg.Drivers()), len(a.reg.Teams())
	progress := report.NewFetchProgress(w, drivers, teams)
	blender := history.NewBlender(source, a.settings.Seasons,
		history.WithWeight(a.settings.BlendWeight),
		history.WithBlendLogger(a.logger),
		history.WithProgress(progress.Update),
	)
	return &progressEnhancer{blender: blender, progress: progress}, nil
}

type progressEnhancer struct {
	blender  *history.Blender
	progress *report.FetchProgress
}

func (e *progressEnhancer) Enhance(ctx context.Context, reg *registry.Registry) (*registry.Registry, history.Coverage) {
	e.progress.Start()
	defer e.progress.Stop()
	return e.blender.Enhance(ctx, reg)
}

// flushAnnouncements stops the pubsub and waits until every announcement has
// been written. Output written afterwards never interleaves with them.
func (a *app) flushAnnouncements() {
	if a.ps == nil {
		return
	}
	a.ps.Close()
	<-a.announced
	a.ps = nil
}

// teamDrivers resolves team names such as "Red Bull" to their drivers and
// appends them to ids, skipping drivers already listed.
func (a *app) teamDrivers(ids, teams []string) ([]string, error) {
	out := append([]string(nil), ids...)
	seen := map[string]bool{}
	for _, id := range ids {
		seen[strings.ToLower(id)] = true
	}
	for _, q := range teams {
		t, err := a.reg.FindTeam(q)
		if err != nil {
			return nil, err
		}
		for _, d := range a.reg.DriversOf(t.ID) {
			if !seen[d.ID] {
				seen[d.ID] = true
				out = append(out, d.ID)
			}
		}
	}
	return out, nil
}

// Close flushes pending announcements and releases the cache and log file.
func (a *app) Close() {
	a.flushAnnouncements()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("error closing cache", "err", err)
		}
		a.store = nil
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}
