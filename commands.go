package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"f1weekendsim/pkg/layout"
	"f1weekendsim/pkg/race"
	"f1weekendsim/pkg/registry"
	"f1weekendsim/pkg/report"
	"f1weekendsim/pkg/resources"
	"f1weekendsim/pkg/settings"
	"f1weekendsim/pkg/weather"
	"f1weekendsim/pkg/weekend"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	debug    bool
	noColor  bool
	logFile  string
	cacheDB  string
	apiURL   string
	seasons  string
	weight   float64
	outDir   string
	announce bool

	flags *cobra.Command
}

// settings reads the environment and applies the flags given explicitly.
func (o *rootOptions) settings() (settings.Settings, error) {
	s, err := settings.FromEnv()
	if err != nil {
		return s, err
	}
	changed := o.flags.PersistentFlags().Changed
	if o.debug {
		s.LogLevel = "debug"
	}
	if o.noColor {
		s.Color = false
	}
	if changed("cache-db") {
		s.CacheDB = o.cacheDB
	}
	if changed("api") {
		s.APIBaseURL = strings.TrimRight(o.apiURL, "/")
	}
	if changed("seasons") {
		if s.Seasons, err = settings.ParseSeasons(o.seasons); err != nil {
			return s, err
		}
	}
	if changed("weight") {
		if o.weight < 0 || o.weight > 1 {
			return s, registry.Invalid("blend weight", strconv.FormatFloat(o.weight, 'f', -1, 64))
		}
		s.BlendWeight = o.weight
	}
	if changed("out") {
		s.OutputDir = o.outDir
	}
	return s, nil
}

type runOptions struct {
	seed    uint64
	weather string
	drivers []string
	teams   []string
	enhance bool
	retire  []string
	chart   string
	events  bool
}

func (o *runOptions) request(cmd *cobra.Command, trackID string) (weekend.Request, error) {
	req := weekend.Request{
		TrackID:   trackID,
		DriverIDs: o.drivers,
		Seed:      o.seed,
		Enhance:   o.enhance,
	}
	if !cmd.Flags().Changed("seed") {
		req.Seed = uint64(time.Now().UnixNano())
	}
	if o.weather != "" {
		c, err := weather.ParseCondition(o.weather)
		if err != nil {
			return req, err
		}
		req.Condition = c
	}
	for _, r := range o.retire {
		f, err := parseRetirement(r)
		if err != nil {
			return req, err
		}
		req.Forced = append(req.Forced, f)
	}
	switch o.chart {
	case "", resources.KindPNG, resources.KindSVG:
	default:
		return req, registry.Invalid("chart format", o.chart)
	}
	return req, nil
}

// parseRetirement reads driver@lap, optionally followed by :incident or
// :mechanical, the default.
func parseRetirement(v string) (race.Forced, error) {
	id, rest, ok := strings.Cut(v, "@")
	if !ok || id == "" {
		return race.Forced{}, registry.Invalid("retirement", v)
	}
	lapStr, kind, _ := strings.Cut(rest, ":")
	lap, err := strconv.Atoi(lapStr)
	if err != nil || lap < 1 {
		return race.Forced{}, registry.Invalid("retirement lap", v)
	}
	f := race.Forced{DriverID: id, Lap: lap, State: race.RetiredMechanical}
	switch strings.ToLower(kind) {
	case "", "mechanical":
	case "incident":
		f.State = race.RetiredIncident
	default:
		return race.Forced{}, registry.Invalid("retirement kind", kind)
	}
	return f, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "f1weekendsim",
		Short:        "Simulate Formula 1 race weekends",
		SilenceUsage: true,
	}
	opts.flags = cmd
	pf := cmd.PersistentFlags()
	pf.BoolVar(&opts.debug, "debug", false, "debug logging")
	pf.BoolVar(&opts.noColor, "no-color", false, "plain output")
	pf.StringVar(&opts.logFile, "log-file", "", "also write logs to this file")
	pf.StringVar(&opts.cacheDB, "cache-db", "", "historical results cache (sqlite)")
	pf.StringVar(&opts.apiURL, "api", "", "Ergast compatible API base URL")
	pf.StringVar(&opts.seasons, "seasons", "", "historical seasons to blend, e.g. 2022-2024")
	pf.Float64Var(&opts.weight, "weight", 0, "share of historical data when blending, 0-1")
	pf.StringVar(&opts.outDir, "out", "", "directory for charts")
	pf.BoolVar(&opts.announce, "announce", false, "print an announcement after every race")

	cmd.AddCommand(
		newWeekendCmd(opts),
		newSeasonCmd(opts),
		newDriversCmd(opts),
		newTeamsCmd(opts),
		newTracksCmd(opts),
	)
	return cmd
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	f := cmd.Flags()
	f.Uint64Var(&o.seed, "seed", 0, "random seed, defaults to the clock")
	f.StringVar(&o.weather, "weather", "", "force dry, wet or mixed")
	f.StringSliceVar(&o.drivers, "drivers", nil, "restrict the field to these driver ids")
	f.StringSliceVar(&o.teams, "teams", nil, "restrict the field to these teams' drivers, by id or name")
	f.BoolVar(&o.enhance, "enhance", false, "blend historical results into the ratings")
	f.StringVar(&o.chart, "chart", "", "write a position chart: png or svg")
}

func newWeekendCmd(root *rootOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "weekend <track>",
		Short: "Simulate qualifying and the race at one track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := o.request(cmd, args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), root, cmd.OutOrStdout(), cmd.ErrOrStderr(), o.enhance)
			if err != nil {
				return err
			}
			defer a.Close()
			if req.DriverIDs, err = a.teamDrivers(req.DriverIDs, o.teams); err != nil {
				return err
			}

			wk, err := a.runner.Run(cmd.Context(), req)
			a.flushAnnouncements()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, a.renderer.Weekend(wk))
			if o.events {
				fmt.Fprint(out, a.renderer.Events(wk.Race))
			}
			return a.chart(cmd, wk, o.chart)
		},
	}
	addRunFlags(cmd, o)
	cmd.Flags().StringArrayVar(&o.retire, "retire", nil, "force a retirement, driver@lap[:incident]")
	cmd.Flags().BoolVar(&o.events, "events", false, "print the full race log")
	return cmd
}

func (a *app) chart(cmd *cobra.Command, wk *weekend.Weekend, kind string) error {
	if kind == "" {
		return nil
	}
	chart := layout.FromRace(a.reg, wk.Track, wk.Race)
	r, err := resources.BuildRaceChart(a.settings.OutputDir, wk.Key(), kind, chart, a.logger)
	if err != nil {
		return err
	}
	if r.Built() {
		fmt.Fprintf(cmd.OutOrStdout(), "Position chart: %s\n", r.FilePath())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Position chart: %s (unchanged)\n", r.FilePath())
	}
	return nil
}

func newSeasonCmd(root *rootOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "season [tracks...]",
		Short: "Simulate several weekends in calendar order and keep the standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := o.request(cmd, "")
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), root, cmd.OutOrStdout(), cmd.ErrOrStderr(), o.enhance)
			if err != nil {
				return err
			}
			defer a.Close()
			if tmpl.DriverIDs, err = a.teamDrivers(tmpl.DriverIDs, o.teams); err != nil {
				return err
			}

			wks, err := a.runner.Season(cmd.Context(), args, tmpl)
			a.flushAnnouncements()
			out := cmd.OutOrStdout()
			for _, wk := range wks {
				fmt.Fprint(out, a.renderer.Race(wk.Track, wk.Race))
				if cerr := a.chart(cmd, wk, o.chart); cerr != nil {
					return cerr
				}
			}
			if err != nil {
				return err
			}
			if len(wks) > 0 && wks[0].Enhanced {
				fmt.Fprint(out, "\n", report.Coverage(true, wks[0].Coverage))
			}
			tracker := a.runner.Tracker()
			fmt.Fprint(out, "\n", a.renderer.DriverStandings(tracker.Drivers()))
			fmt.Fprint(out, "\n", a.renderer.TeamStandings(tracker.Teams()))
			return nil
		},
	}
	addRunFlags(cmd, o)
	return cmd
}

func newDriversCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List the driver roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listing(cmd, root, func(a *app) string { return a.renderer.Drivers() })
		},
	}
}

func newTeamsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List the teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listing(cmd, root, func(a *app) string { return a.renderer.Teams() })
		},
	}
}

func newTracksCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List the calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listing(cmd, root, func(a *app) string { return a.renderer.Calendar() })
		},
	}
}

func listing(cmd *cobra.Command, root *rootOptions, render func(*app) string) error {
	a, err := newApp(cmd.Context(), root, cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer a.Close()
	fmt.Fprint(cmd.OutOrStdout(), render(a))
	return nil
}
