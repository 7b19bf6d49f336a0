package settings

import (
	"os"
	"strconv"
	"strings"
	"time"

	"f1weekendsim/pkg/history"
	"f1weekendsim/pkg/resources"

	"github.com/pkg/errors"
)

const (
	EnvCacheDB     = "F1SIM_CACHE_DB"
	EnvAPIBaseURL  = "F1SIM_API_BASE_URL"
	EnvSeasons     = "F1SIM_SEASONS"
	EnvHTTPTimeout = "F1SIM_HTTP_TIMEOUT"
	EnvOutputDir   = "F1SIM_OUTPUT_DIR"
	EnvLogLevel    = "F1SIM_LOG_LEVEL"
	EnvBlendWeight = "F1SIM_BLEND_WEIGHT"
	EnvNoColor     = "NO_COLOR"
)

// DefaultSeasons are the seasons blended into the baseline ratings.
var DefaultSeasons = []int{2022, 2023, 2024}

type Settings struct {
	CacheDB     string        // sqlite file for fetched results
	APIBaseURL  string        // Ergast compatible API
	Seasons     []int         // historical seasons to blend
	HTTPTimeout time.Duration // per request
	OutputDir   string        // charts
	LogLevel    string
	BlendWeight float64 // share of historical data, 0-1
	Color       bool
}

func Defaults() Settings {
	return Settings{
		CacheDB:     history.DefaultCacheDB,
		APIBaseURL:  history.DefaultBaseURL,
		Seasons:     append([]int(nil), DefaultSeasons...),
		HTTPTimeout: history.DefaultTimeout,
		OutputDir:   resources.ResourcesDir,
		LogLevel:    "info",
		BlendWeight: history.DefaultWeight,
		Color:       true,
	}
}

// FromEnv returns the defaults overridden by any F1SIM_* variables set.
// Malformed values are reported rather than ignored.
func FromEnv() (Settings, error) {
	s := Defaults()
	if v := os.Getenv(EnvCacheDB); v != "" {
		s.CacheDB = v
	}
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		s.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(EnvSeasons); v != "" {
		seasons, err := ParseSeasons(v)
		if err != nil {
			return s, errors.Wrap(err, EnvSeasons)
		}
		s.Seasons = seasons
	}
	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, errors.Wrap(err, EnvHTTPTimeout)
		}
		s.HTTPTimeout = d
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		s.OutputDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvBlendWeight); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil || w < 0 || w > 1 {
			return s, errors.Errorf("%s: weight must be between 0 and 1, got %q", EnvBlendWeight, v)
		}
		s.BlendWeight = w
	}
	if os.Getenv(EnvNoColor) != "" {
		s.Color = false
	}
	return s, nil
}

// ParseSeasons reads a comma separated list of years, with optional
// ranges such as "2021-2024".
func ParseSeasons(v string) ([]int, error) {
	seasons := []int{}
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, isRange := strings.Cut(part, "-")
		first, err := parseYear(from)
		if err != nil {
			return nil, err
		}
		last := first
		if isRange {
			if last, err = parseYear(to); err != nil {
				return nil, err
			}
		}
		if last < first {
			return nil, errors.Errorf("invalid season range %q", part)
		}
		for y := first; y <= last; y++ {
			seasons = append(seasons, y)
		}
	}
	if len(seasons) == 0 {
		return nil, errors.Errorf("no seasons in %q", v)
	}
	return seasons, nil
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y < 1950 || y > 2100 {
		return 0, errors.Errorf("invalid season %q", s)
	}
	return y, nil
}
