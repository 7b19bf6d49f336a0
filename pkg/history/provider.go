package history

import (
	"context"

	"f1weekendsim/pkg/logger"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// Provider returns the historical record of a driver or team over the given
// seasons. found is false when there is not enough data.
type Provider interface {
	FetchStats(ctx context.Context, seasons []int, kind Kind, id string) (stats *Stats, found bool, err error)
}

// Source builds Stats from per-season results.
type Source struct {
	fetcher Fetcher
	logger  *log.Logger
}

func NewSource(f Fetcher, l *log.Logger) *Source {
	return &Source{fetcher: f, logger: logger.OrDiscard(l)}
}

// FetchStats skips seasons that fail to load. It only returns an error when
// nothing could be loaded at all.
func (s *Source) FetchStats(ctx context.Context, seasons []int, kind Kind, id string) (*Stats, bool, error) {
	entries := []RaceEntry{}
	var lastErr error
	loaded := 0
	for _, season := range seasons {
		es, err := s.fetcher.Results(ctx, season, kind, id)
		if err != nil {
			s.logger.Debug("season unavailable", "kind", kind, "id", id, "season", season, "err", err)
			lastErr = err
			continue
		}
		loaded++
		entries = append(entries, es...)
	}
	if loaded == 0 && lastErr != nil {
		return nil, false, errors.Wrapf(lastErr, "no results for %s %s", kind, id)
	}

	if kind == KindTeam {
		st, ok := TeamStats(id, entries)
		return st, ok, nil
	}
	st, ok := DriverStats(id, entries)
	return st, ok, nil
}
