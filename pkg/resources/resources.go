package resources

import (
	"fmt"
	"os"
	"path/filepath"

	"f1weekendsim/pkg/layout"
	"f1weekendsim/pkg/logger"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

const (
	ResourcesDir = "./resources"

	KindPNG = "png"
	KindSVG = "svg"
)

type builder func(filePath string) error

type Resource struct {
	id      string
	dir     string
	builder builder
	prefix  string
	suffix  string
	_type   string
	built   bool
}

// BuildRaceChart writes the position chart of a weekend to dir unless a file
// for the same key already exists. kind is KindPNG or KindSVG.
func BuildRaceChart(dir, key, kind string, chart layout.PositionChart, l *log.Logger) (Resource, error) {
	r := Resource{
		dir:    dir,
		prefix: "positions_",
		_type:  "race-chart",
	}
	switch kind {
	case KindPNG:
		r.suffix = ".png"
		r.builder = func(path string) error { return layout.BuildPositionChartPNG(path, chart) }
	case KindSVG:
		r.suffix = ".svg"
		r.builder = func(path string) error { return layout.BuildPositionChartSVG(path, chart) }
	default:
		return r, errors.Errorf("unknown chart format %q", kind)
	}

	return r.build(key, logger.OrDiscard(l))
}

func (r Resource) buildFilePath(id string) string {
	dir := r.dir
	if dir == "" {
		dir = ResourcesDir
	}
	return filepath.Join(dir, r.prefix+id+r.suffix)
}

// Built reports whether the file was written by this call rather than found.
func (r Resource) Built() bool {
	return r.built
}

func (r Resource) String() string {
	return fmt.Sprintf("ID: %s, Type: %s, Path: %s", r.id, r._type, r.FilePath())
}

func (r Resource) FilePath() string {
	return r.buildFilePath(r.id)
}

func (r Resource) FileName() string {
	return fmt.Sprintf("%s%s%s", r.prefix, r.id, r.suffix)
}

func (r *Resource) build(id string, l *log.Logger) (Resource, error) {
	if id == "" {
		return *r, errors.New("id cannot be empty")
	}
	filePath := r.buildFilePath(id)
	if _, err := os.Stat(filePath); err == nil {
		l.Debug("resource already exists", "id", id, "path", filePath)
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return *r, errors.Wrap(err, "creating resources dir")
		}
		if err := r.builder(filePath); err != nil {
			l.Error("error building resource", "id", id, "err", err)
			return *r, errors.Wrapf(err, "building %s", filePath)
		}
		r.built = true
		l.Info("resource built", "type", r._type, "path", filePath)
	} else {
		return *r, err
	}

	r.id = id
	return *r, nil
}
