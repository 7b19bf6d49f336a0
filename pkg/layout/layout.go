package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"
	"strings"
	"sync"

	"f1weekendsim/pkg/race"
	"f1weekendsim/pkg/registry"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/llgcode/draw2d/draw2dsvg"
	"github.com/pkg/errors"
)

const (
	margin  = 40.0
	lapStep = 12.0
	rowStep = 24.0
)

var (
	mu = sync.Mutex{}

	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	gridLine   = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	fallback   = color.RGBA{0x88, 0x88, 0x88, 0xff}
)

// Series is one driver's line on the chart. Positions[0] is the grid slot and
// Positions[i] the place after lap i; zero means the car was no longer running.
type Series struct {
	DriverID  string
	Code      string
	Color     color.RGBA
	Dashed    bool
	Positions []int
}

type PositionChart struct {
	Title  string
	Laps   int
	Cars   int
	Series []Series
}

// FromRace builds the chart of a race from its lap-by-lap running order. The
// second car of a team gets a dashed line.
func FromRace(reg *registry.Registry, track registry.Track, res race.Result) PositionChart {
	chart := PositionChart{
		Title: track.Name,
		Laps:  len(res.PositionsByLap),
		Cars:  len(res.Classification),
	}
	seen := map[string]bool{}
	for _, e := range res.Classification {
		s := Series{DriverID: e.DriverID, Code: e.DriverID, Color: fallback, Positions: make([]int, chart.Laps+1)}
		if d, err := reg.Driver(e.DriverID); err == nil {
			s.Code = d.Code
		}
		if t, err := reg.Team(e.TeamID); err == nil {
			if c, err := ParseColor(t.Color); err == nil {
				s.Color = c
			}
		}
		s.Dashed = seen[e.TeamID]
		seen[e.TeamID] = true
		s.Positions[0] = e.Grid
		chart.Series = append(chart.Series, s)
	}

	index := map[string]int{}
	for i, s := range chart.Series {
		index[s.DriverID] = i
	}
	for lap, order := range res.PositionsByLap {
		for pos, id := range order {
			chart.Series[index[id]].Positions[lap+1] = pos + 1
		}
	}
	return chart
}

// ParseColor reads a #RRGGBB colour.
func ParseColor(hex string) (color.RGBA, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return color.RGBA{}, errors.Errorf("invalid colour %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "invalid colour %q", hex)
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
}

func chartSize(chart PositionChart) image.Rectangle {
	width := 2*margin + float64(chart.Laps)*lapStep
	height := 2*margin + float64(max(chart.Cars-1, 0))*rowStep
	return image.Rect(0, 0, int(width), int(height))
}

func point(lap, position int) (float64, float64) {
	return margin + float64(lap)*lapStep, margin + float64(position-1)*rowStep
}

func BuildPositionChartPNG(path string, chart PositionChart) error {
	mu.Lock()
	defer mu.Unlock()
	rect := chartSize(chart)

	dest := image.NewRGBA(rect)
	gc := draw2dimg.NewGraphicContext(dest)

	drawChart(gc, chart, rect, 1)
	return draw2dimg.SaveToPngFile(path, dest)
}

type ChartMetadata struct {
	Title   string  `json:"title"`
	Laps    int     `json:"laps"`
	Cars    int     `json:"cars"`
	LapStep float64 `json:"lapStep"`
	RowStep float64 `json:"rowStep"`
	Margin  float64 `json:"margin"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
}

func BuildPositionChartSVG(path string, chart PositionChart) error {
	mu.Lock()
	defer mu.Unlock()
	rect := chartSize(chart)

	dest := draw2dsvg.NewSvg()
	gc := draw2dsvg.NewGraphicContext(dest)

	drawChart(gc, chart, rect, 0.75)
	err := draw2dsvg.SaveToSvgFile(path, dest)
	if err != nil {
		return err
	}

	metadata := ChartMetadata{
		Title:   chart.Title,
		Laps:    chart.Laps,
		Cars:    chart.Cars,
		LapStep: lapStep,
		RowStep: rowStep,
		Margin:  margin,
		Width:   rect.Max.X,
		Height:  rect.Max.Y,
	}

	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	buffer := new(bytes.Buffer)
	err = json.Compact(buffer, jsonBytes)
	if err != nil {
		return err
	}

	// append metadata to svg file as comments in the xml
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, _ = f.Write([]byte("\n<!--\n"))
	_, _ = f.Write(buffer.Bytes())
	_, err = f.Write([]byte("\n-->"))

	return err
}

func drawChart(gc draw2d.GraphicContext, chart PositionChart, rect image.Rectangle, strokeScale float64) {
	gc.Save()
	gc.SetFillColor(background)
	draw2dkit.Rectangle(gc, 0, 0, float64(rect.Max.X), float64(rect.Max.Y))
	gc.Fill()
	gc.Restore()

	// one horizontal line per position
	gc.Save()
	gc.SetStrokeColor(gridLine)
	gc.SetLineWidth(1 * strokeScale)
	for p := 1; p <= chart.Cars; p++ {
		x0, y := point(0, p)
		x1, _ := point(chart.Laps, p)
		gc.MoveTo(x0, y)
		gc.LineTo(x1, y)
	}
	gc.Stroke()
	gc.Restore()

	// draw from the back so the leaders end on top
	for i := len(chart.Series) - 1; i >= 0; i-- {
		drawSeries(gc, chart.Series[i], strokeScale)
	}
}

func drawSeries(gc draw2d.GraphicContext, s Series, strokeScale float64) {
	gc.Save()
	gc.SetStrokeColor(s.Color)
	gc.SetLineWidth(3 * strokeScale)
	if s.Dashed {
		gc.SetLineDash([]float64{6 * strokeScale, 4 * strokeScale}, 0)
	}
	started := false
	lastX, lastY := 0.0, 0.0
	for lap, pos := range s.Positions {
		if pos == 0 {
			break
		}
		x, y := point(lap, pos)
		if !started {
			gc.MoveTo(x, y)
			started = true
		} else {
			gc.LineTo(x, y)
		}
		lastX, lastY = x, y
	}
	gc.Stroke()

	// mark where a retired car stopped
	if started && s.Positions[len(s.Positions)-1] == 0 {
		gc.SetFillColor(s.Color)
		draw2dkit.Circle(gc, lastX, lastY, 4*strokeScale)
		gc.Fill()
	}
	gc.Restore()
}

func (c PositionChart) String() string {
	return fmt.Sprintf("%s: %d cars over %d laps", c.Title, c.Cars, c.Laps)
}
