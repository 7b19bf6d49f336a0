package weather

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"f1weekendsim/pkg/registry"
)

type Condition string

const (
	Dry   Condition = "Dry"
	Wet   Condition = "Wet"
	Mixed Condition = "Mixed"
)

func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dry":
		return Dry, nil
	case "wet":
		return Wet, nil
	case "mixed":
		return Mixed, nil
	}
	return "", registry.Invalid("weather condition", s)
}

// Weather is drawn once per race and stays fixed for the whole session.
type Weather struct {
	Condition     Condition
	AirTemp       float64 // Celsius
	TrackTemp     float64 // Celsius
	Humidity      float64 // percent
	WindSpeed     float64 // km/h
	RainChance    float64 // percent
	RainIntensity float64 // 0-10
}

func (w Weather) IsWet() bool {
	return w.Condition == Wet || (w.Condition == Mixed && w.RainIntensity > 3)
}

// Severity multiplies the driver error probability.
func (w Weather) Severity() float64 {
	switch w.Condition {
	case Wet:
		return 4
	case Mixed:
		return 2.5
	}
	return 1
}

// Impact is the fraction of dry pace available in these conditions.
func (w Weather) Impact() float64 {
	switch w.Condition {
	case Wet:
		switch {
		case w.RainIntensity > 7:
			return 0.6
		case w.RainIntensity > 4:
			return 0.7
		}
		return 0.8
	case Mixed:
		return 0.85 - 0.1*(w.RainIntensity/10)
	}
	switch {
	case w.TrackTemp > 50:
		return 0.85
	case w.TrackTemp > 45:
		return 0.9
	case w.TrackTemp < 20:
		return 0.95
	}
	return 1
}

func (w Weather) String() string {
	return fmt.Sprintf("%s, %.1f°C air, %.1f°C track, %.0f%% rain", w.Condition, w.AirTemp, w.TrackTemp, w.RainChance)
}

type Options struct {
	// Month overrides the month taken from the track date. Zero keeps it.
	Month time.Month
	// Force skips the draw and always yields this condition, arid tracks included.
	Force Condition
}

type span struct{ min, max float64 }

type profile struct {
	humidity, wind, rain, intensity, trackOffset span
}

var profiles = map[Condition]profile{
	Dry:   {span{40, 70}, span{0, 25}, span{0, 15}, span{0, 0}, span{10, 20}},
	Wet:   {span{70, 95}, span{5, 40}, span{70, 100}, span{3, 10}, span{0, 7}},
	Mixed: {span{60, 85}, span{3, 35}, span{40, 80}, span{1, 6}, span{5, 15}},
}

var seasonAdjustment = map[time.Month]float64{
	time.January: -5, time.February: -4, time.March: -2, time.April: 0,
	time.May: 3, time.June: 5, time.July: 7, time.August: 7,
	time.September: 4, time.October: 0, time.November: -3, time.December: -5,
}

type Generator struct {
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Probabilities returns the dry, wet and mixed weights for a track in a month.
func Probabilities(track registry.Track, month time.Month) (dry, wet, mixed float64) {
	if track.Climate.Kind == registry.Arid {
		return 1, 0, 0
	}
	dry, wet, mixed = 0.7, 0.2, 0.1
	if track.Climate.Kind == registry.WetProne {
		dry, wet, mixed = dry-0.2, wet+0.1, mixed+0.1
	}
	switch month {
	case time.March, time.April, time.October, time.November:
		dry, wet, mixed = dry-0.1, wet+0.05, mixed+0.05
	}
	return dry, wet, mixed
}

func (g *Generator) Generate(track registry.Track, opts Options) Weather {
	month := opts.Month
	if month == 0 {
		month = track.Date.Month()
	}

	cond := opts.Force
	if cond == "" {
		cond = g.drawCondition(track, month)
	}

	p := profiles[cond]
	air := 22 + seasonAdjustment[month] + track.Climate.TempOffset + g.uniform(span{-3, 3})
	return Weather{
		Condition:     cond,
		AirTemp:       air,
		TrackTemp:     air + g.uniform(p.trackOffset),
		Humidity:      g.uniform(p.humidity),
		WindSpeed:     g.uniform(p.wind),
		RainChance:    g.uniform(p.rain),
		RainIntensity: g.uniform(p.intensity),
	}
}

func (g *Generator) drawCondition(track registry.Track, month time.Month) Condition {
	dry, wet, _ := Probabilities(track, month)
	x := g.rng.Float64()
	switch {
	case x < dry:
		return Dry
	case x < dry+wet:
		return Wet
	}
	return Mixed
}

func (g *Generator) uniform(s span) float64 {
	return s.min + g.rng.Float64()*(s.max-s.min)
}
