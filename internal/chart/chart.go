// Package chart lays out the dashboard charts as SVG geometry. Templates draw
// the shapes; nothing here writes markup.
package chart

import (
	"fmt"
	"math"
)

// Frame is the drawing size plus the margins around the plot area.
type Frame struct {
	Width, Height            float64
	Left, Top, Right, Bottom float64
}

func (f Frame) PlotWidth() float64  { return math.Max(f.Width-f.Left-f.Right, 0) }
func (f Frame) PlotHeight() float64 { return math.Max(f.Height-f.Top-f.Bottom, 0) }

// Baseline is the y coordinate of the value axis zero.
func (f Frame) Baseline() float64 { return f.Top + f.PlotHeight() }

// Item is one labelled value.
type Item struct {
	Label string
	Value int
	Color string
}

type Bar struct {
	Label      string
	Value      int
	Color      string
	X, Y, W, H float64
}

// CenterX is where a label under the bar goes.
func (b Bar) CenterX() float64 { return b.X + b.W/2 }

type Tick struct {
	Value int
	Y     float64
}

// BarChart is a single series of vertical bars.
type BarChart struct {
	Frame
	Bars  []Bar
	Ticks []Tick
	Max   int
	Empty bool
}

const (
	bandPadding = 0.3
	tickSteps   = 4
)

// Bars lays items out left to right, one band per item.
func Bars(items []Item, frame Frame) BarChart {
	top, ticks := valueAxis(maxValue(items), frame)
	chart := BarChart{Frame: frame, Ticks: ticks, Max: top, Empty: len(items) == 0}
	if len(items) == 0 {
		return chart
	}
	band := frame.PlotWidth() / float64(len(items))
	width := band * (1 - bandPadding)
	for i, item := range items {
		h := scale(item.Value, top, frame.PlotHeight())
		chart.Bars = append(chart.Bars, Bar{
			Label: item.Label,
			Value: item.Value,
			Color: item.Color,
			X:     frame.Left + float64(i)*band + band*bandPadding/2,
			Y:     frame.Baseline() - h,
			W:     width,
			H:     h,
		})
	}
	return chart
}

// Series names one bar inside every group.
type Series struct {
	Name  string
	Color string
}

// Group is one band of a grouped chart; Values line up with the series.
type Group struct {
	Label  string
	Values []int
}

type GroupBand struct {
	Label   string
	CenterX float64
	Bars    []Bar
}

// GroupedBarChart draws several series side by side per band.
type GroupedBarChart struct {
	Frame
	Series []Series
	Groups []GroupBand
	Ticks  []Tick
	Max    int
	Empty  bool
}

func GroupedBars(groups []Group, series []Series, frame Frame) GroupedBarChart {
	highest := 0
	for _, g := range groups {
		for _, v := range g.Values {
			highest = max(highest, v)
		}
	}
	top, ticks := valueAxis(highest, frame)
	chart := GroupedBarChart{Frame: frame, Series: series, Ticks: ticks, Max: top, Empty: len(groups) == 0}
	if len(groups) == 0 || len(series) == 0 {
		chart.Empty = true
		return chart
	}

	band := frame.PlotWidth() / float64(len(groups))
	inner := band * (1 - bandPadding)
	barW := inner / float64(len(series))
	for i, g := range groups {
		start := frame.Left + float64(i)*band + band*bandPadding/2
		gb := GroupBand{Label: g.Label, CenterX: start + inner/2}
		for j, s := range series {
			v := 0
			if j < len(g.Values) {
				v = g.Values[j]
			}
			h := scale(v, top, frame.PlotHeight())
			gb.Bars = append(gb.Bars, Bar{
				Label: s.Name,
				Value: v,
				Color: s.Color,
				X:     start + float64(j)*barW,
				Y:     frame.Baseline() - h,
				W:     barW,
				H:     h,
			})
		}
		chart.Groups = append(chart.Groups, gb)
	}
	return chart
}

func maxValue(items []Item) int {
	highest := 0
	for _, it := range items {
		highest = max(highest, it.Value)
	}
	return highest
}

func scale(v, top int, height float64) float64 {
	if top <= 0 || v <= 0 {
		return 0
	}
	return float64(v) / float64(top) * height
}

// valueAxis rounds the largest value up to a multiple of a 1/2/5 step and
// returns the ticks from zero to that top.
func valueAxis(highest int, frame Frame) (int, []Tick) {
	step := niceStep(highest)
	top := step
	if highest > 0 {
		top = int(math.Ceil(float64(highest)/float64(step))) * step
	}
	ticks := make([]Tick, 0, top/step+1)
	for v := 0; v <= top; v += step {
		ticks = append(ticks, Tick{Value: v, Y: frame.Baseline() - scale(v, top, frame.PlotHeight())})
	}
	return top, ticks
}

func niceStep(highest int) int {
	if highest <= 0 {
		return 1
	}
	raw := float64(highest) / tickSteps
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			return max(1, int(math.Round(m*mag)))
		}
	}
	return max(1, int(math.Round(10*mag)))
}

func coord(v float64) string {
	if math.Abs(v) < 0.005 {
		v = 0
	}
	return fmt.Sprintf("%.2f", v)
}
