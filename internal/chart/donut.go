package chart

import (
	"fmt"
	"math"
	"strings"
)

// Arc is one slice of a donut.
type Arc struct {
	Item
	Percent int
	// Path is the SVG path data; empty for zero-value slices.
	Path   string
	LabelX float64
	LabelY float64
}

type DonutChart struct {
	CX, CY        float64
	Radius, Inner float64
	Arcs          []Arc
	Total         int
	Empty         bool
}

// Donut splits the ring clockwise from twelve o'clock in item order. Percent
// is each share of the total rounded to a whole number. A zero total gives an
// empty chart with the arcs still listed for the legend.
func Donut(items []Item, cx, cy, radius, inner float64) DonutChart {
	chart := DonutChart{CX: cx, CY: cy, Radius: radius, Inner: inner}
	for _, it := range items {
		chart.Total += max(it.Value, 0)
	}
	chart.Empty = chart.Total == 0

	angle := -math.Pi / 2
	for _, it := range items {
		arc := Arc{Item: it}
		if chart.Total > 0 && it.Value > 0 {
			share := float64(it.Value) / float64(chart.Total)
			arc.Percent = int(math.Round(share * 100))
			sweep := share * 2 * math.Pi
			arc.Path = slicePath(cx, cy, radius, inner, angle, angle+sweep)
			mid := angle + sweep/2
			labelR := inner + (radius-inner)/2
			arc.LabelX = cx + labelR*math.Cos(mid)
			arc.LabelY = cy + labelR*math.Sin(mid)
			angle += sweep
		}
		chart.Arcs = append(chart.Arcs, arc)
	}
	return chart
}

func slicePath(cx, cy, r, inner, from, to float64) string {
	if to-from >= 2*math.Pi-1e-9 {
		return ringPath(cx, cy, r, inner)
	}
	large := 0
	if to-from > math.Pi {
		large = 1
	}
	point := func(radius, a float64) string {
		return coord(cx+radius*math.Cos(a)) + " " + coord(cy+radius*math.Sin(a))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M %s A %s %s 0 %d 1 %s", point(r, from), coord(r), coord(r), large, point(r, to))
	if inner > 0 {
		fmt.Fprintf(&b, " L %s A %s %s 0 %d 0 %s", point(inner, to), coord(inner), coord(inner), large, point(inner, from))
	} else {
		fmt.Fprintf(&b, " L %s %s", coord(cx), coord(cy))
	}
	b.WriteString(" Z")
	return b.String()
}

// ringPath is a full ring drawn as two half circles per edge; templates fill
// it with fill-rule evenodd.
func ringPath(cx, cy, r, inner float64) string {
	circle := func(radius float64, sweep int) string {
		return fmt.Sprintf("M %s %s A %s %s 0 1 %d %s %s A %s %s 0 1 %d %s %s Z",
			coord(cx+radius), coord(cy),
			coord(radius), coord(radius), sweep, coord(cx-radius), coord(cy),
			coord(radius), coord(radius), sweep, coord(cx+radius), coord(cy))
	}
	path := circle(r, 1)
	if inner > 0 {
		path += " " + circle(inner, 0)
	}
	return path
}
