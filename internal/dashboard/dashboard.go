// Package dashboard fetches the three dashboard datasets and shapes them for
// the dashboard page.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/chart"
	"github.com/phillip-england/hrpulse/internal/risk"
)

var ErrLoadFailed = errors.New("failed to load dashboard data")

// API is the part of the backend client the dashboard reads.
type API interface {
	Stats(ctx context.Context) (*apiclient.Stats, error)
	TopRisk(ctx context.Context) ([]apiclient.Employee, error)
	DepartmentRisks(ctx context.Context) ([]apiclient.DepartmentRisk, error)
}

// Data is the raw result of one dashboard visit.
type Data struct {
	Stats           apiclient.Stats
	TopRisk         []apiclient.Employee
	DepartmentRisks []apiclient.DepartmentRisk
}

// Load runs the three fetches concurrently. Any failure fails the whole load
// with ErrLoadFailed; nothing partial is returned.
func Load(ctx context.Context, api API) (*Data, error) {
	var (
		stats *apiclient.Stats
		top   []apiclient.Employee
		depts []apiclient.DepartmentRisk
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = api.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = api.TopRisk(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		depts, err = api.DepartmentRisks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	data := &Data{TopRisk: top, DepartmentRisks: depts}
	if stats != nil {
		data.Stats = *stats
	}
	return data, nil
}

// Card is one summary tile.
type Card struct {
	Title string
	Value string
	Icon  string
	Trend *Trend
}

// Trend is a month-over-month change shown under a card value.
type Trend struct {
	Up    bool
	Value string
}

type DepartmentBar struct {
	Department string
	Count      int
}

type StatusSlice struct {
	Level   risk.Level
	Label   string
	Count   int
	Percent int
	Color   string
}

// StatusPie is the High/Medium/Low split. NoData is set when every count is
// zero.
type StatusPie struct {
	Slices []StatusSlice
	Total  int
	NoData bool
}

type TopRiskRow struct {
	ID          string
	Name        string
	Department  string
	Risk        risk.Display
	Probability string
	ScoreColor  string
}

// DepartmentRiskGroup is one department's count per risk level.
type DepartmentRiskGroup struct {
	Department string
	High       int
	Medium     int
	Low        int
}

// Score weights the counts 3/2/1 by severity.
func (g DepartmentRiskGroup) Score() int {
	return g.High*3 + g.Medium*2 + g.Low
}

// View is everything the dashboard template renders.
type View struct {
	Cards           []Card
	Departments     []DepartmentBar
	Status          StatusPie
	TopRisk         []TopRiskRow
	DepartmentRisks []DepartmentRiskGroup

	DepartmentChart     chart.BarChart
	StatusChart         chart.DonutChart
	DepartmentRiskChart chart.GroupedBarChart
}

var departmentPalette = []string{"#2196F3", "#4CAF50", "#FFC107", "#E91E63", "#9C27B0", "#FF5722"}

var (
	barFrame     = chart.Frame{Width: 560, Height: 320, Left: 48, Top: 16, Right: 16, Bottom: 72}
	groupedFrame = chart.Frame{Width: 560, Height: 320, Left: 48, Top: 16, Right: 16, Bottom: 72}
)

// Build shapes a loaded dashboard for rendering.
func Build(d *Data) View {
	if d == nil {
		d = &Data{}
	}
	v := View{
		Cards:           Cards(d.Stats),
		Departments:     Departments(d.Stats.DepartmentDistribution),
		Status:          Status(d.Stats),
		TopRisk:         TopRisk(d.TopRisk),
		DepartmentRisks: DepartmentRisks(d.DepartmentRisks),
	}

	items := make([]chart.Item, 0, len(v.Departments))
	for i, dep := range v.Departments {
		items = append(items, chart.Item{Label: dep.Department, Value: dep.Count, Color: departmentPalette[i%len(departmentPalette)]})
	}
	v.DepartmentChart = chart.Bars(items, barFrame)

	slices := make([]chart.Item, 0, len(v.Status.Slices))
	for _, s := range v.Status.Slices {
		slices = append(slices, chart.Item{Label: s.Label, Value: s.Count, Color: s.Level.Hex()})
	}
	v.StatusChart = chart.Donut(slices, 120, 120, 110, 55)

	series := make([]chart.Series, 0, 3)
	for _, level := range risk.Levels() {
		series = append(series, chart.Series{Name: level.String(), Color: level.Hex()})
	}
	groups := make([]chart.Group, 0, len(v.DepartmentRisks))
	for _, g := range v.DepartmentRisks {
		groups = append(groups, chart.Group{Label: g.Department, Values: []int{g.High, g.Medium, g.Low}})
	}
	v.DepartmentRiskChart = chart.GroupedBars(groups, series, groupedFrame)
	return v
}

// Cards builds the four summary tiles. Missing values show as zero.
func Cards(s apiclient.Stats) []Card {
	var high, avg float64
	if s.RiskTrends != nil {
		high, avg = s.RiskTrends.High, s.RiskTrends.Average
	}
	return []Card{
		{Title: "Total Employees", Value: strconv.Itoa(s.TotalEmployees), Icon: "people"},
		{Title: "High Risk Employees", Value: strconv.Itoa(s.HighRiskCount), Icon: "warning", Trend: newTrend(high)},
		{Title: "Average Risk Score", Value: Percent(s.AverageRisk), Icon: "trending", Trend: newTrend(avg)},
		{Title: "Total Departments", Value: strconv.Itoa(s.DepartmentCount), Icon: "building"},
	}
}

func newTrend(delta float64) *Trend {
	return &Trend{Up: delta >= 0, Value: strconv.FormatFloat(math.Abs(delta), 'f', -1, 64) + "%"}
}

// Percent formats a 0..1 fraction as "xx.x%".
func Percent(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', 1, 64) + "%"
}

func Departments(dist []apiclient.DepartmentCount) []DepartmentBar {
	out := make([]DepartmentBar, 0, len(dist))
	for _, d := range dist {
		name := d.Department
		if name == "" {
			name = "Unknown"
		}
		out = append(out, DepartmentBar{Department: name, Count: d.Count})
	}
	return out
}

func Status(s apiclient.Stats) StatusPie {
	counts := map[risk.Level]int{
		risk.High:   max(s.HighRiskCount, 0),
		risk.Medium: max(s.MediumRiskCount, 0),
		risk.Low:    max(s.LowRiskCount, 0),
	}
	pie := StatusPie{}
	for _, level := range risk.Levels() {
		pie.Total += counts[level]
	}
	for _, level := range risk.Levels() {
		slice := StatusSlice{Level: level, Label: level.String(), Count: counts[level], Color: level.Hex()}
		if pie.Total > 0 {
			slice.Percent = int(math.Round(float64(slice.Count) / float64(pie.Total) * 100))
		}
		pie.Slices = append(pie.Slices, slice)
	}
	pie.NoData = pie.Total == 0
	return pie
}

// TopRisk formats the top-risk table. The score colour follows the
// probability alone: error from 0.7, warning from 0.3.
func TopRisk(list []apiclient.Employee) []TopRiskRow {
	out := make([]TopRiskRow, 0, len(list))
	for _, e := range list {
		out = append(out, TopRiskRow{
			ID:          e.ID,
			Name:        e.Name,
			Department:  e.Department,
			Risk:        risk.DashboardLabel(e.RiskLevel),
			Probability: Percent(e.TurnoverProbability),
			ScoreColor:  scoreColor(e.TurnoverProbability),
		})
	}
	return out
}

func scoreColor(p float64) string {
	switch {
	case p >= 0.7:
		return "error"
	case p >= 0.3:
		return "warning"
	default:
		return "success"
	}
}

// DepartmentRisks groups the breakdown per department and orders it by Score,
// highest first. Departments with equal scores keep their input order.
// Distribution labels that do not name a level are skipped.
func DepartmentRisks(list []apiclient.DepartmentRisk) []DepartmentRiskGroup {
	out := make([]DepartmentRiskGroup, 0, len(list))
	for _, dept := range list {
		g := DepartmentRiskGroup{Department: dept.Department}
		for _, rc := range dept.RiskDistribution {
			level, ok := risk.NormalizeDistributionLabel(rc.RiskLevel)
			if !ok {
				continue
			}
			switch level {
			case risk.High:
				g.High += rc.Count
			case risk.Medium:
				g.Medium += rc.Count
			case risk.Low:
				g.Low += rc.Count
			}
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})
	return out
}
