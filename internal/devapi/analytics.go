package devapi

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/risk"
)

const topRiskLimit = 5

// levelFor is the stored level of an employee. Rows saved without a label
// are graded by turnover probability.
func levelFor(e apiclient.Employee) risk.Level {
	if e.RiskLevel != "" {
		return risk.Canonical(e.RiskLevel)
	}
	return levelFromProbability(e.TurnoverProbability)
}

func levelFromProbability(p float64) risk.Level {
	switch {
	case p >= 0.7:
		return risk.High
	case p >= 0.3:
		return risk.Medium
	default:
		return risk.Low
	}
}

// computeStats summarizes list. RiskTrends is left for the caller, which
// needs stored history.
func computeStats(list []apiclient.Employee) apiclient.Stats {
	stats := apiclient.Stats{
		TotalEmployees:         len(list),
		DepartmentDistribution: []apiclient.DepartmentCount{},
	}

	perDept := map[string]int{}
	var probSum float64
	for _, e := range list {
		switch levelFor(e) {
		case risk.High:
			stats.HighRiskCount++
		case risk.Medium:
			stats.MediumRiskCount++
		case risk.Low:
			stats.LowRiskCount++
		}
		probSum += e.TurnoverProbability
		perDept[e.Department]++
	}
	if len(list) > 0 {
		stats.AverageRisk = probSum / float64(len(list))
	}

	for dept, n := range perDept {
		stats.DepartmentDistribution = append(stats.DepartmentDistribution, apiclient.DepartmentCount{Department: dept, Count: n})
	}
	slices.SortFunc(stats.DepartmentDistribution, func(a, b apiclient.DepartmentCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Department, b.Department)
	})
	stats.DepartmentCount = len(perDept)
	return stats
}

// trendPercent is the change from prev to cur in percent, one decimal.
func trendPercent(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return math.Round((cur-prev)/prev*1000) / 10
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// topRisk returns the employees most likely to leave, highest first.
func topRisk(list []apiclient.Employee) []apiclient.Employee {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b apiclient.Employee) int {
		return cmp.Compare(b.TurnoverProbability, a.TurnoverProbability)
	})
	if len(sorted) > topRiskLimit {
		sorted = sorted[:topRiskLimit]
	}
	return sorted
}

// departmentRisks counts employees per level in each department, ordered by
// department name. Levels with no employees are left out.
func departmentRisks(list []apiclient.Employee) []apiclient.DepartmentRisk {
	counts := map[string]map[risk.Level]int{}
	for _, e := range list {
		if counts[e.Department] == nil {
			counts[e.Department] = map[risk.Level]int{}
		}
		counts[e.Department][levelFor(e)]++
	}

	depts := make([]string, 0, len(counts))
	for dept := range counts {
		depts = append(depts, dept)
	}
	slices.Sort(depts)

	out := make([]apiclient.DepartmentRisk, 0, len(depts))
	for _, dept := range depts {
		row := apiclient.DepartmentRisk{Department: dept, RiskDistribution: []apiclient.RiskCount{}}
		for _, level := range risk.Levels() {
			if n := counts[dept][level]; n > 0 {
				row.RiskDistribution = append(row.RiskDistribution, apiclient.RiskCount{RiskLevel: level.BackendLabel(), Count: n})
			}
		}
		out = append(out, row)
	}
	return out
}

// recommendation is the retention action exported next to each employee.
func recommendation(level risk.Level) string {
	switch level {
	case risk.High:
		return "Schedule a retention conversation and review compensation"
	case risk.Medium:
		return "Check in on workload and career development goals"
	default:
		return "Maintain current engagement"
	}
}
