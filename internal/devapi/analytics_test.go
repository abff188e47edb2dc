package devapi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/risk"
)

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil)
	assert.Zero(t, stats.TotalEmployees)
	assert.Zero(t, stats.AverageRisk)
	assert.Equal(t, []apiclient.DepartmentCount{}, stats.DepartmentDistribution)
}

func TestComputeStatsDepartmentOrder(t *testing.T) {
	stats := computeStats([]apiclient.Employee{
		{Department: "Sales", RiskLevel: "low"},
		{Department: "Engineering", RiskLevel: "High Risk"},
		{Department: "Sales", RiskLevel: "Medium"},
		{Department: "Alpha", RiskLevel: "weird"},
	})
	assert.Equal(t, []apiclient.DepartmentCount{
		{Department: "Sales", Count: 2},
		{Department: "Alpha", Count: 1},
		{Department: "Engineering", Count: 1},
	}, stats.DepartmentDistribution)
	assert.Equal(t, 1, stats.HighRiskCount)
	assert.Equal(t, 2, stats.MediumRiskCount)
	assert.Equal(t, 1, stats.LowRiskCount)
}

func TestTrendPercent(t *testing.T) {
	assert.Equal(t, 0.0, trendPercent(0, 5))
	assert.Equal(t, 50.0, trendPercent(2, 3))
	assert.Equal(t, -33.3, trendPercent(3, 2))
}

func TestTopRiskLimit(t *testing.T) {
	var list []apiclient.Employee
	for i := range 7 {
		list = append(list, apiclient.Employee{ID: string(rune('a' + i)), TurnoverProbability: float64(i) / 10})
	}
	top := topRisk(list)
	assert.Len(t, top, topRiskLimit)
	assert.Equal(t, "g", top[0].ID)
	assert.Equal(t, "a", list[0].ID)
}

func TestLevelFromProbability(t *testing.T) {
	assert.Equal(t, risk.High, levelFromProbability(0.7))
	assert.Equal(t, risk.Medium, levelFromProbability(0.3))
	assert.Equal(t, risk.Low, levelFromProbability(0.29))
}
