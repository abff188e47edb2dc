package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/risk"
)

type fakeAPI struct {
	stats    *apiclient.Stats
	top      []apiclient.Employee
	depts    []apiclient.DepartmentRisk
	statsErr error
	topErr   error
	deptErr  error
}

func (f fakeAPI) Stats(ctx context.Context) (*apiclient.Stats, error) { return f.stats, f.statsErr }
func (f fakeAPI) TopRisk(ctx context.Context) ([]apiclient.Employee, error) {
	return f.top, f.topErr
}
func (f fakeAPI) DepartmentRisks(ctx context.Context) ([]apiclient.DepartmentRisk, error) {
	return f.depts, f.deptErr
}

func TestLoadJoinsAllThree(t *testing.T) {
	api := fakeAPI{
		stats: &apiclient.Stats{TotalEmployees: 3},
		top:   []apiclient.Employee{{ID: "x"}},
		depts: []apiclient.DepartmentRisk{{Department: "Eng"}},
	}
	data, err := Load(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, 3, data.Stats.TotalEmployees)
	assert.Len(t, data.TopRisk, 1)
	assert.Len(t, data.DepartmentRisks, 1)
}

func TestLoadAnyFailureFailsAll(t *testing.T) {
	boom := errors.New("boom")
	for name, api := range map[string]fakeAPI{
		"stats": {statsErr: boom},
		"top":   {stats: &apiclient.Stats{}, topErr: boom},
		"depts": {stats: &apiclient.Stats{}, deptErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			data, err := Load(context.Background(), api)
			assert.Nil(t, data)
			assert.ErrorIs(t, err, ErrLoadFailed)
		})
	}
}

func TestEmptyDataRendersZerosAndNoData(t *testing.T) {
	v := Build(&Data{})

	require.Len(t, v.Cards, 4)
	assert.Equal(t, "0", v.Cards[0].Value)
	assert.Equal(t, "0", v.Cards[1].Value)
	assert.Equal(t, "0.0%", v.Cards[2].Value)
	assert.Equal(t, "0", v.Cards[3].Value)
	require.NotNil(t, v.Cards[1].Trend)
	assert.Equal(t, "0%", v.Cards[1].Trend.Value)
	assert.Nil(t, v.Cards[0].Trend)

	assert.True(t, v.Status.NoData)
	assert.True(t, v.StatusChart.Empty)
	assert.Empty(t, v.TopRisk)
	assert.Empty(t, v.DepartmentRisks)
	assert.True(t, v.DepartmentChart.Empty)
}

func TestCardsFormatting(t *testing.T) {
	cards := Cards(apiclient.Stats{
		TotalEmployees:  42,
		HighRiskCount:   7,
		AverageRisk:     0.4567,
		DepartmentCount: 5,
		RiskTrends:      &apiclient.RiskTrends{High: 5.5, Average: -2},
	})
	assert.Equal(t, "42", cards[0].Value)
	assert.Equal(t, "45.7%", cards[2].Value)
	assert.Equal(t, &Trend{Up: true, Value: "5.5%"}, cards[1].Trend)
	assert.Equal(t, &Trend{Up: false, Value: "2%"}, cards[2].Trend)
}

func TestStatusPieOrderAndPercents(t *testing.T) {
	pie := Status(apiclient.Stats{HighRiskCount: 1, MediumRiskCount: 1, LowRiskCount: 2})
	require.Len(t, pie.Slices, 3)
	assert.Equal(t, []risk.Level{risk.High, risk.Medium, risk.Low},
		[]risk.Level{pie.Slices[0].Level, pie.Slices[1].Level, pie.Slices[2].Level})
	assert.Equal(t, 25, pie.Slices[0].Percent)
	assert.Equal(t, 50, pie.Slices[2].Percent)
	assert.Equal(t, 4, pie.Total)
	assert.False(t, pie.NoData)
}

func TestDepartmentsDefaultName(t *testing.T) {
	bars := Departments([]apiclient.DepartmentCount{{Department: "", Count: 2}, {Department: "Ops", Count: 1}})
	assert.Equal(t, []DepartmentBar{{Department: "Unknown", Count: 2}, {Department: "Ops", Count: 1}}, bars)
}

func TestTopRiskRows(t *testing.T) {
	rows := TopRisk([]apiclient.Employee{
		{ID: "a", Name: "A", RiskLevel: "High Risk", TurnoverProbability: 0.71},
		{ID: "b", Name: "B", RiskLevel: "medium", TurnoverProbability: 0.3},
		{ID: "c", Name: "C", RiskLevel: "whatever", TurnoverProbability: 0.29},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "71.0%", rows[0].Probability)
	assert.Equal(t, "error", rows[0].ScoreColor)
	assert.Equal(t, "High", rows[0].Risk.Label)
	assert.Equal(t, "warning", rows[1].ScoreColor)
	assert.Equal(t, "success", rows[2].ScoreColor)
	assert.Equal(t, "Medium", rows[2].Risk.Label)
}

func TestDepartmentRisksOrderedByScoreStable(t *testing.T) {
	groups := DepartmentRisks([]apiclient.DepartmentRisk{
		{Department: "A", RiskDistribution: []apiclient.RiskCount{{RiskLevel: "High Risk", Count: 1}}},
		{Department: "B", RiskDistribution: []apiclient.RiskCount{{RiskLevel: "low", Count: 3}}},
		{Department: "C", RiskDistribution: []apiclient.RiskCount{{RiskLevel: "HIGH RISK", Count: 2}, {RiskLevel: "critical", Count: 9}}},
		{Department: "D", RiskDistribution: []apiclient.RiskCount{{RiskLevel: " Medium ", Count: 1}}},
	})

	var names []string
	for _, g := range groups {
		names = append(names, g.Department)
	}
	assert.Equal(t, []string{"C", "A", "B", "D"}, names)
	assert.Equal(t, DepartmentRiskGroup{Department: "C", High: 2}, groups[0])
	assert.Equal(t, 1, groups[3].Medium)

	for i := 1; i < len(groups); i++ {
		assert.GreaterOrEqual(t, groups[i-1].Score(), groups[i].Score())
	}
}

func TestBuildCharts(t *testing.T) {
	v := Build(&Data{
		Stats: apiclient.Stats{
			HighRiskCount: 2, LowRiskCount: 2,
			DepartmentDistribution: []apiclient.DepartmentCount{{Department: "Eng", Count: 4}},
		},
		DepartmentRisks: []apiclient.DepartmentRisk{{Department: "Eng", RiskDistribution: []apiclient.RiskCount{{RiskLevel: "high", Count: 2}}}},
	})
	require.Len(t, v.DepartmentChart.Bars, 1)
	assert.Equal(t, "#2196F3", v.DepartmentChart.Bars[0].Color)
	require.Len(t, v.StatusChart.Arcs, 3)
	assert.Equal(t, 50, v.StatusChart.Arcs[0].Percent)
	assert.Empty(t, v.StatusChart.Arcs[1].Path)
	require.Len(t, v.DepartmentRiskChart.Groups, 1)
	assert.Equal(t, "High", v.DepartmentRiskChart.Series[0].Name)
}
