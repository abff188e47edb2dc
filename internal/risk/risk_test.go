package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalCoversKnownLabels(t *testing.T) {
	fixture := KnownLabels()
	require.NotEmpty(t, fixture)

	for raw, want := range fixture {
		assert.Equal(t, want, Canonical(raw), "label %q", raw)
		assert.Equal(t, want, Canonical("  "+raw+"\t"), "padded label %q", raw)
	}
}

func TestCanonicalUnknownIsMedium(t *testing.T) {
	for _, raw := range []string{"", "critical", "Severe Risk", "hIgH", "42"} {
		assert.Equal(t, Medium, Canonical(raw), "label %q", raw)
	}
}

func TestRawRank(t *testing.T) {
	assert.Equal(t, 3, RawRank("High Risk"))
	assert.Equal(t, 2, RawRank("medium"))
	assert.Equal(t, 1, RawRank("Low"))
	assert.Equal(t, 0, RawRank("unknown"))
}

func TestLevelsLegendOrder(t *testing.T) {
	levels := Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"High", "Medium", "Low"}, []string{levels[0].String(), levels[1].String(), levels[2].String()})
	assert.Greater(t, levels[0].Rank(), levels[1].Rank())
	assert.Greater(t, levels[1].Rank(), levels[2].Rank())
}

func TestColorsAndBackendLabel(t *testing.T) {
	assert.Equal(t, "error", High.Color())
	assert.Equal(t, "warning", Medium.Color())
	assert.Equal(t, "success", Low.Color())
	assert.Equal(t, "High Risk", High.BackendLabel())
	assert.Equal(t, "Low Risk", Low.BackendLabel())
}

func TestDisplayWrappersAgreeOnCanonicalValues(t *testing.T) {
	for raw, want := range KnownLabels() {
		table := TableLabel(raw)
		dash := DashboardLabel(raw)
		assert.Equal(t, want, table.Level, "table %q", raw)
		assert.Equal(t, want, dash.Level, "dashboard %q", raw)
		assert.Equal(t, table.Label, dash.Label)
	}
}

func TestTableLabelEmpty(t *testing.T) {
	d := TableLabel("  ")
	assert.Equal(t, "Unknown", d.Label)
	assert.Equal(t, "default", d.Color)

	assert.Equal(t, "Medium", DashboardLabel("").Label)
}

func TestParseFilter(t *testing.T) {
	_, ok := ParseFilter("all")
	assert.False(t, ok)
	_, ok = ParseFilter("")
	assert.False(t, ok)

	level, ok := ParseFilter("High")
	require.True(t, ok)
	assert.Equal(t, High, level)

	level, ok = ParseFilter("low")
	require.True(t, ok)
	assert.Equal(t, Low, level)

	_, ok = ParseFilter("bogus")
	assert.False(t, ok)
}

func TestNormalizeDistributionLabel(t *testing.T) {
	cases := map[string]Level{
		"High Risk": High,
		"MEDIUM":    Medium,
		" low risk": Low,
		"Low":       Low,
	}
	for raw, want := range cases {
		got, ok := NormalizeDistributionLabel(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := NormalizeDistributionLabel("critical")
	assert.False(t, ok)
}

func TestLookupOnlyKnowsTheTable(t *testing.T) {
	level, ok := Lookup(" High Risk ")
	assert.True(t, ok)
	assert.Equal(t, High, level)

	for _, raw := range []string{"", "Critical", "weird"} {
		_, ok := Lookup(raw)
		assert.False(t, ok, raw)
	}
}
