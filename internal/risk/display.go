package risk

import "strings"

// Display is what a template needs to draw a risk chip.
type Display struct {
	Level Level
	Label string
	Color string
}

// TableLabel formats a label for the employee table. An empty label shows as
// Unknown with a neutral chip; anything else goes through Canonical.
func TableLabel(raw string) Display {
	if strings.TrimSpace(raw) == "" {
		return Display{Label: "Unknown", Color: "default"}
	}
	level := Canonical(raw)
	return Display{Level: level, Label: level.String(), Color: level.Color()}
}

// DashboardLabel formats a label for dashboard widgets. It always resolves to
// one of the three levels.
func DashboardLabel(raw string) Display {
	level := Canonical(raw)
	return Display{Level: level, Label: level.String(), Color: level.Color()}
}

// NormalizeDistributionLabel reads the labels used in department-risk
// breakdowns, which arrive in any casing and with or without the " risk"
// suffix. Labels outside the table are reported as not ok so callers can skip
// them instead of inflating Medium.
func NormalizeDistributionLabel(raw string) (Level, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.TrimSuffix(cleaned, " risk")
	return lookup(cleaned)
}
