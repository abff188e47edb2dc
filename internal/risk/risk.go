// Package risk canonicalizes the backend's turnover-risk labels.
//
// The backend is loose about casing and suffixes ("High Risk", "high", ...).
// Every display site goes through Canonical so the dashboard and the employee
// table never disagree on what a label means.
package risk

import "strings"

type Level int

const (
	Low Level = iota + 1
	Medium
	High
)

var knownLabels = map[string]Level{
	"High Risk":   High,
	"Medium Risk": Medium,
	"Low Risk":    Low,
	"high risk":   High,
	"medium risk": Medium,
	"low risk":    Low,
	"High":        High,
	"Medium":      Medium,
	"Low":         Low,
	"high":        High,
	"medium":      Medium,
	"low":         Low,
	"HIGH":        High,
	"MEDIUM":      Medium,
	"LOW":         Low,
}

// KnownLabels returns a copy of the label table. Tests share it as a fixture.
func KnownLabels() map[string]Level {
	out := make(map[string]Level, len(knownLabels))
	for k, v := range knownLabels {
		out[k] = v
	}
	return out
}

// Canonical maps a raw backend label to a Level. Unrecognized labels are
// reported as Medium rather than rejected.
func Canonical(raw string) Level {
	if level, ok := lookup(raw); ok {
		return level
	}
	return Medium
}

// Lookup maps a raw label to a Level only when the label is in the table.
func Lookup(raw string) (Level, bool) {
	return lookup(raw)
}

// RawRank is the severity rank of a raw label, or 0 when the label is not in
// the table.
func RawRank(raw string) int {
	if level, ok := lookup(raw); ok {
		return level.Rank()
	}
	return 0
}

func lookup(raw string) (Level, bool) {
	level, ok := knownLabels[strings.TrimSpace(raw)]
	return level, ok
}

// Levels lists levels in legend order.
func Levels() []Level {
	return []Level{High, Medium, Low}
}

func (l Level) String() string {
	switch l {
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	default:
		return "Unknown"
	}
}

func (l Level) Rank() int {
	switch l {
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	default:
		return 0
	}
}

// Color is the chip semantic for the level.
func (l Level) Color() string {
	switch l {
	case High:
		return "error"
	case Medium:
		return "warning"
	case Low:
		return "success"
	default:
		return "default"
	}
}

// Hex is the chart fill for the level.
func (l Level) Hex() string {
	switch l {
	case High:
		return "#f44336"
	case Medium:
		return "#FFC107"
	case Low:
		return "#4CAF50"
	default:
		return "#9e9e9e"
	}
}

// BackendLabel is the label the backend uses when it writes risk levels.
func (l Level) BackendLabel() string {
	return l.String() + " Risk"
}

// ParseFilter reads a risk filter value from a query string. "all" and empty
// mean no filter.
func ParseFilter(raw string) (Level, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" || value == "all" {
		return 0, false
	}
	level, ok := lookup(value)
	return level, ok
}
