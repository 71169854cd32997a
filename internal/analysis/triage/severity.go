package triage

import "strings"

// Level is one of four ordered triage severities.
type Level int

const (
	Healthy Level = iota + 1
	Mild
	Severe
	Emergency
)

// String returns the stable label stored on encounters.
func (l Level) String() string {
	switch l {
	case Emergency:
		return "emergencia"
	case Severe:
		return "grave"
	case Mild:
		return "leve"
	default:
		return "sano"
	}
}

// tokens checked in priority order: a text mentioning both "emergencia"
// and "grave" must still resolve to Emergency.
var severityTokens = []struct {
	token string
	level Level
}{
	{"emergencia", Emergency},
	{"grave", Severe},
	{"leve", Mild},
}

// Classify maps scorer output onto a severity level. The mapping is total:
// any text without a recognised token is Healthy.
func Classify(text string) Level {
	normalized := strings.ToLower(text)
	for _, entry := range severityTokens {
		if strings.Contains(normalized, entry.token) {
			return entry.level
		}
	}
	return Healthy
}
