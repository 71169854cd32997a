package intent

import "strings"

// Intent is the closed classification of a user turn's purpose. The
// dispatcher routes on it, and the response parser picks its target
// schema from it.
type Intent string

const (
	General     Intent = "general"
	Medication  Intent = "medication"
	Diagnosis   Intent = "diagnosis"
	Emergency   Intent = "emergency"
	Payment     Intent = "payment"
	Appointment Intent = "appointment"
	Research    Intent = "research"
)

// All lists every recognised intent, in the order shown to the classifier.
func All() []Intent {
	return []Intent{General, Medication, Diagnosis, Emergency, Payment, Appointment, Research}
}

// Parse maps free text onto an intent. Unknown values report ok=false so
// the caller can fall back to the general branch instead of failing.
func Parse(raw string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case General:
		return General, true
	case Medication:
		return Medication, true
	case Diagnosis:
		return Diagnosis, true
	case Emergency:
		return Emergency, true
	case Payment:
		return Payment, true
	case Appointment:
		return Appointment, true
	case Research:
		return Research, true
	default:
		return General, false
	}
}
