package triage

import "time"

// ReportData carries the structured fields of a generated diagnosis report.
type ReportData struct {
	Diagnosis       string `json:"diagnosis"`
	Prescriptions   string `json:"prescriptions"`
	Recommendations string `json:"recommendations"`
	Tests           string `json:"tests"`
}

// Report wraps the structured fields together with the rendered document.
type Report struct {
	Data        ReportData `json:"data"`
	PDF         []byte     `json:"pdf,omitempty"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

// Validation statuses a reviewing clinician can set.
const (
	ValidationConfirmed = "confirmed"
	ValidationModified  = "modified"
	ValidationRejected  = "rejected"
)

// Validation is the clinician review attached to an encounter.
// Re-validating overwrites the previous record.
type Validation struct {
	Status        string    `json:"status"`
	Urgency       string    `json:"urgency"`
	Notes         string    `json:"notes"`
	TreatmentPlan string    `json:"treatmentPlan"`
	Validator     string    `json:"validator"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Encounter is one medical interaction record. Encounters are accretive:
// a report or validation is attached to the same record later in the
// conversation rather than producing a new one.
type Encounter struct {
	ID             string      `json:"id"`
	PatientID      string      `json:"patientId"`
	Symptoms       []string    `json:"symptoms"`
	Diagnosis      string      `json:"diagnosis,omitempty"`
	Recommendation string      `json:"recommendation,omitempty"`
	Severity       string      `json:"severity,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	Report         *Report     `json:"report,omitempty"`
	Validation     *Validation `json:"validation,omitempty"`
}
