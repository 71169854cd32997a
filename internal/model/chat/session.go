package chat

import (
	"time"

	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
)

// Session captures one anonymous conversation and the patient it belongs
// to. Patient identity is regenerated when the session is reset.
type Session struct {
	ID        string          `json:"id"`
	Patient   patient.Patient `json:"patient"`
	CreatedAt time.Time       `json:"createdAt"`
}
