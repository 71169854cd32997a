package emergency

import (
	"context"
	"log"

	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
)

// LogDispatcher records ambulance dispatches. It stands in for the real
// emergency-response integration, which is an external collaborator.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher { return &LogDispatcher{} }

func (d *LogDispatcher) Dispatch(_ context.Context, patientID string, location *patient.Coordinates) error {
	if location != nil {
		log.Printf("[emergency] ambulance dispatched for patient=%s to lat=%.4f lon=%.4f", patientID, location.Lat, location.Lon)
	} else {
		log.Printf("[emergency] ambulance dispatched for patient=%s (no location on record)", patientID)
	}
	return nil
}

// LogAccelerator records appointment accelerations for severe cases.
type LogAccelerator struct{}

func NewLogAccelerator() *LogAccelerator { return &LogAccelerator{} }

func (a *LogAccelerator) Accelerate(_ context.Context, patientID string) error {
	log.Printf("[emergency] appointment moved forward 24h for patient=%s", patientID)
	return nil
}
