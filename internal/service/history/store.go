package history

import (
	"context"
	"errors"

	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
)

var ErrNoEncounters = errors.New("no encounters recorded for patient")

// Store is the append-only case history. Encounters accrete: reports and
// validation records are attached to the latest encounter in place, they
// never replace it. The only destructive operation is Reset, which backs
// the "new patient" action.
type Store interface {
	Append(ctx context.Context, encounter *triage.Encounter) error
	Latest(ctx context.Context, patientID string) (triage.Encounter, error)
	All(ctx context.Context, patientID string) ([]triage.Encounter, error)
	AttachReport(ctx context.Context, patientID string, report triage.Report) error
	AttachValidation(ctx context.Context, patientID string, validation triage.Validation) error
	Reset(ctx context.Context, patientID string) error
}
