package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
)

// MemoryStore keeps per-patient encounter lists in memory. It is the
// default backend; state does not survive a restart.
type MemoryStore struct {
	mu         sync.RWMutex
	encounters map[string][]*triage.Encounter
}

// NewMemoryStore returns an empty in-memory history.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{encounters: make(map[string][]*triage.Encounter)}
}

// Append records the encounter as the patient's new latest.
func (s *MemoryStore) Append(_ context.Context, encounter *triage.Encounter) error {
	if encounter.ID == "" {
		encounter.ID = uuid.NewString()
	}
	if encounter.CreatedAt.IsZero() {
		encounter.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *encounter
	s.encounters[encounter.PatientID] = append(s.encounters[encounter.PatientID], &stored)
	return nil
}

// Latest returns the most recently appended encounter.
func (s *MemoryStore) Latest(_ context.Context, patientID string) (triage.Encounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.encounters[patientID]
	if len(list) == 0 {
		return triage.Encounter{}, ErrNoEncounters
	}
	return *list[len(list)-1], nil
}

// All returns the patient's encounters in append order.
func (s *MemoryStore) All(_ context.Context, patientID string) ([]triage.Encounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.encounters[patientID]
	copied := make([]triage.Encounter, 0, len(list))
	for _, e := range list {
		copied = append(copied, *e)
	}
	return copied, nil
}

// AttachReport sets the report on the latest encounter in place.
func (s *MemoryStore) AttachReport(_ context.Context, patientID string, report triage.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.encounters[patientID]
	if len(list) == 0 {
		return ErrNoEncounters
	}
	list[len(list)-1].Report = &report
	return nil
}

// AttachValidation sets the validation record on the latest encounter.
// Re-validating overwrites the previous record.
func (s *MemoryStore) AttachValidation(_ context.Context, patientID string, validation triage.Validation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.encounters[patientID]
	if len(list) == 0 {
		return ErrNoEncounters
	}
	list[len(list)-1].Validation = &validation
	return nil
}

// Reset drops the patient's history entirely.
func (s *MemoryStore) Reset(_ context.Context, patientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.encounters, patientID)
	return nil
}
