package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
)

const encountersSchema = `
CREATE TABLE IF NOT EXISTS encounters (
    id             UUID PRIMARY KEY,
    patient_id     TEXT NOT NULL,
    symptoms       TEXT[] NOT NULL DEFAULT '{}',
    diagnosis      TEXT NOT NULL DEFAULT '',
    recommendation TEXT NOT NULL DEFAULT '',
    severity       TEXT NOT NULL DEFAULT '',
    report         JSONB,
    validation     JSONB,
    created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS encounters_patient_idx ON encounters (patient_id, created_at);
`

// PostgresStore persists encounters in Postgres. Report and validation
// payloads are stored as JSONB so attach operations stay in-place updates
// of the same row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the connection and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, encountersSchema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Append(ctx context.Context, encounter *triage.Encounter) error {
	if encounter.ID == "" {
		encounter.ID = uuid.NewString()
	}
	if encounter.CreatedAt.IsZero() {
		encounter.CreatedAt = time.Now().UTC()
	}

	var reportJSON []byte
	if encounter.Report != nil {
		data, err := json.Marshal(encounter.Report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		reportJSON = data
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO encounters (id, patient_id, symptoms, diagnosis, recommendation, severity, report, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		encounter.ID, encounter.PatientID, pq.Array(encounter.Symptoms),
		encounter.Diagnosis, encounter.Recommendation, encounter.Severity,
		reportJSON, encounter.CreatedAt,
	)
	return err
}

func (s *PostgresStore) Latest(ctx context.Context, patientID string) (triage.Encounter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, patient_id, symptoms, diagnosis, recommendation, severity, report, validation, created_at
         FROM encounters WHERE patient_id = $1 ORDER BY created_at DESC LIMIT 1`,
		patientID,
	)
	encounter, err := scanEncounter(row)
	if err == sql.ErrNoRows {
		return triage.Encounter{}, ErrNoEncounters
	}
	return encounter, err
}

func (s *PostgresStore) All(ctx context.Context, patientID string) ([]triage.Encounter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, patient_id, symptoms, diagnosis, recommendation, severity, report, validation, created_at
         FROM encounters WHERE patient_id = $1 ORDER BY created_at ASC`,
		patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var encounters []triage.Encounter
	for rows.Next() {
		encounter, err := scanEncounter(rows)
		if err != nil {
			return nil, err
		}
		encounters = append(encounters, encounter)
	}
	return encounters, rows.Err()
}

func (s *PostgresStore) AttachReport(ctx context.Context, patientID string, report triage.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return s.updateLatest(ctx, patientID, "report", data)
}

func (s *PostgresStore) AttachValidation(ctx context.Context, patientID string, validation triage.Validation) error {
	data, err := json.Marshal(validation)
	if err != nil {
		return fmt.Errorf("failed to marshal validation: %w", err)
	}
	return s.updateLatest(ctx, patientID, "validation", data)
}

func (s *PostgresStore) Reset(ctx context.Context, patientID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM encounters WHERE patient_id = $1`, patientID)
	return err
}

func (s *PostgresStore) updateLatest(ctx context.Context, patientID, column string, payload []byte) error {
	// column is one of the fixed names above, never user input.
	query := fmt.Sprintf(
		`UPDATE encounters SET %s = $2
         WHERE id = (SELECT id FROM encounters WHERE patient_id = $1 ORDER BY created_at DESC LIMIT 1)`,
		column,
	)
	res, err := s.db.ExecContext(ctx, query, patientID, payload)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoEncounters
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEncounter(row rowScanner) (triage.Encounter, error) {
	var (
		encounter      triage.Encounter
		symptoms       pq.StringArray
		reportJSON     []byte
		validationJSON []byte
	)

	err := row.Scan(
		&encounter.ID, &encounter.PatientID, &symptoms,
		&encounter.Diagnosis, &encounter.Recommendation, &encounter.Severity,
		&reportJSON, &validationJSON, &encounter.CreatedAt,
	)
	if err != nil {
		return triage.Encounter{}, err
	}

	encounter.Symptoms = []string(symptoms)
	if len(reportJSON) > 0 {
		report := triage.Report{}
		if err := json.Unmarshal(reportJSON, &report); err != nil {
			return triage.Encounter{}, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		encounter.Report = &report
	}
	if len(validationJSON) > 0 {
		validation := triage.Validation{}
		if err := json.Unmarshal(validationJSON, &validation); err != nil {
			return triage.Encounter{}, fmt.Errorf("failed to unmarshal validation: %w", err)
		}
		encounter.Validation = &validation
	}
	return encounter, nil
}
