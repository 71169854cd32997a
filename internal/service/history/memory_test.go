package history_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
	history "github.com/ocanamx/salud-rural/backend/internal/service/history"
)

func TestAppendTracksLatest(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := store.Append(ctx, &triage.Encounter{
			PatientID: "p1",
			Diagnosis: fmt.Sprintf("caso %d", i),
		})
		if err != nil {
			t.Fatalf("Append err: %v", err)
		}
	}

	latest, err := store.Latest(ctx, "p1")
	if err != nil {
		t.Fatalf("Latest err: %v", err)
	}
	if latest.Diagnosis != "caso 4" {
		t.Fatalf("expected latest to be the 5th encounter, got %s", latest.Diagnosis)
	}

	all, _ := store.All(ctx, "p1")
	if len(all) != 5 {
		t.Fatalf("expected 5 encounters, got %d", len(all))
	}
}

func TestAttachValidationMutatesOnlyLatest(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()

	_ = store.Append(ctx, &triage.Encounter{PatientID: "p1", Diagnosis: "primero"})
	_ = store.Append(ctx, &triage.Encounter{PatientID: "p1", Diagnosis: "segundo"})

	err := store.AttachValidation(ctx, "p1", triage.Validation{
		Status:    triage.ValidationConfirmed,
		Validator: "Dr. Juan Pérez",
	})
	if err != nil {
		t.Fatalf("AttachValidation err: %v", err)
	}

	all, _ := store.All(ctx, "p1")
	if all[0].Validation != nil {
		t.Fatal("prior encounter must stay unchanged")
	}
	if all[1].Validation == nil || all[1].Validation.Status != triage.ValidationConfirmed {
		t.Fatalf("latest encounter missing validation: %+v", all[1])
	}
}

func TestRevalidationOverwrites(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()

	_ = store.Append(ctx, &triage.Encounter{PatientID: "p1"})
	_ = store.AttachValidation(ctx, "p1", triage.Validation{Status: triage.ValidationConfirmed})
	_ = store.AttachValidation(ctx, "p1", triage.Validation{Status: triage.ValidationRejected})

	latest, _ := store.Latest(ctx, "p1")
	if latest.Validation.Status != triage.ValidationRejected {
		t.Fatalf("expected overwrite, got %s", latest.Validation.Status)
	}
}

func TestAttachReportOnEmptyHistory(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()

	if err := store.AttachReport(ctx, "nobody", triage.Report{}); err != history.ErrNoEncounters {
		t.Fatalf("expected ErrNoEncounters, got %v", err)
	}
}

func TestResetDropsHistory(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()

	_ = store.Append(ctx, &triage.Encounter{PatientID: "p1"})
	_ = store.Reset(ctx, "p1")

	if _, err := store.Latest(ctx, "p1"); err != history.ErrNoEncounters {
		t.Fatalf("expected empty history after reset, got %v", err)
	}
}
