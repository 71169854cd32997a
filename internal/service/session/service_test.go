package session_test

import (
	"context"
	"testing"

	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
	session "github.com/ocanamx/salud-rural/backend/internal/service/session"
)

func TestCreateSeedsGreeting(t *testing.T) {
	svc := session.NewService()
	ctx := context.Background()

	sess, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if sess.Patient.ID == "" {
		t.Fatal("expected generated patient id")
	}

	transcript, err := svc.Transcript(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(transcript) != 1 || transcript[0].Role != chat.RoleAssistant {
		t.Fatalf("expected single assistant greeting, got %+v", transcript)
	}
	if transcript[0].Content != session.Greeting {
		t.Fatalf("unexpected greeting: %s", transcript[0].Content)
	}
}

func TestResetIssuesNewPatient(t *testing.T) {
	svc := session.NewService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx)
	_ = svc.AppendMessage(ctx, chat.Message{SessionID: sess.ID, Role: chat.RoleUser, Content: "hola"})
	_ = svc.ReplaceCart(ctx, sess.ID, []patient.Medication{{Name: "paracetamol"}})

	updated, previousID, err := svc.Reset(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Reset err: %v", err)
	}
	if previousID != sess.Patient.ID {
		t.Fatalf("expected previous patient id %s, got %s", sess.Patient.ID, previousID)
	}
	if updated.Patient.ID == sess.Patient.ID {
		t.Fatal("expected a fresh patient id after reset")
	}

	transcript, _ := svc.Transcript(ctx, sess.ID)
	if len(transcript) != 1 {
		t.Fatalf("expected transcript reset to greeting, got %d messages", len(transcript))
	}
	cart, _ := svc.Cart(ctx, sess.ID)
	if len(cart) != 0 {
		t.Fatalf("expected empty cart after reset, got %d entries", len(cart))
	}
}

func TestReplaceCartIsWholesale(t *testing.T) {
	svc := session.NewService()
	ctx := context.Background()
	sess, _ := svc.Create(ctx)

	first := []patient.Medication{{Name: "ibuprofeno"}, {Name: "loratadina"}}
	second := []patient.Medication{{Name: "omeprazol"}}

	if err := svc.ReplaceCart(ctx, sess.ID, first); err != nil {
		t.Fatalf("ReplaceCart err: %v", err)
	}
	if err := svc.ReplaceCart(ctx, sess.ID, second); err != nil {
		t.Fatalf("ReplaceCart err: %v", err)
	}

	cart, _ := svc.Cart(ctx, sess.ID)
	if len(cart) != 1 || cart[0].Name != "omeprazol" {
		t.Fatalf("expected cart to equal second list exactly, got %+v", cart)
	}
}

func TestUnknownSession(t *testing.T) {
	svc := session.NewService()
	ctx := context.Background()

	if _, err := svc.Get(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing session")
	}
	if err := svc.AppendMessage(ctx, chat.Message{SessionID: "missing"}); err == nil {
		t.Fatal("expected error appending to missing session")
	}
}
