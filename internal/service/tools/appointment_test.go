package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
)

type fakeMessenger struct {
	sent    bool
	to      string
	subject string
	body    string
	err     error
}

func (m *fakeMessenger) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = true
	m.to = to
	m.subject = subject
	m.body = body
	return nil
}

func fixedAppointment(confirmer Confirmer, gw *fakeGateway, messenger Messenger) *Appointment {
	tool := NewAppointment(confirmer, gw, messenger)
	tool.now = func() time.Time {
		return time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)
	}
	return tool
}

func TestAppointmentDeclined(t *testing.T) {
	messenger := &fakeMessenger{}
	tool := fixedAppointment(staticConfirmer{ok: false}, &fakeGateway{}, messenger)

	outcome := tool.Run(context.Background(), Request{PatientID: "p-1", UserMessage: "No"})

	if outcome.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", outcome.Status)
	}
	if outcome.Message != "De acuerdo, no habrá cambios en su cita." {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
	if messenger.sent {
		t.Fatal("mail must not be sent after a decline")
	}
}

func TestAppointmentConfirmedMailsAddressFromMessage(t *testing.T) {
	messenger := &fakeMessenger{}
	gw := &fakeGateway{replies: []string{"Su cita ha sido confirmada para el 10/03/2026."}}
	tool := fixedAppointment(staticConfirmer{ok: true}, gw, messenger)

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "Sí, confirmo. Mi correo es maria.perez@example.com",
	})

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s: %s", outcome.Status, outcome.Message)
	}
	if !messenger.sent || messenger.to != "maria.perez@example.com" {
		t.Fatalf("expected mail to patient, got %+v", messenger)
	}
	if !strings.Contains(outcome.Message, "10/03/2026") {
		t.Fatalf("message missing rescheduled date: %q", outcome.Message)
	}
}

func TestAppointmentFindsAddressInHistory(t *testing.T) {
	messenger := &fakeMessenger{}
	gw := &fakeGateway{replies: []string{"cuerpo del correo"}}
	tool := fixedAppointment(staticConfirmer{ok: true}, gw, messenger)

	history := []chat.Message{
		{Role: chat.RoleUser, Content: "Mi correo es juan@example.com"},
		{Role: chat.RoleAssistant, Content: "Gracias."},
	}

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "Sí, adelante",
		History:     history,
	})

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s", outcome.Status)
	}
	if messenger.to != "juan@example.com" {
		t.Fatalf("expected history address, got %q", messenger.to)
	}
}

func TestAppointmentNoAddressAsksForOne(t *testing.T) {
	messenger := &fakeMessenger{}
	tool := fixedAppointment(staticConfirmer{ok: true}, &fakeGateway{}, messenger)

	outcome := tool.Run(context.Background(), Request{PatientID: "p-1", UserMessage: "Sí"})

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "correo") {
		t.Fatalf("expected a request for the address: %q", outcome.Message)
	}
	if messenger.sent {
		t.Fatal("mail must not be sent without an address")
	}
}

func TestAppointmentMailFailure(t *testing.T) {
	messenger := &fakeMessenger{err: errors.New("relay refused")}
	gw := &fakeGateway{replies: []string{"cuerpo"}}
	tool := fixedAppointment(staticConfirmer{ok: true}, gw, messenger)

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "Sí, mi correo es ana@example.com",
	})

	if outcome.Status != StatusError {
		t.Fatalf("expected error status, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "ana@example.com") {
		t.Fatalf("message must name the failed address: %q", outcome.Message)
	}
}

func TestAppointmentMailBodyFallsBackWhenGatewayFails(t *testing.T) {
	messenger := &fakeMessenger{}
	gw := &fakeGateway{err: errors.New("model unavailable")}
	tool := fixedAppointment(staticConfirmer{ok: true}, gw, messenger)

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "Sí, mi correo es ana@example.com",
	})

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s", outcome.Status)
	}
	if !strings.Contains(messenger.body, "10/03/2026") {
		t.Fatalf("fallback body missing the date: %q", messenger.body)
	}
}
