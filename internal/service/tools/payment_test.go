package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
)

type fakeCharger struct {
	charged bool
	last    ChargeRequest
	err     error
}

func (c *fakeCharger) Charge(_ context.Context, req ChargeRequest) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.charged = true
	c.last = req
	return "TX-001", nil
}

func cartWith(name, price string) []patient.Medication {
	return []patient.Medication{{Name: name, Description: "test", Price: price}}
}

func TestPaymentEmptyCart(t *testing.T) {
	tool := NewPayment(staticConfirmer{ok: true}, &fakeCharger{})

	outcome := tool.Run(context.Background(), Request{PatientID: "p-1", UserMessage: "sí"})
	if outcome.Status != StatusError {
		t.Fatalf("expected error status, got %s", outcome.Status)
	}
}

func TestPaymentConfirmedCharges(t *testing.T) {
	charger := &fakeCharger{}
	tool := NewPayment(staticConfirmer{ok: true}, charger)

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "Sí, quiero comprarlo",
		Cart:        cartWith("Paracetamol", "$5.50"),
	})

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s: %s", outcome.Status, outcome.Message)
	}
	if !outcome.ClearCart {
		t.Fatal("successful payment must clear the cart")
	}
	if !charger.charged {
		t.Fatal("expected a charge")
	}
	if charger.last.Medication != "Paracetamol" || charger.last.Amount != 5.5 {
		t.Fatalf("unexpected charge: %+v", charger.last)
	}
	if !strings.Contains(outcome.Message, "TX-001") {
		t.Fatalf("message missing reference: %q", outcome.Message)
	}
}

func TestPaymentMalformedPriceCancels(t *testing.T) {
	charger := &fakeCharger{}
	tool := NewPayment(staticConfirmer{ok: true}, charger)

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "sí",
		Cart:        cartWith("Paracetamol", "precio a consultar"),
	})

	if outcome.Status != StatusError {
		t.Fatalf("expected error status, got %s", outcome.Status)
	}
	if charger.charged {
		t.Fatal("charge must not run against an unparsable price")
	}
	if outcome.ClearCart {
		t.Fatal("cart must survive a rejected price")
	}
}

func TestPaymentDeclined(t *testing.T) {
	charger := &fakeCharger{}
	tool := NewPayment(staticConfirmer{ok: false}, charger)

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "No gracias",
		Cart:        cartWith("Paracetamol", "$5.50"),
	})

	if outcome.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", outcome.Status)
	}
	if outcome.ClearCart {
		t.Fatal("declined payment must keep the cart")
	}
	if charger.charged {
		t.Fatal("charge must not run after a decline")
	}
}

func TestPaymentChargeFailure(t *testing.T) {
	charger := &fakeCharger{err: errors.New("endpoint down")}
	tool := NewPayment(staticConfirmer{ok: true}, charger)

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "sí",
		Cart:        cartWith("Paracetamol", "$5.50"),
	})

	if outcome.Status != StatusError {
		t.Fatalf("expected error status, got %s", outcome.Status)
	}
	if outcome.ClearCart {
		t.Fatal("failed payment must keep the cart")
	}
}

func TestPaymentConfirmerFailure(t *testing.T) {
	tool := NewPayment(staticConfirmer{err: errors.New("model unavailable")}, &fakeCharger{})

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "sí",
		Cart:        cartWith("Paracetamol", "$5.50"),
	})

	if outcome.Status != StatusError {
		t.Fatalf("expected error status, got %s", outcome.Status)
	}
}
