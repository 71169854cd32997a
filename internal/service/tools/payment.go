package tools

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
)

// ChargeRequest describes one medication purchase.
type ChargeRequest struct {
	PatientID  string
	Medication string
	Amount     float64
}

// PaymentClient posts a charge to the pharmacy payment endpoint and
// returns a confirmation reference.
type PaymentClient interface {
	Charge(ctx context.Context, req ChargeRequest) (string, error)
}

// Payment charges the first cart entry after the patient confirms. The
// charge never runs speculatively: a missing or ambiguous confirmation is
// a cancellation.
type Payment struct {
	confirmer Confirmer
	client    PaymentClient
}

func NewPayment(confirmer Confirmer, client PaymentClient) *Payment {
	return &Payment{confirmer: confirmer, client: client}
}

func (t *Payment) Name() string { return "payment_processing" }

func (t *Payment) Description() string {
	return "Pregunta al paciente si desea comprar el medicamento recetado y, si acepta, procesa el pago."
}

func (t *Payment) Category() intent.Intent { return intent.Payment }

func (t *Payment) Run(ctx context.Context, req Request) Outcome {
	if len(req.Cart) == 0 {
		return Outcome{Status: StatusError, Message: "No hay nada en la cesta. Pida primero una recomendación de medicamentos."}
	}

	med := req.Cart[0]
	amount, err := parsePrice(med.Price)
	if err != nil {
		log.Printf("[payment] unparsable price %q for medication=%s: %v", med.Price, med.Name, err)
		return Outcome{Status: StatusError, Message: "El precio del medicamento no es válido. Pida una nueva recomendación antes de pagar."}
	}

	prompt := fmt.Sprintf(`El paciente ha recibido la siguiente receta médica:

Medicamento: %s
Costo: $%.2f

Pregunta al paciente: ¿Desea comprar este medicamento? Responda "Sí" si desea proceder con la compra o "No" si no desea comprarlo.

Respuesta del paciente: %s`, med.Name, amount, req.UserMessage)

	confirmed, err := t.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return Outcome{Status: StatusError, Message: "No se pudo confirmar la compra. Por favor, inténtelo de nuevo."}
	}
	if !confirmed {
		return Outcome{Status: StatusCancelled, Message: "Paciente optó por no proceder con la compra del medicamento."}
	}

	reference, err := t.client.Charge(ctx, ChargeRequest{
		PatientID:  req.PatientID,
		Medication: med.Name,
		Amount:     amount,
	})
	if err != nil {
		log.Printf("[payment] charge failed for patient=%s medication=%s: %v", req.PatientID, med.Name, err)
		return Outcome{Status: StatusError, Message: "El pago no pudo procesarse. Inténtelo más tarde."}
	}

	return Outcome{
		Status:    StatusSuccess,
		ClearCart: true,
		Message:   fmt.Sprintf("Pago de %s procesado correctamente. Referencia: %s", med.Name, reference),
	}
}

// parsePrice rejects anything that is not a plain amount: a charge must
// never run against a guessed price.
func parsePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative price %q", raw)
	}
	return value, nil
}
