package tools

import (
	"context"
	"fmt"
	"log"

	analysis "github.com/ocanamx/salud-rural/backend/internal/analysis/triage"
	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
	"github.com/ocanamx/salud-rural/backend/internal/service/gateway"
)

// AmbulanceDispatcher is the external emergency-response effect.
type AmbulanceDispatcher interface {
	Dispatch(ctx context.Context, patientID string, location *patient.Coordinates) error
}

// AppointmentAccelerator moves an existing appointment forward for severe
// but non-emergency cases.
type AppointmentAccelerator interface {
	Accelerate(ctx context.Context, patientID string) error
}

const severityPrompt = `Eres un médico de triaje. Analiza los síntomas descritos y clasifica su gravedad.
Responde con una sola palabra, exactamente una de: "emergencia", "grave", "leve", "sano".`

// Emergency scores the symptoms once and maps the severity level onto a
// discrete action: ambulance (4), accelerated appointment (3), or an
// informational message (1-2).
type Emergency struct {
	gw          gateway.Client
	ambulance   AmbulanceDispatcher
	accelerator AppointmentAccelerator
}

func NewEmergency(gw gateway.Client, ambulance AmbulanceDispatcher, accelerator AppointmentAccelerator) *Emergency {
	return &Emergency{gw: gw, ambulance: ambulance, accelerator: accelerator}
}

func (t *Emergency) Name() string { return "emergency_triage" }

func (t *Emergency) Description() string {
	return "Evalúa la gravedad de los síntomas y llama a una ambulancia o adelanta la cita según el nivel de urgencia."
}

func (t *Emergency) Category() intent.Intent { return intent.Emergency }

func (t *Emergency) Run(ctx context.Context, req Request) Outcome {
	// Single scoring call per turn; the level is reused for both the
	// action and the reported severity.
	level, err := t.score(ctx, req)
	if err != nil {
		return Outcome{Status: StatusError, Message: "No se pudo evaluar la gravedad de sus síntomas. Por favor, inténtelo de nuevo."}
	}

	switch level {
	case analysis.Emergency:
		if err := t.ambulance.Dispatch(ctx, req.PatientID, req.Location); err != nil {
			log.Printf("[emergency] ambulance dispatch failed for patient=%s: %v", req.PatientID, err)
			return Outcome{Status: StatusError, Severity: level, Message: "No se pudo contactar al servicio de ambulancias. Llame al número de emergencias de inmediato."}
		}
		return Outcome{Status: StatusSuccess, Severity: level, Message: "Ambulance dispatched."}

	case analysis.Severe:
		if err := t.accelerator.Accelerate(ctx, req.PatientID); err != nil {
			log.Printf("[emergency] appointment acceleration failed for patient=%s: %v", req.PatientID, err)
			return Outcome{Status: StatusError, Severity: level, Message: "No se pudo adelantar su cita. Contacte a su centro de salud."}
		}
		return Outcome{Status: StatusSuccess, Severity: level, Message: "Le hemos adelantado su visita para dentro de 24 horas."}

	default:
		return Outcome{Status: StatusSuccess, Severity: level, Message: "Sus síntomas no indican una emergencia inmediata. Vigile su evolución y consulte si empeoran."}
	}
}

func (t *Emergency) score(ctx context.Context, req Request) (analysis.Level, error) {
	resp, err := t.gw.Ask(ctx, gateway.Request{
		System: severityPrompt,
		Query:  fmt.Sprintf("Síntomas: %s", req.UserMessage),
	})
	if err != nil {
		return 0, err
	}
	return analysis.Classify(resp), nil
}
