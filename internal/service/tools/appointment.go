package tools

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
	"github.com/ocanamx/salud-rural/backend/internal/service/gateway"
)

// Messenger delivers a message to an address. The SMTP implementation
// lives under internal/platform/mail; tests stub this.
type Messenger interface {
	Send(ctx context.Context, to, subject, body string) error
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

const mailDraftPrompt = `Eres un asistente que redacta correos de confirmación de citas médicas.
Redacta el cuerpo de un correo breve en español confirmando la cita, con esta estructura:

Tu cita médica ha sido confirmada exitosamente.

Fecha y hora: {fecha}
Médico asignado: {médico}

Gracias por confiar en nuestro servicio de salud.

Atentamente,
Equipo Médico Rural`

// Appointment reschedules the patient's visit after an explicit
// confirmation and mails the confirmation when an address is known.
type Appointment struct {
	confirmer Confirmer
	gw        gateway.Client
	messenger Messenger
	now       func() time.Time
}

func NewAppointment(confirmer Confirmer, gw gateway.Client, messenger Messenger) *Appointment {
	return &Appointment{confirmer: confirmer, gw: gw, messenger: messenger, now: time.Now}
}

func (t *Appointment) Name() string { return "schedule_appointment" }

func (t *Appointment) Description() string {
	return "Propone aplazar o adelantar la cita del paciente, pide confirmación y envía el correo de confirmación."
}

func (t *Appointment) Category() intent.Intent { return intent.Appointment }

func (t *Appointment) Run(ctx context.Context, req Request) Outcome {
	desiredDate := t.now().Add(24 * time.Hour).Format("02/01/2006")

	prompt := fmt.Sprintf(`Se propone el siguiente cambio de cita:

Paciente: %s
Fecha propuesta: %s

¿Desea confirmar este cambio de cita? Responda "Sí" para confirmar o "No" para cancelar.

Respuesta del paciente: %s`, req.PatientID, desiredDate, req.UserMessage)

	confirmed, err := t.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return Outcome{Status: StatusError, Message: "No se pudo confirmar el cambio de cita. Por favor, inténtelo de nuevo."}
	}
	if !confirmed {
		return Outcome{Status: StatusCancelled, Message: "De acuerdo, no habrá cambios en su cita."}
	}

	email := findEmail(req.UserMessage, req.History)
	if email == "" {
		return Outcome{
			Status:  StatusSuccess,
			Message: fmt.Sprintf("Se le ha aplazado la cita para %s. Indíquenos su correo electrónico para enviarle la confirmación.", desiredDate),
		}
	}

	if err := t.sendConfirmation(ctx, email, desiredDate); err != nil {
		log.Printf("[appointment] confirmation mail failed for patient=%s: %v", req.PatientID, err)
		return Outcome{
			Status:  StatusError,
			Message: fmt.Sprintf("Se le ha aplazado la cita para %s, pero no se pudo enviar el correo de confirmación a %s.", desiredDate, email),
		}
	}

	return Outcome{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Se le ha aplazado la cita para %s. Hemos enviado la confirmación a %s.", desiredDate, email),
	}
}

func (t *Appointment) sendConfirmation(ctx context.Context, email, date string) error {
	body, err := t.gw.Ask(ctx, gateway.Request{
		System: mailDraftPrompt,
		Query:  fmt.Sprintf("Redacta el correo para la cita del %s.", date),
	})
	if err != nil || body == "" {
		// The mail still goes out with a plain fallback body.
		body = fmt.Sprintf("Tu cita médica ha sido confirmada exitosamente.\n\nFecha y hora: %s\n\nGracias por confiar en nuestro servicio de salud.\n\nAtentamente,\nEquipo Médico Rural", date)
	}
	return t.messenger.Send(ctx, email, "Confirmación de cita médica", body)
}

// findEmail scans the latest message first, then earlier user turns.
func findEmail(latest string, history []chat.Message) string {
	if match := emailPattern.FindString(latest); match != "" {
		return match
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != chat.RoleUser {
			continue
		}
		if match := emailPattern.FindString(history[i].Content); match != "" {
			return match
		}
	}
	return ""
}
