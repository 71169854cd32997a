package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/ocanamx/salud-rural/backend/internal/analysis/response"
	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
	"github.com/ocanamx/salud-rural/backend/internal/service/gateway"
	"github.com/ocanamx/salud-rural/backend/internal/service/history"
	"github.com/ocanamx/salud-rural/backend/internal/service/session"
	"github.com/ocanamx/salud-rural/backend/internal/service/tools"
)

const assistantSystemPrompt = `Eres un asistente de salud compasivo para poblaciones rurales. Guía la conversación para:
- Realizar un análisis completo de los síntomas.
- Proporcionar orientación clara y en lenguaje sencillo.
- Sugerir opciones de tratamiento cercanas.
- Mantener un tono cercano y respetuoso en español.`

const generalSchema = `{"content": "respuesta para el paciente", "tools_used": []}`

const medicationSchema = `{"content": "explicación de los medicamentos", "medications": [{"name": "nombre", "description": "descripción", "price": "precio"}]}`

// ApologyMessage is appended when a turn fails; the conversation is never
// left without an assistant response.
const ApologyMessage = "Lo siento, ha ocurrido un error en el sistema. Por favor, inténtelo de nuevo."

// TurnResult is what one dispatched turn surfaces to the caller.
type TurnResult struct {
	Reply    string        `json:"reply"`
	Intent   intent.Intent `json:"intent"`
	Status   tools.Status  `json:"status,omitempty"`
	Severity string        `json:"severity,omitempty"`
}

// Service is the agent loop: classify, dispatch to a tool or the generic
// conversational handler, parse, persist, respond.
type Service struct {
	gw         gateway.Client
	classifier *Classifier
	sessions   *session.Service
	history    history.Store
	registry   *tools.Registry
	pharmacies *tools.Directory
}

func NewService(gw gateway.Client, sessions *session.Service, store history.Store, registry *tools.Registry, pharmacies *tools.Directory) *Service {
	return &Service{
		gw:         gw,
		classifier: NewClassifier(gw),
		sessions:   sessions,
		history:    store,
		registry:   registry,
		pharmacies: pharmacies,
	}
}

// Turn processes one user message fully. Exactly one assistant message is
// appended to the transcript per call, the apology on failure included.
// The returned error reports gateway-level failures so the transport can
// signal them; the conversation itself stays usable.
func (s *Service) Turn(ctx context.Context, sessionID, userMessage string) (TurnResult, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	transcript, err := s.sessions.Transcript(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	if err := s.sessions.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Content:   userMessage,
	}); err != nil {
		return TurnResult{}, err
	}

	result, turnErr := s.dispatch(ctx, sess.ID, sess.Patient.ID, transcript, userMessage)
	if turnErr != nil {
		log.Printf("[agent] turn failed for session=%s: %v", sessionID, turnErr)
		result.Reply = ApologyMessage
	}

	if err := s.sessions.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   result.Reply,
	}); err != nil {
		return result, err
	}

	return result, turnErr
}

func (s *Service) dispatch(ctx context.Context, sessionID, patientID string, transcript []chat.Message, userMessage string) (TurnResult, error) {
	it, err := s.classifier.Classify(ctx, transcript, userMessage)
	if err != nil {
		return TurnResult{Intent: it}, err
	}

	tool, ok := s.registry.ForIntent(it)
	if !ok {
		// No matching handler: generic conversational branch.
		return s.converse(ctx, sessionID, it, transcript, userMessage)
	}

	cart, err := s.sessions.Cart(ctx, sessionID)
	if err != nil {
		return TurnResult{Intent: it}, err
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return TurnResult{Intent: it}, err
	}

	outcome := tool.Run(ctx, tools.Request{
		SessionID:   sessionID,
		PatientID:   patientID,
		UserMessage: userMessage,
		History:     transcript,
		Cart:        cart,
		Location:    sess.Patient.Location,
	})

	// A report or a severity score both open an encounter; triage-only
	// turns are part of the case history too.
	if outcome.Report != nil || outcome.Severity != 0 {
		encounter := &triage.Encounter{
			PatientID: patientID,
			Symptoms:  []string{userMessage},
		}
		if outcome.Severity != 0 {
			encounter.Severity = outcome.Severity.String()
		}
		if outcome.Report != nil {
			encounter.Diagnosis = outcome.Report.Data.Diagnosis
			encounter.Recommendation = outcome.Report.Data.Recommendations
		}
		if err := s.history.Append(ctx, encounter); err != nil {
			return TurnResult{Intent: it}, fmt.Errorf("failed to append encounter: %w", err)
		}
		if outcome.Report != nil {
			if err := s.history.AttachReport(ctx, patientID, *outcome.Report); err != nil {
				return TurnResult{Intent: it}, fmt.Errorf("failed to attach report: %w", err)
			}
		}
	}

	if outcome.ClearCart {
		if err := s.sessions.ClearCart(ctx, sessionID); err != nil {
			return TurnResult{Intent: it}, err
		}
	}

	result := TurnResult{Reply: outcome.Message, Intent: it, Status: outcome.Status}
	if outcome.Severity != 0 {
		result.Severity = outcome.Severity.String()
	}
	return result, nil
}

// converse handles the general and medication categories with a single
// gateway call against the category's structured-output schema.
func (s *Service) converse(ctx context.Context, sessionID string, it intent.Intent, transcript []chat.Message, userMessage string) (TurnResult, error) {
	schema := generalSchema
	if it == intent.Medication {
		schema = medicationSchema
	}

	raw, err := s.gw.Ask(ctx, gateway.Request{
		System:  assistantSystemPrompt,
		History: transcript,
		Query:   userMessage,
		Schema:  schema,
	})
	if err != nil {
		return TurnResult{Intent: it}, err
	}

	parsed := response.Parse(it, raw)
	reply := parsed.Content

	if it == intent.Medication && parsed.Structured {
		// Structured medication turns replace the cart wholesale.
		if err := s.sessions.ReplaceCart(ctx, sessionID, parsed.Medications); err != nil {
			return TurnResult{Intent: it}, err
		}
		reply = s.appendNearestPharmacy(ctx, sessionID, reply, parsed)
	}

	return TurnResult{Reply: reply, Intent: it}, nil
}

func (s *Service) appendNearestPharmacy(ctx context.Context, sessionID, reply string, parsed response.Result) string {
	if s.pharmacies == nil || len(parsed.Medications) == 0 {
		return reply
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil || sess.Patient.Location == nil {
		return reply
	}
	pharmacy, distance, ok := s.pharmacies.Nearest(sess.Patient.Location, parsed.Medications)
	if !ok {
		return reply + "\n\nNo se encontraron farmacias cercanas con esos medicamentos."
	}
	return reply + fmt.Sprintf("\n\nFarmacia más cercana: %s (%.1f km).", pharmacy.Name, distance)
}
