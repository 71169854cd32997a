package tools

import (
	"context"
	"log"
	"strings"

	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
	"github.com/ocanamx/salud-rural/backend/internal/service/gateway"
)

// Researcher queries an online medical research API with a patient
// summary and returns evidence-based guidance.
type Researcher interface {
	Consult(ctx context.Context, summary string) (string, error)
}

const summaryPrompt = `Resume la siguiente conversación con el paciente, destacando:
- Síntomas principales y su duración.
- Condiciones médicas existentes.
- Medicamentos mencionados.
- Preocupaciones de salud concretas.
Escribe un resumen breve, apto para una consulta de investigación médica.`

// Research condenses the conversation into a clinical summary and looks
// it up against the research API. The consultation is informational; no
// external effect runs and nothing is persisted.
type Research struct {
	gw         gateway.Client
	researcher Researcher
}

func NewResearch(gw gateway.Client, researcher Researcher) *Research {
	return &Research{gw: gw, researcher: researcher}
}

func (t *Research) Name() string { return "medical_research" }

func (t *Research) Description() string {
	return "Consulta fuentes médicas en línea para ofrecer orientación basada en evidencia sobre los síntomas descritos."
}

func (t *Research) Category() intent.Intent { return intent.Research }

func (t *Research) Run(ctx context.Context, req Request) Outcome {
	summary, err := t.summarize(ctx, req.History, req.UserMessage)
	if err != nil {
		return Outcome{Status: StatusError, Message: "No se pudo preparar la consulta médica. Por favor, inténtelo de nuevo."}
	}

	guidance, err := t.researcher.Consult(ctx, summary)
	if err != nil {
		log.Printf("[research] consultation failed for patient=%s: %v", req.PatientID, err)
		return Outcome{Status: StatusError, Message: "No se pudo obtener información médica en este momento. Inténtelo más tarde."}
	}

	return Outcome{
		Status:  StatusSuccess,
		Message: guidance + "\n\nEsta información es orientativa y no sustituye una consulta médica.",
	}
}

// summarize runs one gateway call over the transcript so the research
// query carries the whole case, not only the latest message.
func (t *Research) summarize(ctx context.Context, history []chat.Message, userMessage string) (string, error) {
	raw, err := t.gw.Ask(ctx, gateway.Request{
		System:  summaryPrompt,
		History: history,
		Query:   userMessage,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}
