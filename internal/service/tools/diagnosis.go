package tools

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ocanamx/salud-rural/backend/internal/analysis/response"
	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
	"github.com/ocanamx/salud-rural/backend/internal/service/gateway"
)

// ReportRenderer turns structured diagnosis fields into an opaque document.
type ReportRenderer interface {
	Render(patientID string, data triage.ReportData) ([]byte, error)
}

const diagnosisPrompt = `Como médico especialista, analiza los síntomas descritos por el paciente junto con el historial de la conversación.
Proporciona:
1. Diagnóstico detallado
2. Recetas médicas necesarias
3. Recomendaciones de tratamiento
4. Pruebas adicionales requeridas`

const diagnosisSchema = `{"diagnosis": "texto", "prescriptions": "texto", "recommendations": "texto", "tests": "texto"}`

// Diagnosis produces a structured diagnosis and renders it as a report.
// The dispatcher appends the resulting encounter; the tool itself never
// touches the history store.
type Diagnosis struct {
	gw       gateway.Client
	renderer ReportRenderer
}

func NewDiagnosis(gw gateway.Client, renderer ReportRenderer) *Diagnosis {
	return &Diagnosis{gw: gw, renderer: renderer}
}

func (t *Diagnosis) Name() string { return "expert_diagnosis" }

func (t *Diagnosis) Description() string {
	return "Genera un diagnóstico estructurado a partir de los síntomas y produce el reporte médico en PDF."
}

func (t *Diagnosis) Category() intent.Intent { return intent.Diagnosis }

func (t *Diagnosis) Run(ctx context.Context, req Request) Outcome {
	raw, err := t.gw.Ask(ctx, gateway.Request{
		System:  diagnosisPrompt,
		History: req.History,
		Query:   req.UserMessage,
		Schema:  diagnosisSchema,
	})
	if err != nil {
		return Outcome{Status: StatusError, Message: "No se pudo generar el diagnóstico. Por favor, inténtelo de nuevo."}
	}

	result := response.Parse(intent.Diagnosis, raw)
	if !result.Structured {
		// Degrade to conversational content; no report is produced.
		return Outcome{Status: StatusSuccess, Message: raw}
	}

	report := triage.Report{Data: *result.Report, GeneratedAt: time.Now().UTC()}
	pdf, err := t.renderer.Render(req.PatientID, report.Data)
	if err != nil {
		log.Printf("[diagnosis] report rendering failed for patient=%s: %v", req.PatientID, err)
	} else {
		report.PDF = pdf
	}

	message := result.Report.Diagnosis
	if result.Report.Recommendations != "" {
		message = fmt.Sprintf("%s\n\nRecomendaciones: %s", message, result.Report.Recommendations)
	}

	return Outcome{Status: StatusSuccess, Message: message, Report: &report}
}
