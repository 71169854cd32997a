package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
)

type fakeResearcher struct {
	guidance string
	summary  string
	err      error
}

func (r *fakeResearcher) Consult(_ context.Context, summary string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.summary = summary
	return r.guidance, nil
}

func TestResearchConsultsWithSummary(t *testing.T) {
	gw := &fakeGateway{replies: []string{"Paciente con tos seca desde hace una semana, sin fiebre."}}
	researcher := &fakeResearcher{guidance: "## Posibles diagnósticos\nBronquitis leve."}
	tool := NewResearch(gw, researcher)

	outcome := tool.Run(context.Background(), Request{
		PatientID:   "p-1",
		UserMessage: "¿Qué puede ser esta tos?",
		History: []chat.Message{
			{Role: chat.RoleUser, Content: "Llevo una semana tosiendo"},
		},
	})

	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s: %s", outcome.Status, outcome.Message)
	}
	if !strings.Contains(outcome.Message, "Bronquitis leve") {
		t.Fatalf("message missing guidance: %q", outcome.Message)
	}
	if !strings.Contains(outcome.Message, "no sustituye una consulta médica") {
		t.Fatalf("message missing disclaimer: %q", outcome.Message)
	}
	if researcher.summary != "Paciente con tos seca desde hace una semana, sin fiebre." {
		t.Fatalf("unexpected summary sent to the researcher: %q", researcher.summary)
	}
	if gw.calls != 1 {
		t.Fatalf("expected a single summarization call, got %d", gw.calls)
	}
}

func TestResearchSummaryFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("model unavailable")}
	researcher := &fakeResearcher{guidance: "unused"}
	tool := NewResearch(gw, researcher)

	outcome := tool.Run(context.Background(), Request{PatientID: "p-1", UserMessage: "tos"})
	if outcome.Status != StatusError {
		t.Fatalf("expected error status, got %s", outcome.Status)
	}
	if researcher.summary != "" {
		t.Fatal("researcher must not be consulted without a summary")
	}
}

func TestResearchConsultationFailure(t *testing.T) {
	gw := &fakeGateway{replies: []string{"resumen"}}
	tool := NewResearch(gw, &fakeResearcher{err: errors.New("endpoint down")})

	outcome := tool.Run(context.Background(), Request{PatientID: "p-1", UserMessage: "tos"})
	if outcome.Status != StatusError {
		t.Fatalf("expected error status, got %s", outcome.Status)
	}
}
