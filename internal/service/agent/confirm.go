package agent

import (
	"context"
	"strings"
	"unicode"

	"github.com/ocanamx/salud-rural/backend/internal/service/gateway"
)

const confirmSystemPrompt = `Actúas en nombre del paciente para decidir sí o no.
Lee la propuesta y la respuesta del paciente, y contesta únicamente "Sí" o "No".`

// Confirmer is the shared yes/no decision pattern mediated by the gateway.
// Appointment changes, payments and image delivery all go through it; it
// is implemented once, never per tool.
type Confirmer struct {
	gw gateway.Client
}

func NewConfirmer(gw gateway.Client) *Confirmer {
	return &Confirmer{gw: gw}
}

// Confirm asks the gateway to adjudicate the decision. Any answer without
// an affirmative token is a decline; there is no "unclear" branch.
func (c *Confirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	resp, err := c.gw.Ask(ctx, gateway.Request{
		System: confirmSystemPrompt,
		Query:  prompt,
	})
	if err != nil {
		return false, err
	}
	return Affirmative(resp), nil
}

// Affirmative reports whether the text contains an affirmative token:
// "yes" or "sí" as substrings (case-insensitive), or the bare word "si".
// The word check avoids false positives from words like "visita".
func Affirmative(text string) bool {
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "yes") || strings.Contains(lowered, "sí") {
		return true
	}
	words := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		if word == "si" {
			return true
		}
	}
	return false
}
