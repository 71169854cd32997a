package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ocanamx/salud-rural/backend/internal/analysis/response"
	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
	"github.com/ocanamx/salud-rural/backend/internal/service/gateway"
)

const classifierSystemPrompt = `Eres el clasificador de intención de un asistente de salud.
Determina la categoría del último mensaje del paciente. Las categorías posibles son:
general, medication, diagnosis, emergency, payment, appointment, research.`

const classifierSchema = `{"choice": "una de: general, medication, diagnosis, emergency, payment, appointment, research"}`

type choicePayload struct {
	Choice string `json:"choice"`
}

// Classifier tags each user turn with one intent via a single gateway
// call. No retries: an undecodable answer degrades to its raw text, which
// routes to the general branch downstream.
type Classifier struct {
	gw gateway.Client
}

func NewClassifier(gw gateway.Client) *Classifier {
	return &Classifier{gw: gw}
}

// Classify returns the intent for the latest user message. Only a gateway
// failure is an error; parse failures degrade silently.
func (c *Classifier) Classify(ctx context.Context, history []chat.Message, userMessage string) (intent.Intent, error) {
	raw, err := c.gw.Ask(ctx, gateway.Request{
		System:  classifierSystemPrompt,
		History: history,
		Query:   fmt.Sprintf("Determina el tipo de respuesta para: %s", userMessage),
		Schema:  classifierSchema,
	})
	if err != nil {
		return intent.General, err
	}

	tag := rawTag(raw)
	it, known := intent.Parse(tag)
	if !known {
		log.Printf("[agent] unknown intent tag %q, routing to general", tag)
	}
	return it, nil
}

// rawTag decodes the choice payload, falling back to the raw text as the
// tag value when the decode fails.
func rawTag(raw string) string {
	payload, ok := response.ExtractJSON(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}
	var choice choicePayload
	if err := json.Unmarshal([]byte(payload), &choice); err != nil || choice.Choice == "" {
		return strings.TrimSpace(raw)
	}
	return choice.Choice
}
