package tools

import (
	"context"

	"github.com/ocanamx/salud-rural/backend/internal/model/chat"
	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
	analysis "github.com/ocanamx/salud-rural/backend/internal/analysis/triage"
)

// Status labels a tool outcome.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Request carries the per-turn context a tool may need. Tools never mutate
// session state themselves; anything to persist travels back in the Outcome.
type Request struct {
	SessionID   string
	PatientID   string
	UserMessage string
	History     []chat.Message
	Cart        []patient.Medication
	Location    *patient.Coordinates
}

// Outcome is the structured result of one tool run. Message is always
// user-facing; the optional payloads tell the dispatcher what to persist.
type Outcome struct {
	Status    Status
	Message   string
	Severity  analysis.Level
	Report    *triage.Report
	ClearCart bool
}

// Tool is a named capability the dispatcher can select. Description is the
// natural-language usage text surfaced to the routing layer.
type Tool interface {
	Name() string
	Description() string
	Category() intent.Intent
	Run(ctx context.Context, req Request) Outcome
}

// Confirmer adjudicates a yes/no decision on behalf of the patient before
// any external effect runs.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Registry holds the fixed tool set, indexed by dispatch category.
type Registry struct {
	byCategory map[intent.Intent]Tool
	ordered    []Tool
}

// NewRegistry indexes the given tools. Later tools with a repeated
// category are ignored: one canonical implementation per capability.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byCategory: make(map[intent.Intent]Tool)}
	for _, t := range tools {
		if _, exists := r.byCategory[t.Category()]; exists {
			continue
		}
		r.byCategory[t.Category()] = t
		r.ordered = append(r.ordered, t)
	}
	return r
}

// ForIntent selects the handler matching the classified tag, if any.
func (r *Registry) ForIntent(it intent.Intent) (Tool, bool) {
	t, ok := r.byCategory[it]
	return t, ok
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Tool {
	return append([]Tool(nil), r.ordered...)
}
