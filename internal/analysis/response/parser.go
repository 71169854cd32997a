package response

import (
	"encoding/json"
	"strings"

	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
	"github.com/ocanamx/salud-rural/backend/internal/model/triage"
)

// Result is the parsed form of one model reply. When Structured is false
// the decode failed and Content carries the raw text unmodified so callers
// can still display it as conversational content.
type Result struct {
	Structured  bool
	Content     string
	ToolsUsed   []string
	Medications []patient.Medication
	Report      *triage.ReportData
}

type generalReply struct {
	Content   string   `json:"content"`
	ToolsUsed []string `json:"tools_used"`
}

type medicationReply struct {
	Content     string               `json:"content"`
	Medications []patient.Medication `json:"medications"`
}

// Parse attempts a strict decode of raw against the schema for the given
// category. Decode failure is not an error: the raw text comes back as an
// unstructured result.
func Parse(category intent.Intent, raw string) Result {
	fallback := Result{Structured: false, Content: raw}

	payload, ok := ExtractJSON(raw)
	if !ok {
		return fallback
	}

	switch category {
	case intent.Medication:
		var reply medicationReply
		if err := json.Unmarshal([]byte(payload), &reply); err != nil || reply.Content == "" {
			return fallback
		}
		return Result{Structured: true, Content: reply.Content, Medications: reply.Medications}

	case intent.Diagnosis:
		var data triage.ReportData
		if err := json.Unmarshal([]byte(payload), &data); err != nil || data.Diagnosis == "" {
			return fallback
		}
		return Result{Structured: true, Content: data.Diagnosis, Report: &data}

	default:
		var reply generalReply
		if err := json.Unmarshal([]byte(payload), &reply); err != nil || reply.Content == "" {
			return fallback
		}
		return Result{Structured: true, Content: reply.Content, ToolsUsed: reply.ToolsUsed}
	}
}

// ExtractJSON cuts the first '{' .. last '}' span out of model output,
// tolerating prose or code fences around the object.
func ExtractJSON(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return trimmed[start : end+1], true
}
