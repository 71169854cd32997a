package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/ocanamx/salud-rural/backend/internal/model/intent"
	"github.com/ocanamx/salud-rural/backend/internal/service/gateway"
)

// fakeGateway pops one canned reply per Ask call.
type fakeGateway struct {
	replies []string
	err     error
	calls   int
}

func (g *fakeGateway) Ask(_ context.Context, _ gateway.Request) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", errors.New("fake gateway exhausted")
	}
	next := g.replies[0]
	g.replies = g.replies[1:]
	return next, nil
}

// staticConfirmer answers every confirmation the same way.
type staticConfirmer struct {
	ok  bool
	err error
}

func (c staticConfirmer) Confirm(_ context.Context, _ string) (bool, error) {
	return c.ok, c.err
}

type namedTool struct {
	name     string
	category intent.Intent
}

func (t namedTool) Name() string            { return t.name }
func (t namedTool) Description() string     { return t.name }
func (t namedTool) Category() intent.Intent { return t.category }
func (t namedTool) Run(_ context.Context, _ Request) Outcome {
	return Outcome{Status: StatusSuccess}
}

func TestRegistryForIntent(t *testing.T) {
	first := namedTool{name: "first", category: intent.Emergency}
	second := namedTool{name: "second", category: intent.Payment}

	r := NewRegistry(first, second)

	got, ok := r.ForIntent(intent.Emergency)
	if !ok || got.Name() != "first" {
		t.Fatalf("expected first, got %v ok=%v", got, ok)
	}
	if _, ok := r.ForIntent(intent.General); ok {
		t.Fatal("general must have no registered tool")
	}
}

func TestRegistryIgnoresDuplicateCategory(t *testing.T) {
	first := namedTool{name: "first", category: intent.Payment}
	duplicate := namedTool{name: "duplicate", category: intent.Payment}

	r := NewRegistry(first, duplicate)

	got, ok := r.ForIntent(intent.Payment)
	if !ok || got.Name() != "first" {
		t.Fatalf("expected the first registration to win, got %v", got)
	}
	if len(r.List()) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(r.List()))
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "$5.50", want: 5.50},
		{raw: "5.50", want: 5.50},
		{raw: " $8 ", want: 8},
		{raw: "7,25", want: 7.25},
		{raw: "gratis", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "$-3", wantErr: true},
	}

	for _, tc := range cases {
		got, err := parsePrice(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parsePrice(%q) = %v, want error", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePrice(%q) returned error: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parsePrice(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestImageDeliveryConsentFlow(t *testing.T) {
	poster := &recordingPoster{}
	delivery := NewImageDelivery(staticConfirmer{ok: true}, poster)

	outcome := delivery.Deliver(context.Background(), "p-1", "rash.jpg", []byte{1, 2, 3}, "Sí")
	if outcome.Status != StatusSuccess {
		t.Fatalf("expected success, got %s: %s", outcome.Status, outcome.Message)
	}
	if !poster.posted || poster.filename != "rash.jpg" {
		t.Fatalf("expected posted image, got %+v", poster)
	}
}

func TestImageDeliveryDeclined(t *testing.T) {
	poster := &recordingPoster{}
	delivery := NewImageDelivery(staticConfirmer{ok: false}, poster)

	outcome := delivery.Deliver(context.Background(), "p-1", "rash.jpg", []byte{1}, "No")
	if outcome.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", outcome.Status)
	}
	if poster.posted {
		t.Fatal("image must not be posted after a decline")
	}
}

type recordingPoster struct {
	posted   bool
	filename string
	err      error
}

func (p *recordingPoster) Post(_ context.Context, _, filename string, _ []byte) error {
	if p.err != nil {
		return p.err
	}
	p.posted = true
	p.filename = filename
	return nil
}
