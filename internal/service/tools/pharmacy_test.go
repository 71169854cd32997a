package tools

import (
	"testing"

	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
)

func TestNearestPicksClosestStockingFacility(t *testing.T) {
	directory := NewDirectory(SeedPharmacies())
	location := &patient.Coordinates{Lat: -12.3456, Lon: -76.7890}

	pharmacy, distance, ok := directory.Nearest(location, []patient.Medication{{Name: "paracetamol"}})
	if !ok {
		t.Fatal("expected a match")
	}
	if pharmacy.Name != "Farmacia Salud Rural" {
		t.Fatalf("expected the co-located facility, got %s", pharmacy.Name)
	}
	if distance != 0 {
		t.Fatalf("expected zero distance, got %f", distance)
	}
}

func TestNearestMatchesStockCaseInsensitive(t *testing.T) {
	directory := NewDirectory(SeedPharmacies())
	location := &patient.Coordinates{Lat: -12.5, Lon: -76.6}

	pharmacy, _, ok := directory.Nearest(location, []patient.Medication{{Name: "  Metformin "}})
	if !ok {
		t.Fatal("expected a match")
	}
	if pharmacy.Name != "Droguería Vida Sana" {
		t.Fatalf("expected the metformin facility, got %s", pharmacy.Name)
	}
}

func TestNearestNoFacilityStocksMedication(t *testing.T) {
	directory := NewDirectory(SeedPharmacies())
	location := &patient.Coordinates{Lat: -12.5, Lon: -76.6}

	if _, _, ok := directory.Nearest(location, []patient.Medication{{Name: "quimioterapia"}}); ok {
		t.Fatal("expected no match")
	}
}

func TestNearestWithoutLocationStillMatchesStock(t *testing.T) {
	directory := NewDirectory(SeedPharmacies())

	pharmacy, distance, ok := directory.Nearest(nil, []patient.Medication{{Name: "insulin"}})
	if !ok {
		t.Fatal("expected a match")
	}
	if pharmacy.Name != "Droguería Vida Sana" {
		t.Fatalf("unexpected facility: %s", pharmacy.Name)
	}
	if distance != 0 {
		t.Fatalf("distance without location must be zero, got %f", distance)
	}
}
