package tools

import (
	"math"
	"strings"

	"github.com/ocanamx/salud-rural/backend/internal/model/patient"
)

// Pharmacy is one directory entry.
type Pharmacy struct {
	Name           string              `json:"name"`
	Coordinates    patient.Coordinates `json:"coordinates"`
	Stock          []string            `json:"stock"`
	PaymentOptions []string            `json:"paymentOptions"`
}

// Directory answers nearest-pharmacy lookups against a fixed facility set.
type Directory struct {
	pharmacies []Pharmacy
}

// NewDirectory builds a directory over the given facilities.
func NewDirectory(pharmacies []Pharmacy) *Directory {
	return &Directory{pharmacies: append([]Pharmacy(nil), pharmacies...)}
}

// SeedPharmacies is the default rural facility set.
func SeedPharmacies() []Pharmacy {
	return []Pharmacy{
		{
			Name:           "Farmacia Salud Rural",
			Coordinates:    patient.Coordinates{Lat: -12.3456, Lon: -76.7890},
			Stock:          []string{"paracetamol", "amoxicillin", "ibuprofen"},
			PaymentOptions: []string{"cash", "mobile_money"},
		},
		{
			Name:           "Farmacia CentroMed",
			Coordinates:    patient.Coordinates{Lat: -12.4567, Lon: -76.6789},
			Stock:          []string{"azithromycin", "loratadine", "omeprazole"},
			PaymentOptions: []string{"card", "cash"},
		},
		{
			Name:           "Botica Esperanza",
			Coordinates:    patient.Coordinates{Lat: -12.5678, Lon: -76.5678},
			Stock:          []string{"paracetamol", "ibuprofen", "diphenhydramine"},
			PaymentOptions: []string{"cash", "bank_transfer"},
		},
		{
			Name:           "Droguería Vida Sana",
			Coordinates:    patient.Coordinates{Lat: -12.6789, Lon: -76.4567},
			Stock:          []string{"metformin", "insulin", "atorvastatin"},
			PaymentOptions: []string{"mobile_money", "insurance"},
		},
	}
}

// Nearest returns the closest facility stocking at least one of the needed
// medications, with its distance in kilometers. ok is false when no
// facility matches.
func (d *Directory) Nearest(location *patient.Coordinates, medications []patient.Medication) (Pharmacy, float64, bool) {
	best := Pharmacy{}
	bestDistance := math.Inf(1)
	found := false

	for _, pharmacy := range d.pharmacies {
		if !stocksAny(pharmacy, medications) {
			continue
		}

		distance := 0.0
		if location != nil {
			distance = haversineKm(*location, pharmacy.Coordinates)
		}
		if !found || distance < bestDistance {
			best = pharmacy
			bestDistance = distance
			found = true
		}
	}

	if !found {
		return Pharmacy{}, 0, false
	}
	return best, bestDistance, true
}

func stocksAny(pharmacy Pharmacy, medications []patient.Medication) bool {
	for _, med := range medications {
		needed := strings.ToLower(strings.TrimSpace(med.Name))
		if needed == "" {
			continue
		}
		for _, stocked := range pharmacy.Stock {
			if strings.ToLower(stocked) == needed {
				return true
			}
		}
	}
	return false
}

// haversineKm computes the great-circle distance between two points.
func haversineKm(a, b patient.Coordinates) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
