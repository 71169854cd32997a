package patient

// Coordinates is a resolved lat/lon pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Patient holds per-session patient state. The session service is the sole
// owner; location fields stay empty until the patient shares a location.
type Patient struct {
	ID            string       `json:"id"`
	Location      *Coordinates `json:"location,omitempty"`
	LocationLabel string       `json:"locationLabel,omitempty"`
}

// Medication is one cart entry produced by the medication flow.
type Medication struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}
