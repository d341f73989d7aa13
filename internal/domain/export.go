package domain

// ItineraryRow is a single row in the flat itinerary export.
// One row per activity, with trip and day fields repeated. Days without
// activities yield one row with empty activity fields.
type ItineraryRow struct {
	TripID    string
	TripName  string
	DayNumber int
	Date      string // "2006-01-02"
	DayType   DayType
	Place     string // destination, or "From → To" on travel days

	ActivityName string
	Category     string
	StartTime    string // "HH:MM", empty when no activity
	EndTime      string
	Address      string
	CostAmount   float64
	Currency     string
}
