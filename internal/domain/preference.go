package domain

import "github.com/google/uuid"

// AggregationMode selects how traveler preferences are merged.
type AggregationMode string

const (
	ModeConsensus  AggregationMode = "consensus"  // intersection
	ModeInclusive  AggregationMode = "inclusive"  // union
	ModeDemocratic AggregationMode = "democratic" // plurality vote
)

// ResolutionPolicy selects how detected conflicts are settled.
type ResolutionPolicy string

const (
	PolicyAccommodateAll   ResolutionPolicy = "accommodate_all"
	PolicyMajorityWins     ResolutionPolicy = "majority_wins"
	PolicyFindMiddleGround ResolutionPolicy = "find_middle_ground"
)

// Budget tiers and activity levels understood by the aggregator.
const (
	BudgetBudget   = "budget"
	BudgetModerate = "moderate"
	BudgetLuxury   = "luxury"

	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
)

// PreferenceSet holds one traveler's planning preferences.
type PreferenceSet struct {
	TravelerID    uuid.UUID `json:"traveler_id"`
	Name          string    `json:"name,omitempty"`
	Dietary       []string  `json:"dietary,omitempty"`
	Accessibility []string  `json:"accessibility,omitempty"`
	Interests     []string  `json:"interests,omitempty"`
	Activities    []string  `json:"activities,omitempty"`
	TravelStyle   []string  `json:"travel_style,omitempty"`
	Budget        string    `json:"budget,omitempty"`
	ActivityLevel string    `json:"activity_level,omitempty"`
}

// AggregatedPreferences is the merged preference set of a group.
type AggregatedPreferences struct {
	Dietary             []string `json:"dietary"`
	Accessibility       []string `json:"accessibility"`
	Interests           []string `json:"interests"`
	Activities          []string `json:"activities"`
	TravelStyle         []string `json:"travel_style"`
	Budget              string   `json:"budget,omitempty"`
	ActivityLevel       string   `json:"activity_level,omitempty"`
	MixedActivityLevels bool     `json:"mixed_activity_levels"`
}

// Severity ranks how disruptive a conflict is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ConflictCategory names the kind of preference conflict.
type ConflictCategory string

const (
	ConflictBudget        ConflictCategory = "budget"
	ConflictActivityLevel ConflictCategory = "activity_level"
	ConflictDietary       ConflictCategory = "dietary"
	ConflictStyle         ConflictCategory = "style"
)

// TravelerValue is one traveler's contribution to a conflict.
type TravelerValue struct {
	TravelerID uuid.UUID `json:"traveler_id"`
	Value      string    `json:"value"`
}

// Conflict is derived on every aggregation run and never persisted.
type Conflict struct {
	Category   ConflictCategory `json:"category"`
	Field      string           `json:"field"`
	Values     []TravelerValue  `json:"values"`
	Severity   Severity         `json:"severity"`
	Resolution string           `json:"resolution"`
	Compromise string           `json:"compromise,omitempty"`
}
