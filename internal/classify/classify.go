// Package classify holds the keyword heuristics that stand in for a real
// activity taxonomy. Every keyword decision of the engine goes through this
// package so it can be replaced by structured fields without touching the
// scoring or allocation code.
package classify

import (
	"strings"
	"unicode"

	"github.com/novatrek/planner/backend/internal/domain"
)

var indoorWords = []string{
	"museum", "gallery", "theater", "theatre", "cinema", "restaurant", "cafe", "café",
	"bar", "pub", "spa", "shopping", "mall", "aquarium", "cathedral", "church",
	"library", "indoor", "cooking class", "concert hall", "opera", "escape room",
	"wine tasting", "exhibition",
}

var outdoorWords = []string{
	"hike", "hiking", "trail", "park", "garden", "beach", "kayak", "canoe", "bike",
	"cycling", "walking tour", "outdoor", "picnic", "zoo", "market", "climb",
	"mountain", "lake", "river", "boat", "cruise", "snorkel", "surf", "ski",
	"viewpoint", "safari", "camping", "vineyard", "open-air",
}

// Setting returns the activity's explicit setting, or infers one from its
// name, description and category. Matches in both lists yield mixed; no match
// yields unknown.
func Setting(a domain.Activity) domain.Setting {
	if a.Setting != domain.SettingUnknown {
		return a.Setting
	}
	words := corpus(a)
	indoor := containsAny(words, indoorWords)
	outdoor := containsAny(words, outdoorWords)
	switch {
	case indoor && outdoor:
		return domain.SettingMixed
	case outdoor:
		return domain.SettingOutdoor
	case indoor:
		return domain.SettingIndoor
	}
	return domain.SettingUnknown
}

// Category sets used by the booking heuristics.
var (
	bookingCategories = map[string]bool{
		"restaurant": true, "tour": true, "show": true, "theater": true,
		"concert": true, "spa": true, "class": true, "experience": true,
	}
	cultureCategories = map[string]bool{
		"museum": true, "attraction": true, "tour": true,
	}
)

var bookingWords = []string{"reservation", "ticket", "advance", "limited", "popular"}

// RestaurantRatingForBooking is the rating from which a restaurant is treated
// as needing a reservation.
const RestaurantRatingForBooking = 4.5

// RequiresBooking reports whether an activity needs advance booking: an
// explicit flag wins; otherwise a booking category (restaurants only when
// highly rated) or a booking keyword in the text.
func RequiresBooking(a domain.Activity) bool {
	if a.BookingRequired != nil {
		return *a.BookingRequired
	}
	cat := NormalizeCategory(a.Category)
	if bookingCategories[cat] {
		if cat != "restaurant" || a.Rating >= RestaurantRatingForBooking {
			return true
		}
	}
	return containsAny(tokenize(a.Name+" "+a.Description), bookingWords)
}

// IsRestaurant reports whether the activity's category is a restaurant.
func IsRestaurant(a domain.Activity) bool {
	return NormalizeCategory(a.Category) == "restaurant"
}

// IsCulture reports whether the activity is a museum, attraction or tour.
func IsCulture(a domain.Activity) bool {
	return cultureCategories[NormalizeCategory(a.Category)]
}

// NormalizeCategory lowercases and trims a category and folds common synonyms.
func NormalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	switch c {
	case "dining", "food", "restaurants":
		return "restaurant"
	case "sightseeing", "landmark", "attractions":
		return "attraction"
	case "museums":
		return "museum"
	case "tours", "guided tour":
		return "tour"
	}
	return c
}

func corpus(a domain.Activity) []string {
	return tokenize(a.Name + " " + a.Description + " " + a.Category)
}

// tokenize lowercases text and splits it into words at anything that is not
// a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsAny reports whether any keyword occurs in words as whole words. A
// keyword of several words must appear as consecutive words. Plural forms
// ending in "s" or "es" also match, so "gardens" hits "garden".
func containsAny(words []string, keywords []string) bool {
	for _, k := range keywords {
		if containsPhrase(words, tokenize(k)) {
			return true
		}
	}
	return false
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if !sameWord(words[i+j], p) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func sameWord(word, keyword string) bool {
	return word == keyword || word == keyword+"s" || word == keyword+"es"
}
