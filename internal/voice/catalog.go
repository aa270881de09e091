// Package voice deterministically maps speaker roles to synthesis voices, scoring
// persona metadata against a fixed catalog when available and falling back to a
// gender-indexed rotation otherwise.
package voice

import "github.com/jash90/podcast-generator/internal/core"

// Profile is a static catalog entry describing one synthesis voice and the
// persona attributes it renders well.
type Profile struct {
	ID                  string
	Gender              core.Gender
	CompatibleTones     []string
	CompatibleStyles    []string
	CompatibleAgeRanges []string
	PersonalityKeywords []string
}

// catalog is the process-wide voice table. Order matters: persona scoring ties
// and gender rotation both resolve toward the earliest entry.
var catalog = []Profile{
	{
		ID:                  "onyx",
		Gender:              core.GenderMale,
		CompatibleTones:     []string{"authoritative", "serious", "calm"},
		CompatibleStyles:    []string{"formal", "measured"},
		CompatibleAgeRanges: []string{"35-55", "40-60"},
		PersonalityKeywords: []string{"confident", "commanding", "thoughtful"},
	},
	{
		ID:                  "echo",
		Gender:              core.GenderMale,
		CompatibleTones:     []string{"warm", "friendly", "calm"},
		CompatibleStyles:    []string{"conversational", "relaxed"},
		CompatibleAgeRanges: []string{"25-40", "30-45"},
		PersonalityKeywords: []string{"approachable", "easygoing", "curious"},
	},
	{
		ID:                  "alloy",
		Gender:              core.GenderMale,
		CompatibleTones:     []string{"neutral", "friendly", "energetic"},
		CompatibleStyles:    []string{"conversational", "crisp"},
		CompatibleAgeRanges: []string{"20-35", "25-40"},
		PersonalityKeywords: []string{"versatile", "bright", "clear"},
	},
	{
		ID:                  "nova",
		Gender:              core.GenderFemale,
		CompatibleTones:     []string{"energetic", "friendly", "playful"},
		CompatibleStyles:    []string{"animated", "conversational"},
		CompatibleAgeRanges: []string{"20-35", "25-40"},
		PersonalityKeywords: []string{"enthusiastic", "lively", "upbeat"},
	},
	{
		ID:                  "shimmer",
		Gender:              core.GenderFemale,
		CompatibleTones:     []string{"calm", "warm", "soothing"},
		CompatibleStyles:    []string{"measured", "gentle"},
		CompatibleAgeRanges: []string{"30-50", "35-55"},
		PersonalityKeywords: []string{"reassuring", "soft", "empathetic"},
	},
	{
		ID:                  "fable",
		Gender:              core.GenderFemale,
		CompatibleTones:     []string{"expressive", "warm", "playful"},
		CompatibleStyles:    []string{"narrative", "animated"},
		CompatibleAgeRanges: []string{"25-45", "30-50"},
		PersonalityKeywords: []string{"storyteller", "vivid", "witty"},
	},
}

// Catalog returns a copy of the voice table so callers cannot mutate the shared
// entries.
func Catalog() []Profile {
	profiles := make([]Profile, len(catalog))
	copy(profiles, catalog)

	return profiles
}

// ProfileByID looks up a catalog entry by voice ID.
func ProfileByID(id string) (Profile, bool) {
	for _, profile := range catalog {
		if profile.ID == id {
			return profile, true
		}
	}

	return Profile{}, false
}
