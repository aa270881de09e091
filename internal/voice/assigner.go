package voice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jash90/podcast-generator/internal/core"
)

// Compatibility score weights. Gender is a hard filter rather than a weight: a
// voice of the wrong gender scores zero no matter how well the other attributes
// line up.
const (
	toneWeight     = 40
	styleWeight    = 30
	ageRangeWeight = 20
	traitWeight    = 10
)

const (
	ageRangeSeparator = "-"
	ageRangeParts     = 2

	errFmtNoVoice = "%w: %q"
)

// ErrNoVoiceForGender is returned when the catalog holds no voice of the
// requested gender. It cannot happen with the built-in catalog.
var ErrNoVoiceForGender = errors.New("no catalog voice for gender")

// DefaultGenderMap returns the role-to-gender mapping used for scripts that
// carry no persona descriptors.
func DefaultGenderMap() map[core.Role]core.Gender {
	return map[core.Role]core.Gender{
		core.RoleHost:   core.GenderMale,
		core.RoleGuestA: core.GenderFemale,
		core.RoleGuestB: core.GenderMale,
	}
}

// Assigner maps speaker roles to voice IDs for one script session. The first
// call for a role decides its voice; every later call returns the same ID, so a
// role keeps its voice across preview playback and the full download. Reset
// starts a fresh script. Safe for concurrent use.
type Assigner struct {
	mu          sync.Mutex
	catalog     []Profile
	assigned    map[core.Role]string
	usedVoices  map[string]bool
	genderCount map[core.Gender]int
}

// NewAssigner returns an Assigner over the built-in catalog.
func NewAssigner() *Assigner {
	return NewAssignerWithCatalog(catalog)
}

// NewAssignerWithCatalog returns an Assigner over a custom catalog. Entry order
// is the tie-break order.
func NewAssignerWithCatalog(profiles []Profile) *Assigner {
	return &Assigner{
		mu:          sync.Mutex{},
		catalog:     profiles,
		assigned:    make(map[core.Role]string),
		usedVoices:  make(map[string]bool),
		genderCount: make(map[core.Gender]int),
	}
}

// AssignWithPersona picks the voice whose profile best matches the persona.
// Only voices of the persona's gender are considered. Among profiles scoring
// above zero, unassigned voices win over assigned ones, then higher score, then
// catalog order; when nothing scores above zero the first gender-matching
// catalog entry is used.
func (a *Assigner) AssignWithPersona(
	role core.Role,
	persona core.PersonaDescriptor,
) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if voiceID, ok := a.assigned[role]; ok {
		return voiceID, nil
	}

	best := -1
	bestScore := 0
	bestUnused := false

	for i, profile := range a.catalog {
		if profile.Gender != persona.Gender {
			continue
		}

		score := scoreProfile(profile, persona)
		if score <= 0 {
			continue
		}

		unused := !a.usedVoices[profile.ID]
		if best == -1 || beats(unused, score, bestUnused, bestScore) {
			best, bestScore, bestUnused = i, score, unused
		}
	}

	if best == -1 {
		best = a.firstOfGender(persona.Gender)
		if best == -1 {
			return "", fmt.Errorf(errFmtNoVoice, ErrNoVoiceForGender, persona.Gender)
		}
	}

	voiceID := a.catalog[best].ID
	a.record(role, voiceID)

	return voiceID, nil
}

// AssignByGender picks the first voice of the gender not yet assigned to
// another role, cycling through the gender's voices with modulo arithmetic when
// a script has more speaking roles than voices.
func (a *Assigner) AssignByGender(role core.Role, gender core.Gender) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if voiceID, ok := a.assigned[role]; ok {
		return voiceID, nil
	}

	candidates := make([]Profile, 0, len(a.catalog))

	for _, profile := range a.catalog {
		if profile.Gender == gender {
			candidates = append(candidates, profile)
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf(errFmtNoVoice, ErrNoVoiceForGender, gender)
	}

	voiceID := ""

	for _, profile := range candidates {
		if !a.usedVoices[profile.ID] {
			voiceID = profile.ID

			break
		}
	}

	if voiceID == "" {
		voiceID = candidates[a.genderCount[gender]%len(candidates)].ID
	}

	a.genderCount[gender]++
	a.record(role, voiceID)

	return voiceID, nil
}

// Assigned returns a copy of the current role-to-voice mapping.
func (a *Assigner) Assigned() map[core.Role]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	assigned := make(map[core.Role]string, len(a.assigned))
	for role, voiceID := range a.assigned {
		assigned[role] = voiceID
	}

	return assigned
}

// Reset clears all assignments so a new script starts clean. Voices assigned to
// a previous script must never bleed into the next one.
func (a *Assigner) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.assigned = make(map[core.Role]string)
	a.usedVoices = make(map[string]bool)
	a.genderCount = make(map[core.Gender]int)
}

func (a *Assigner) record(role core.Role, voiceID string) {
	a.assigned[role] = voiceID
	a.usedVoices[voiceID] = true
}

func (a *Assigner) firstOfGender(gender core.Gender) int {
	for i, profile := range a.catalog {
		if profile.Gender == gender {
			return i
		}
	}

	return -1
}

// beats reports whether the new candidate outranks the current best: unassigned
// voices first, then higher score. Equal candidates keep the earlier catalog
// entry.
func beats(unused bool, score int, bestUnused bool, bestScore int) bool {
	if unused != bestUnused {
		return unused
	}

	return score > bestScore
}

func scoreProfile(profile Profile, persona core.PersonaDescriptor) int {
	score := 0

	if containsFold(profile.CompatibleTones, persona.Tone) {
		score += toneWeight
	}

	if containsFold(profile.CompatibleStyles, persona.SpeakingStyle) {
		score += styleWeight
	}

	if ageRangesOverlap(profile.CompatibleAgeRanges, persona.AgeRange) {
		score += ageRangeWeight
	}

	if traitsMatch(profile.PersonalityKeywords, persona.PersonalityTraits) {
		score += traitWeight
	}

	return score
}

func containsFold(values []string, value string) bool {
	if value == "" {
		return false
	}

	for _, candidate := range values {
		if strings.EqualFold(candidate, value) {
			return true
		}
	}

	return false
}

// ageRangesOverlap treats ranges as numeric "min-max" intervals and tests for
// intersection; values that do not parse fall back to case-insensitive string
// equality.
func ageRangesOverlap(ranges []string, personaRange string) bool {
	personaRange = strings.TrimSpace(personaRange)
	if personaRange == "" {
		return false
	}

	personaMin, personaMax, personaNumeric := parseAgeRange(personaRange)

	for _, candidate := range ranges {
		if !personaNumeric {
			if strings.EqualFold(candidate, personaRange) {
				return true
			}

			continue
		}

		candidateMin, candidateMax, ok := parseAgeRange(candidate)
		if !ok {
			if strings.EqualFold(candidate, personaRange) {
				return true
			}

			continue
		}

		if personaMin <= candidateMax && candidateMin <= personaMax {
			return true
		}
	}

	return false
}

func parseAgeRange(value string) (int, int, bool) {
	parts := strings.SplitN(value, ageRangeSeparator, ageRangeParts)
	if len(parts) != ageRangeParts {
		return 0, 0, false
	}

	minAge, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}

	maxAge, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}

	if minAge > maxAge {
		return 0, 0, false
	}

	return minAge, maxAge, true
}

// traitsMatch reports whether any persona trait fuzzily matches any profile
// keyword, comparing case-insensitive substrings in either direction.
func traitsMatch(keywords, traits []string) bool {
	for _, trait := range traits {
		trait = strings.ToLower(strings.TrimSpace(trait))
		if trait == "" {
			continue
		}

		for _, keyword := range keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}

			if strings.Contains(keyword, trait) || strings.Contains(trait, keyword) {
				return true
			}
		}
	}

	return false
}
