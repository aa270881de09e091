package voice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jash90/podcast-generator/internal/core"
	"github.com/jash90/podcast-generator/internal/voice"
)

func warmMalePersona() core.PersonaDescriptor {
	return core.PersonaDescriptor{
		Name:              "Sam",
		Gender:            core.GenderMale,
		AgeRange:          "30-40",
		PersonalityTraits: []string{"curious"},
		Tone:              "warm",
		SpeakingStyle:     "conversational",
		Pace:              "medium",
	}
}

func TestAssignWithPersona_PicksBestScoringVoice(t *testing.T) {
	t.Parallel()

	assigner := voice.NewAssigner()

	voiceID, err := assigner.AssignWithPersona(core.RoleHost, warmMalePersona())

	require.NoError(t, err)
	assert.Equal(t, "echo", voiceID)
}

func TestAssignWithPersona_GenderIsHardFilter(t *testing.T) {
	t.Parallel()

	assigner := voice.NewAssigner()

	persona := core.PersonaDescriptor{
		Name:   "Ada",
		Gender: core.GenderFemale,
		Tone:   "authoritative",
	}

	voiceID, err := assigner.AssignWithPersona(core.RoleGuestA, persona)

	require.NoError(t, err)

	profile, ok := voice.ProfileByID(voiceID)
	require.True(t, ok)
	assert.Equal(t, core.GenderFemale, profile.Gender)
}

func TestAssignWithPersona_Idempotent(t *testing.T) {
	t.Parallel()

	assigner := voice.NewAssigner()

	first, err := assigner.AssignWithPersona(core.RoleHost, warmMalePersona())
	require.NoError(t, err)

	second, err := assigner.AssignWithPersona(core.RoleHost, warmMalePersona())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, assigner.Assigned(), 1)
}

func TestAssignWithPersona_PrefersUnusedOverHigherScore(t *testing.T) {
	t.Parallel()

	assigner := voice.NewAssigner()

	first, err := assigner.AssignWithPersona(core.RoleHost, warmMalePersona())
	require.NoError(t, err)
	require.Equal(t, "echo", first)

	// Same persona for a second role: echo still scores highest but is taken,
	// so the best unassigned male voice wins.
	second, err := assigner.AssignWithPersona(core.RoleGuestB, warmMalePersona())
	require.NoError(t, err)
	assert.Equal(t, "alloy", second)
}

func TestAssignWithPersona_FallbackWhenNothingScores(t *testing.T) {
	t.Parallel()

	assigner := voice.NewAssigner()

	persona := core.PersonaDescriptor{
		Name:          "Rex",
		Gender:        core.GenderMale,
		Tone:          "gravelly",
		SpeakingStyle: "staccato",
	}

	voiceID, err := assigner.AssignWithPersona(core.RoleHost, persona)

	require.NoError(t, err)
	assert.Equal(t, "onyx", voiceID, "first male catalog entry is the fallback")
}

func TestAssignWithPersona_AgeRangeStringFallback(t *testing.T) {
	t.Parallel()

	custom := []voice.Profile{
		{ID: "plain", Gender: core.GenderMale},
		{
			ID:                  "veteran",
			Gender:              core.GenderMale,
			CompatibleAgeRanges: []string{"veteran"},
		},
	}

	assigner := voice.NewAssignerWithCatalog(custom)

	persona := core.PersonaDescriptor{
		Name:     "Gus",
		Gender:   core.GenderMale,
		AgeRange: "VETERAN",
	}

	voiceID, err := assigner.AssignWithPersona(core.RoleHost, persona)

	require.NoError(t, err)
	assert.Equal(t, "veteran", voiceID)
}

func TestAssignByGender_RotatesThenCycles(t *testing.T) {
	t.Parallel()

	assigner := voice.NewAssigner()

	wantOrder := []string{"onyx", "echo", "alloy", "onyx", "echo"}
	roles := []core.Role{"r1", "r2", "r3", "r4", "r5"}

	for i, role := range roles {
		voiceID, err := assigner.AssignByGender(role, core.GenderMale)

		require.NoError(t, err)
		assert.Equal(t, wantOrder[i], voiceID, "assignment %d", i)
	}
}

func TestAssignByGender_SkipsVoicesTakenByPersona(t *testing.T) {
	t.Parallel()

	assigner := voice.NewAssigner()

	taken, err := assigner.AssignWithPersona(core.RoleHost, warmMalePersona())
	require.NoError(t, err)
	require.Equal(t, "echo", taken)

	voiceID, err := assigner.AssignByGender(core.RoleGuestB, core.GenderMale)

	require.NoError(t, err)
	assert.Equal(t, "onyx", voiceID)
}

func TestAssignByGender_UnknownGender(t *testing.T) {
	t.Parallel()

	assigner := voice.NewAssigner()

	_, err := assigner.AssignByGender(core.RoleHost, core.Gender("robot"))

	require.ErrorIs(t, err, voice.ErrNoVoiceForGender)
}

func TestAssigner_Reset(t *testing.T) {
	t.Parallel()

	assigner := voice.NewAssigner()

	_, err := assigner.AssignByGender(core.RoleHost, core.GenderMale)
	require.NoError(t, err)
	require.Len(t, assigner.Assigned(), 1)

	assigner.Reset()

	assert.Empty(t, assigner.Assigned())

	voiceID, err := assigner.AssignByGender(core.RoleHost, core.GenderMale)
	require.NoError(t, err)
	assert.Equal(t, "onyx", voiceID, "fresh session restarts the rotation")
}

func TestDefaultGenderMap(t *testing.T) {
	t.Parallel()

	genderMap := voice.DefaultGenderMap()

	assert.Equal(t, core.GenderMale, genderMap[core.RoleHost])
	assert.Equal(t, core.GenderFemale, genderMap[core.RoleGuestA])
	assert.Equal(t, core.GenderMale, genderMap[core.RoleGuestB])
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	profiles := voice.Catalog()
	require.Len(t, profiles, 6)

	males, females := 0, 0

	for _, profile := range profiles {
		switch profile.Gender {
		case core.GenderMale:
			males++
		case core.GenderFemale:
			females++
		}
	}

	assert.Equal(t, 3, males)
	assert.Equal(t, 3, females)

	_, ok := voice.ProfileByID("onyx")
	assert.True(t, ok)

	_, ok = voice.ProfileByID("missing")
	assert.False(t, ok)
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	t.Parallel()

	first := voice.Catalog()
	first[0].ID = "mutated"

	second := voice.Catalog()

	assert.NotEqual(t, "mutated", second[0].ID)
}
