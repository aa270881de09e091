// Package core defines the domain types, interfaces, and error taxonomy shared by
// the podcast synthesis pipeline, the delivery worker, and the command-line client.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// Gender identifies the vocal gender of a persona or a catalog voice.
type Gender string

// Supported genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Role identifies one speaker slot in a podcast script.
type Role string

// Supported speaker roles.
const (
	RoleHost   Role = "host"
	RoleGuestA Role = "guestA"
	RoleGuestB Role = "guestB"
)

// Validation error messages and formats.
const (
	errMsgUnknownRole    = "unknown speaker role"
	errMsgUnknownGender  = "unknown gender"
	errMsgNoSegments     = "script has no segments"
	errFmtNoSegments     = "%w: %w"
	errFmtInvalidRole    = "%w: %w %q at segment %d"
	errFmtEmptySegment   = "%w: segment %d (%s) has empty text"
	errFmtInvalidPersona = "%w: persona for role %q"
	errFmtPersonaGender  = "%w: %q"
)

// Sentinel validation errors.
var (
	// ErrUnknownRole is returned when a script names a role outside the supported set.
	ErrUnknownRole = errors.New(errMsgUnknownRole)
	// ErrUnknownGender is returned when a persona carries an unsupported gender.
	ErrUnknownGender = errors.New(errMsgUnknownGender)
	// ErrNoSegments is returned when a script contains no segments at all.
	ErrNoSegments = errors.New(errMsgNoSegments)
)

// Valid reports whether the role is one of the supported speaker slots.
func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleGuestA, RoleGuestB:
		return true
	default:
		return false
	}
}

// Valid reports whether the gender is one of the supported values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	default:
		return false
	}
}

// Segment is one speaker turn of dialogue text to be synthesized. Segments are
// immutable once synthesis begins; their cache identity derives from the role, the
// text, and the synthesis model.
type Segment struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// PersonaDescriptor carries the optional per-role character sheet produced by the
// script-generation collaborator. It lives for one script session.
type PersonaDescriptor struct {
	Name              string   `json:"name"`
	Gender            Gender   `json:"gender"`
	AgeRange          string   `json:"ageRange"`
	PersonalityTraits []string `json:"personalityTraits"`
	Tone              string   `json:"tone"`
	SpeakingStyle     string   `json:"speakingStyle"`
	Pace              string   `json:"pace"`
}

// Script is the ordered list of segments for one podcast, with optional persona
// metadata per role.
type Script struct {
	Segments []Segment                  `json:"segments"`
	Personas map[Role]PersonaDescriptor `json:"personas,omitempty"`
}

// Validate checks the script preconditions: at least one segment, every segment has
// a supported role and non-empty text, and every persona entry is well formed.
func (s *Script) Validate() error {
	if s == nil || len(s.Segments) == 0 {
		return fmt.Errorf(errFmtNoSegments, ErrInvalidInput, ErrNoSegments)
	}

	for i, segment := range s.Segments {
		if !segment.Role.Valid() {
			return fmt.Errorf(
				errFmtInvalidRole,
				ErrInvalidInput, ErrUnknownRole, segment.Role, i,
			)
		}

		if strings.TrimSpace(segment.Text) == "" {
			return fmt.Errorf(errFmtEmptySegment, ErrInvalidInput, i, segment.Role)
		}
	}

	for role, persona := range s.Personas {
		if !role.Valid() {
			return fmt.Errorf(errFmtInvalidPersona, ErrUnknownRole, role)
		}

		if !persona.Gender.Valid() {
			return fmt.Errorf(errFmtPersonaGender, ErrUnknownGender, persona.Gender)
		}
	}

	return nil
}

// Persona returns the persona for a role, if the script carries one.
func (s *Script) Persona(role Role) (PersonaDescriptor, bool) {
	persona, ok := s.Personas[role]

	return persona, ok
}

// Roles returns the distinct roles present in the script, in order of first
// appearance.
func (s *Script) Roles() []Role {
	seen := make(map[Role]struct{}, len(s.Segments))
	roles := make([]Role, 0, len(s.Segments))

	for _, segment := range s.Segments {
		if _, ok := seen[segment.Role]; ok {
			continue
		}

		seen[segment.Role] = struct{}{}
		roles = append(roles, segment.Role)
	}

	return roles
}

// PipelineProgress is the snapshot emitted to subscribers on every orchestrator
// state transition. It is recomputed each time and never persisted.
type PipelineProgress struct {
	SegmentIndex   int
	TotalSegments  int
	SegmentPercent float64
	OverallPercent float64
	Operation      string
}

// ProgressFunc receives pipeline progress snapshots.
type ProgressFunc func(progress PipelineProgress)

// SegmentFailure records one segment that exhausted its retries and was replaced by
// the silence placeholder.
type SegmentFailure struct {
	Index  int
	Role   Role
	Reason string
}

// Asset is the final deliverable: the assembled audio with a generated name, its
// MIME type, and the failure manifest for the run.
type Asset struct {
	Name     string
	MIME     string
	Data     []byte
	Failures []SegmentFailure
}
