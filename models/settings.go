package models

import (
	"encoding/json"
	"fmt"
)

// TournamentType is the scheduling format of a tournament.
type TournamentType string

const (
	TypeLogTournament     TournamentType = "log"
	TypeSingleElimination TournamentType = "single_elimination"
	TypeCustom            TournamentType = "custom"
)

// FieldSelectSequence decides where a human team plays its matches.
type FieldSelectSequence string

const (
	FieldAlternateHomeAway FieldSelectSequence = "alternate_home_away"
	FieldHomeOnly          FieldSelectSequence = "home_only"
	FieldAwayOnly          FieldSelectSequence = "away_only"
	FieldRandom            FieldSelectSequence = "random"
)

const (
	MinTeams = 4
	MaxTeams = 50
)

// TournamentSettings is the static description of a tournament preset.
type TournamentSettings struct {
	ID                      string              `json:"id"`
	Name                    string              `json:"name"`
	Type                    TournamentType      `json:"type"`
	MaxTeams                int                 `json:"max_teams"`
	NumFaceEachOther        int                 `json:"num_face_each_other"`
	GroupSize               int                 `json:"group_size,omitempty"`
	HumansInSameGroupChance float64             `json:"humans_in_same_group_chance"`
	HumansInSameMatchChance float64             `json:"humans_in_same_match_chance"`
	FieldSelectSequence     FieldSelectSequence `json:"field_select_sequence"`
	MaxAiDifficulty         int                 `json:"max_ai_difficulty"`
}

// DerivedSettings carries the scheduling constants computed from a preset.
// It is built once per tournament and never mutated afterwards.
type DerivedSettings struct {
	TournamentSettings

	MinMatches      int `json:"min_matches"`
	MaxMatches      int `json:"max_matches"`
	MatchesPerRound int `json:"matches_per_round"`
	MaxRounds       int `json:"max_rounds"`
	MinRounds       int `json:"min_rounds"`

	// Elimination only.
	MatchesInFirstRound int   `json:"matches_in_first_round,omitempty"`
	GroupsInFirstRound  int   `json:"groups_in_first_round,omitempty"`
	MatchesInRound      []int `json:"matches_in_round,omitempty"`
	WinnerNextMatch     []int `json:"winner_next_match,omitempty"`
}

// Derive validates the settings and computes the scheduling constants.
func Derive(s TournamentSettings) (*DerivedSettings, error) {
	if s.MaxTeams < MinTeams || s.MaxTeams > MaxTeams {
		return nil, fmt.Errorf("%w: max teams must be between %d and %d, got %d", ErrInvalidConfiguration, MinTeams, MaxTeams, s.MaxTeams)
	}
	if s.HumansInSameGroupChance < 0 || s.HumansInSameGroupChance > 1 ||
		s.HumansInSameMatchChance < 0 || s.HumansInSameMatchChance > 1 {
		return nil, fmt.Errorf("%w: chances must be within [0,1]", ErrInvalidConfiguration)
	}
	if s.MaxAiDifficulty < 0 {
		return nil, fmt.Errorf("%w: max ai difficulty must not be negative", ErrInvalidConfiguration)
	}
	if s.FieldSelectSequence == "" {
		s.FieldSelectSequence = FieldAlternateHomeAway
	}
	switch s.FieldSelectSequence {
	case FieldAlternateHomeAway, FieldHomeOnly, FieldAwayOnly, FieldRandom:
	default:
		return nil, fmt.Errorf("%w: unknown field select sequence %q", ErrInvalidConfiguration, s.FieldSelectSequence)
	}

	d := &DerivedSettings{TournamentSettings: s}
	switch s.Type {
	case TypeLogTournament:
		return d, d.deriveLog()
	case TypeSingleElimination:
		return d, d.deriveElimination()
	case TypeCustom:
		return d, d.deriveCustom()
	default:
		return nil, fmt.Errorf("%w: unknown tournament type %q", ErrInvalidConfiguration, s.Type)
	}
}

func (d *DerivedSettings) deriveLog() error {
	if d.NumFaceEachOther < 1 {
		return fmt.Errorf("%w: teams must face each other at least once", ErrInvalidConfiguration)
	}
	n := d.MaxTeams
	d.MinMatches = n * (n - 1) / 2
	d.MaxMatches = d.MinMatches*d.NumFaceEachOther + 1
	d.MatchesPerRound = n / 2
	d.MaxRounds = (d.MaxMatches - 1) / d.MatchesPerRound
	d.MinRounds = d.MinMatches / d.MatchesPerRound
	return nil
}

func (d *DerivedSettings) deriveElimination() error {
	n := d.MaxTeams
	if n&(n-1) != 0 {
		return fmt.Errorf("%w: single elimination needs a power of two teams, got %d", ErrInvalidConfiguration, n)
	}
	d.MaxMatches = n - 1
	d.MinMatches = d.MaxMatches
	d.MatchesInFirstRound = n / 2
	d.MatchesPerRound = d.MatchesInFirstRound
	d.GroupsInFirstRound = n / 4

	d.MatchesInRound = d.MatchesInRound[:0]
	for size := d.MatchesInFirstRound; size >= 1; size /= 2 {
		d.MatchesInRound = append(d.MatchesInRound, size)
	}
	d.MaxRounds = len(d.MatchesInRound)
	d.MinRounds = d.MaxRounds

	d.WinnerNextMatch = make([]int, d.MaxMatches)
	base := 0
	for r, size := range d.MatchesInRound {
		nextBase := base + size
		for j := 0; j < size; j++ {
			if r == len(d.MatchesInRound)-1 {
				d.WinnerNextMatch[base+j] = -1
			} else {
				d.WinnerNextMatch[base+j] = nextBase + j/2
			}
		}
		base = nextBase
	}
	return nil
}

func (d *DerivedSettings) deriveCustom() error {
	if d.NumFaceEachOther < 1 {
		return fmt.Errorf("%w: teams must face each other at least once", ErrInvalidConfiguration)
	}
	g := d.GroupSize
	if g < 2 || d.MaxTeams%g != 0 {
		return fmt.Errorf("%w: group size %d must be at least 2 and divide %d teams", ErrInvalidConfiguration, g, d.MaxTeams)
	}
	groups := d.MaxTeams / g
	d.MinMatches = groups * g * (g - 1) / 2
	d.MaxMatches = d.MinMatches * d.NumFaceEachOther
	d.MatchesPerRound = groups * (g / 2)
	d.MaxRounds = d.MaxMatches / d.MatchesPerRound
	d.MinRounds = d.MinMatches / d.MatchesPerRound
	return nil
}

// NumGroups is the number of groups of a custom group stage.
func (d *DerivedSettings) NumGroups() int {
	if d.Type != TypeCustom || d.GroupSize == 0 {
		return 0
	}
	return d.MaxTeams / d.GroupSize
}

// RoundBase returns the index of the first match of an elimination round.
func (d *DerivedSettings) RoundBase(round int) int {
	base := 0
	for r := 0; r < round && r < len(d.MatchesInRound); r++ {
		base += d.MatchesInRound[r]
	}
	return base
}

// ParseSettingsList reads a JSON array of presets.
func ParseSettingsList(data []byte) ([]TournamentSettings, error) {
	var list []TournamentSettings
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return list, nil
}
