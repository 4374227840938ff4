package config

import (
	"fmt"
	"os"

	"github.com/Dosada05/tournament-engine/models"
)

// builtinPresets are served when no settings file is configured.
var builtinPresets = []models.TournamentSettings{
	{
		ID:                      "quick_log_4",
		Name:                    "Quick log, 4 teams",
		Type:                    models.TypeLogTournament,
		MaxTeams:                4,
		NumFaceEachOther:        1,
		HumansInSameMatchChance: 0.5,
		FieldSelectSequence:     models.FieldAlternateHomeAway,
		MaxAiDifficulty:         2,
	},
	{
		ID:                      "league_8",
		Name:                    "League, 8 teams, home and away",
		Type:                    models.TypeLogTournament,
		MaxTeams:                8,
		NumFaceEachOther:        2,
		HumansInSameMatchChance: 0.25,
		FieldSelectSequence:     models.FieldAlternateHomeAway,
		MaxAiDifficulty:         3,
	},
	{
		ID:                      "cup_16",
		Name:                    "Cup, 16 teams",
		Type:                    models.TypeSingleElimination,
		MaxTeams:                16,
		HumansInSameGroupChance: 0.2,
		HumansInSameMatchChance: 0.1,
		FieldSelectSequence:     models.FieldRandom,
		MaxAiDifficulty:         4,
	},
	{
		ID:                      "groups_32",
		Name:                    "Group stage, 32 teams",
		Type:                    models.TypeCustom,
		MaxTeams:                32,
		NumFaceEachOther:        1,
		GroupSize:               4,
		HumansInSameGroupChance: 0.1,
		FieldSelectSequence:     models.FieldAlternateHomeAway,
		MaxAiDifficulty:         5,
	},
}

// Presets is the set of tournament settings the server can start.
type Presets struct {
	list []models.TournamentSettings
	byID map[string]int
}

// LoadPresets reads the presets from path, or returns the built-in ones when
// path is empty. Every preset must derive cleanly.
func LoadPresets(path string) (*Presets, error) {
	list := builtinPresets
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tournament settings file: %w", err)
		}
		list, err = models.ParseSettingsList(data)
		if err != nil {
			return nil, err
		}
	}
	return NewPresets(list)
}

func NewPresets(list []models.TournamentSettings) (*Presets, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no tournament presets", models.ErrInvalidConfiguration)
	}
	p := &Presets{
		list: append([]models.TournamentSettings(nil), list...),
		byID: make(map[string]int, len(list)),
	}
	for i, s := range p.list {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: preset %d has no id", models.ErrInvalidConfiguration, i)
		}
		if _, dup := p.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate preset id %q", models.ErrInvalidConfiguration, s.ID)
		}
		if _, err := models.Derive(s); err != nil {
			return nil, fmt.Errorf("preset %q: %w", s.ID, err)
		}
		p.byID[s.ID] = i
	}
	return p, nil
}

func (p *Presets) GetSettings(id string) (models.TournamentSettings, bool) {
	i, ok := p.byID[id]
	if !ok {
		return models.TournamentSettings{}, false
	}
	return p.list[i], true
}

func (p *Presets) ListSettings() []models.TournamentSettings {
	return append([]models.TournamentSettings(nil), p.list...)
}
