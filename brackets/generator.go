package brackets

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Dosada05/tournament-engine/models"
)

type GenerateBracketParams struct {
	Settings      *models.DerivedSettings
	TeamIDs       []string
	PlayerTeamIDs []string
	// Groups is optional and only read by the custom group stage.
	Groups [][]string
	Rand   *rand.Rand
}

// GeneratedBracket is the schedule produced by a generator.
type GeneratedBracket struct {
	Matches         []models.MatchInfo
	FinalMatchIndex int
	Groups          [][]string
	Explain         *Explain
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*GeneratedBracket, error)

	GetName() string
}

func validateParams(params GenerateBracketParams) error {
	if params.Settings == nil {
		return fmt.Errorf("%w: settings are required", models.ErrInvalidConfiguration)
	}
	if params.Rand == nil {
		return fmt.Errorf("%w: random source is required", models.ErrInvalidConfiguration)
	}
	if len(params.TeamIDs) != params.Settings.MaxTeams {
		return fmt.Errorf("%w: expected %d teams, got %d", models.ErrInvalidConfiguration, params.Settings.MaxTeams, len(params.TeamIDs))
	}

	seen := make(map[string]struct{}, len(params.TeamIDs))
	for _, id := range params.TeamIDs {
		if id == "" {
			return fmt.Errorf("%w: empty team id", models.ErrInvalidConfiguration)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate team id %q", models.ErrInvalidConfiguration, id)
		}
		seen[id] = struct{}{}
	}

	humans := make(map[string]struct{}, len(params.PlayerTeamIDs))
	for _, id := range params.PlayerTeamIDs {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("%w: player team %q is not in the team list", models.ErrInvalidConfiguration, id)
		}
		if _, dup := humans[id]; dup {
			return fmt.Errorf("%w: duplicate player team %q", models.ErrInvalidConfiguration, id)
		}
		humans[id] = struct{}{}
	}
	return nil
}

// HumanIndexOf returns the player slot of teamID, or models.NoHuman.
func HumanIndexOf(playerTeamIDs []string, teamID string) int {
	for i, id := range playerTeamIDs {
		if id == teamID {
			return i
		}
	}
	return models.NoHuman
}
