package brackets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/models"
)

// MatchMaker picks the generator for a tournament type and checks the
// produced schedule before handing it out.
type MatchMaker struct {
	generators map[models.TournamentType]BracketGenerator
	logger     *slog.Logger
}

func NewMatchMaker(logger *slog.Logger) *MatchMaker {
	return &MatchMaker{
		generators: map[models.TournamentType]BracketGenerator{
			models.TypeLogTournament:     NewRoundRobinGenerator(),
			models.TypeSingleElimination: NewSingleEliminationGenerator(),
			models.TypeCustom:            NewGroupStageGenerator(),
		},
		logger: logger,
	}
}

func (mm *MatchMaker) CreateMatches(ctx context.Context, params GenerateBracketParams) (*GeneratedBracket, error) {
	if params.Settings == nil {
		return nil, fmt.Errorf("%w: settings are required", models.ErrInvalidConfiguration)
	}
	generator, ok := mm.generators[params.Settings.Type]
	if !ok {
		return nil, fmt.Errorf("%w: no generator for tournament type %q", models.ErrInvalidConfiguration, params.Settings.Type)
	}

	started := time.Now()
	bracket, err := generator.GenerateBracket(ctx, params)
	if err != nil {
		mm.logger.Warn("schedule generation failed",
			slog.String("generator", generator.GetName()),
			slog.Int("teams", len(params.TeamIDs)),
			slog.Any("error", err))
		return nil, err
	}
	if err := verifySchedule(bracket.Matches); err != nil {
		return nil, err
	}

	mm.logger.Info("schedule generated",
		slog.String("generator", generator.GetName()),
		slog.Int("matches", len(bracket.Matches)),
		slog.Int("regenerations", bracket.Explain.Regenerations),
		slog.Int("warnings", len(bracket.Explain.Warnings)),
		slog.Duration("took", time.Since(started)))
	return bracket, nil
}

// verifySchedule rejects self-play and teams that appear twice on a match day.
func verifySchedule(matches []models.MatchInfo) error {
	seen := make(map[int]map[string]bool)
	for i, m := range matches {
		if m.TeamIDs[0] != "" && m.TeamIDs[0] == m.TeamIDs[1] {
			return fmt.Errorf("%w: team %s plays itself in match %d", models.ErrSchedulingFailed, m.TeamIDs[0], i)
		}
		day := seen[m.MatchDay]
		if day == nil {
			day = make(map[string]bool)
			seen[m.MatchDay] = day
		}
		for _, id := range m.TeamIDs {
			if id == "" {
				continue
			}
			if day[id] {
				return fmt.Errorf("%w: team %s plays twice on match day %d", models.ErrSchedulingFailed, id, m.MatchDay)
			}
			day[id] = true
		}
	}
	return nil
}
