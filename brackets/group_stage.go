package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

// GroupStageGenerator builds the custom tournament type: the teams are split
// into equal groups and every group plays its own round robin. Rounds of the
// groups are interleaved, so match day k holds round k of every group.
type GroupStageGenerator struct{}

func NewGroupStageGenerator() BracketGenerator {
	return &GroupStageGenerator{}
}

func (g *GroupStageGenerator) GetName() string {
	return "GroupStage"
}

func (g *GroupStageGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*GeneratedBracket, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	s := params.Settings
	if s.Type != models.TypeCustom {
		return nil, fmt.Errorf("%w: %s cannot build a %q tournament", models.ErrInvalidConfiguration, g.GetName(), s.Type)
	}

	groups, err := resolveGroups(params)
	if err != nil {
		return nil, err
	}

	explain := newExplain(g.GetName())
	schedules := make([][][]pairing, len(groups))
	for i, group := range groups {
		rounds, err := scheduleRoundRobin(ctx, group, params.PlayerTeamIDs, s.NumFaceEachOther, i, params.Rand, explain)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		schedules[i] = rounds
	}

	matches := make([]models.MatchInfo, 0, s.MaxMatches)
	var anchors []anchor
	roundsPerLeg := len(schedules[0]) / s.NumFaceEachOther
	for r := range schedules[0] {
		for gi, rounds := range schedules {
			for k, p := range rounds[r] {
				m := newScheduledMatch(r+1, false, groups[gi][p.a], groups[gi][p.b], params.PlayerTeamIDs)
				if r%roundsPerLeg == 0 && k == 0 {
					if h := firstHuman(m); h != "" {
						anchors = append(anchors, anchor{team: h, from: len(matches)})
					}
				}
				matches = append(matches, m)
			}
		}
	}
	alternateColumns(matches, anchors, explain)
	reportSideStreaks(matches, params.PlayerTeamIDs, explain)

	if len(matches) != s.MaxMatches {
		return nil, fmt.Errorf("%w: built %d matches, expected %d", models.ErrSchedulingFailed, len(matches), s.MaxMatches)
	}
	return &GeneratedBracket{
		Matches:         matches,
		FinalMatchIndex: len(matches) - 1,
		Groups:          groups,
		Explain:         explain,
	}, nil
}

// resolveGroups validates caller supplied groups or partitions the teams in
// play order.
func resolveGroups(params GenerateBracketParams) ([][]string, error) {
	s := params.Settings
	size := s.GroupSize
	count := s.NumGroups()

	if len(params.Groups) == 0 {
		groups := make([][]string, count)
		for i := range groups {
			groups[i] = append([]string(nil), params.TeamIDs[i*size:(i+1)*size]...)
		}
		return groups, nil
	}

	if len(params.Groups) != count {
		return nil, fmt.Errorf("%w: expected %d groups, got %d", models.ErrInvalidConfiguration, count, len(params.Groups))
	}
	known := make(map[string]bool, len(params.TeamIDs))
	for _, id := range params.TeamIDs {
		known[id] = true
	}
	seen := make(map[string]bool, len(params.TeamIDs))
	groups := make([][]string, count)
	for i, group := range params.Groups {
		if len(group) != size {
			return nil, fmt.Errorf("%w: group %d has %d teams, expected %d", models.ErrInvalidConfiguration, i, len(group), size)
		}
		for _, id := range group {
			if !known[id] {
				return nil, fmt.Errorf("%w: group %d contains unknown team %q", models.ErrInvalidConfiguration, i, id)
			}
			if seen[id] {
				return nil, fmt.Errorf("%w: team %q is in more than one group", models.ErrInvalidConfiguration, id)
			}
			seen[id] = true
		}
		groups[i] = append([]string(nil), group...)
	}
	return groups, nil
}
