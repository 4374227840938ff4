package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

// teamsPerGroup is the number of first-round slots of a bracket group: two
// adjacent matches whose winners meet in the second round.
const teamsPerGroup = 4

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket seeds the first round and lays out the empty later rounds.
// Slot s of the first round is match s/2, side s%2.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*GeneratedBracket, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	s := params.Settings
	if s.Type != models.TypeSingleElimination {
		return nil, fmt.Errorf("%w: %s cannot build a %q tournament", models.ErrInvalidConfiguration, g.GetName(), s.Type)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := params.Rand
	explain := newExplain(g.GetName())
	n := len(params.TeamIDs)
	slots := make([]string, n)
	placed := make(map[string]bool, n)
	put := func(slot int, id string) {
		slots[slot] = id
		placed[id] = true
	}

	humans := params.PlayerTeamIDs
	if len(humans) > 0 {
		put(0, humans[rng.Intn(len(humans))])
	} else {
		put(0, params.TeamIDs[rng.Intn(n)])
	}

	if len(humans) > 1 {
		second := pickOther(humans, slots[0], rng.Intn(len(humans)-1))
		sameGroup := rng.Float64() < s.HumansInSameGroupChance
		switch {
		case sameGroup && rng.Float64() < s.HumansInSameMatchChance:
			put(1, second)
		case sameGroup:
			free := freeSlots(slots, func(slot int) bool { return slot != 1 })
			put(free[rng.Intn(len(free))], second)
		default:
			lastGroup := n - teamsPerGroup
			free := freeSlots(slots, func(slot int) bool { return slot >= lastGroup && slot >= 2 })
			put(free[rng.Intn(len(free))], second)
			if s.GroupsInFirstRound < 2 {
				explain.warnf("bracket has a single group, %s and %s share it", slots[0], second)
			}
		}
	}

	rest := make([]string, 0, n)
	for _, id := range params.TeamIDs {
		if !placed[id] {
			rest = append(rest, id)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	for slot := range slots {
		if slots[slot] == "" {
			slots[slot], rest = rest[0], rest[1:]
		}
	}

	matches := make([]models.MatchInfo, 0, s.MaxMatches)
	for i := 0; i < s.MatchesInFirstRound; i++ {
		matches = append(matches, newScheduledMatch(1, true, slots[2*i], slots[2*i+1], humans))
	}
	for r := 1; r < len(s.MatchesInRound); r++ {
		for i := 0; i < s.MatchesInRound[r]; i++ {
			matches = append(matches, models.NewMatchInfo(r+1, true))
		}
	}
	if len(matches) != s.MaxMatches {
		return nil, fmt.Errorf("%w: built %d matches, expected %d", models.ErrSchedulingFailed, len(matches), s.MaxMatches)
	}

	return &GeneratedBracket{
		Matches:         matches,
		FinalMatchIndex: len(matches) - 1,
		Explain:         explain,
	}, nil
}

// pickOther returns the k-th entry of ids that is not skip.
func pickOther(ids []string, skip string, k int) string {
	for _, id := range ids {
		if id == skip {
			continue
		}
		if k == 0 {
			return id
		}
		k--
	}
	return ""
}

func freeSlots(slots []string, allowed func(int) bool) []int {
	free := make([]int, 0, len(slots))
	for i, id := range slots {
		if id == "" && allowed(i) {
			free = append(free, i)
		}
	}
	return free
}

// GroupOf returns the bracket group of a first-round match.
func GroupOf(matchIndex int) int {
	return matchIndex * 2 / teamsPerGroup
}
