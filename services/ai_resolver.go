package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/Dosada05/tournament-engine/models"
)

const (
	upsetChance     = 0.05
	equalDrawChance = 0.5
	oneGoalChance   = 0.3
	maxGapBonus     = 3
)

// strongerWinChance is indexed by the level gap, capped at 3.
var strongerWinChance = [...]float64{0, 0.70, 0.80, 0.95}

type aiSide struct {
	level    int
	position int
}

// resolveAiMatches plays every AI-only match from the current one on until
// a human, an unknown team or an already played match is reached. Failures
// stop the loop and come back as warnings.
func (c *TournamentController) resolveAiMatches(ctx context.Context) (resolved int, warnings []string) {
	for c.t != nil && !c.t.Done {
		if ctx.Err() != nil {
			warnings = append(warnings, fmt.Sprintf("auto resolution interrupted: %v", ctx.Err()))
			break
		}
		m := c.t.CurrentMatch()
		if m == nil || m.Done() || !m.HasTeams() || m.HasHuman() {
			break
		}

		index := c.t.CurrentMatchIndex
		a, errA := c.teamStats(m.TeamIDs[0])
		b, errB := c.teamStats(m.TeamIDs[1])
		if errA != nil || errB != nil {
			warnings = append(warnings, fmt.Sprintf("match %d: %v", index, firstErr(errA, errB)))
			break
		}

		rng := newStream(c.t.RandomSeed, streamAiResults, index)
		usePosition := c.t.Type != models.TypeSingleElimination
		scoreA, scoreB := simulateAiMatch(rng,
			aiSide{level: a.AiLevel, position: a.LogPosition},
			aiSide{level: b.AiLevel, position: b.LogPosition},
			m.NeedsWinner, usePosition)

		err := c.endMatch(MatchResult{TeamA: m.TeamIDs[0], ScoreA: scoreA, TeamB: m.TeamIDs[1], ScoreB: scoreB})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("match %d: %v", index, err))
			break
		}
		resolved++
	}

	for _, w := range warnings {
		c.logger.Warn("auto resolution stopped", slog.String("reason", w))
	}
	return resolved, warnings
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// simulateAiMatch draws a scoreline for two AI teams. A higher level is the
// stronger team; a lower position is higher in the log.
func simulateAiMatch(rng *rand.Rand, a, b aiSide, needsWinner, usePosition bool) (int, int) {
	drawAllowed := !needsWinner
	gap := a.level - b.level
	if gap < 0 {
		gap = -gap
	}

	winner := -1
	oneGoal := false
	switch {
	case rng.Float64() < upsetChance:
		winner = rng.Intn(2)
	case gap == 0:
		switch {
		case drawAllowed && rng.Float64() < equalDrawChance:
		case usePosition && a.position != b.position:
			winner = 0
			if b.position < a.position {
				winner = 1
			}
		default:
			winner = rng.Intn(2)
		}
	default:
		stronger := 0
		if b.level > a.level {
			stronger = 1
		}
		switch {
		case rng.Float64() < strongerWinChance[min(gap, 3)]:
			winner = stronger
		case rng.Float64() < oneGoalChance:
			winner = 1 - stronger
			oneGoal = true
		case drawAllowed:
		default:
			winner = 1 - stronger
		}
	}

	if winner < 0 {
		s := rng.Intn(4)
		return s, s
	}

	win := 1 + rng.Intn(3)
	if gap > 0 && (a.level > b.level) == (winner == 0) {
		win += rng.Intn(min(gap, maxGapBonus) + 1)
	}
	var lose int
	switch {
	case oneGoal:
		lose = win - 1
	case win <= 3:
		lose = rng.Intn(win)
	default:
		lose = rng.Intn(3)
	}

	if winner == 0 {
		return win, lose
	}
	return lose, win
}
