package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

const persistPrefix = "tournament."

const (
	keyID                = persistPrefix + "id"
	keyType              = persistPrefix + "type"
	keyDone              = persistPrefix + "done"
	keyCurrentMatchIndex = persistPrefix + "currentMatchIndex"
	keyDifficulty        = persistPrefix + "difficulty"
	keyRandomSeed        = persistPrefix + "randomSeed"
	keyPlayerTeamIDs     = persistPrefix + "playerTeamIds"
	keyTeamIDs           = persistPrefix + "teamIds"
	keyMatchCount        = persistPrefix + "matchCount"
	keyGroupCount        = persistPrefix + "groupCount"
)

func matchKey(i int, field string) string {
	return fmt.Sprintf("%smatch.%d.%s", persistPrefix, i, field)
}

func groupKey(i int) string {
	return fmt.Sprintf("%sgroup.%d", persistPrefix, i)
}

// Save writes a full snapshot of the tournament. Standings, AI levels,
// fields and settings constants are not stored; Load recomputes them.
func (c *TournamentController) Save(ctx context.Context) error {
	if c.t == nil {
		return nil
	}
	t := c.t
	err := c.store.Atomically(ctx, func(kv repositories.KeyValueStore) error {
		if err := kv.DeletePrefix(ctx, persistPrefix); err != nil {
			return err
		}

		steps := []func() error{
			func() error { return kv.SetString(ctx, keyID, t.ID) },
			func() error { return kv.SetString(ctx, keyType, string(t.Type)) },
			func() error { return kv.SetBool(ctx, keyDone, t.Done) },
			func() error { return kv.SetInt(ctx, keyCurrentMatchIndex, t.CurrentMatchIndex) },
			func() error { return kv.SetInt(ctx, keyDifficulty, t.Difficulty) },
			func() error { return kv.SetString(ctx, keyRandomSeed, strconv.FormatInt(t.RandomSeed, 10)) },
			func() error { return kv.SetStringArray(ctx, keyPlayerTeamIDs, t.PlayerTeamIDs) },
			func() error { return kv.SetStringArray(ctx, keyTeamIDs, t.TeamIDs) },
			func() error { return kv.SetInt(ctx, keyMatchCount, len(t.MatchInfos)) },
			func() error { return kv.SetInt(ctx, keyGroupCount, len(t.GroupsInfo)) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		for i, m := range t.MatchInfos {
			if err := kv.SetStringArray(ctx, matchKey(i, "teamIds"), m.TeamIDs[:]); err != nil {
				return err
			}
			if err := kv.SetIntArray(ctx, matchKey(i, "scores"), m.TeamScores[:]); err != nil {
				return err
			}
			if err := kv.SetInt(ctx, matchKey(i, "matchDay"), m.MatchDay); err != nil {
				return err
			}
		}
		for i, g := range t.GroupsInfo {
			if err := kv.SetStringArray(ctx, groupKey(i), g); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
	}
	return nil
}

// snapshotReader collects the first read error so Load can stay linear.
type snapshotReader struct {
	ctx context.Context
	kv  repositories.KeyValueStore
	err error
}

func (r *snapshotReader) fail(key string, err error) {
	if r.err != nil {
		return
	}
	if err == nil {
		err = fmt.Errorf("%w: key %s is missing", models.ErrInvalidConfiguration, key)
	}
	r.err = err
}

func (r *snapshotReader) str(key string) string {
	v, ok, err := r.kv.GetString(r.ctx, key)
	if err != nil || !ok {
		r.fail(key, err)
	}
	return v
}

func (r *snapshotReader) integer(key string) int {
	v, ok, err := r.kv.GetInt(r.ctx, key)
	if err != nil || !ok {
		r.fail(key, err)
	}
	return v
}

func (r *snapshotReader) boolean(key string) bool {
	v, ok, err := r.kv.GetBool(r.ctx, key)
	if err != nil || !ok {
		r.fail(key, err)
	}
	return v
}

func (r *snapshotReader) strings(key string) []string {
	v, ok, err := r.kv.GetStringArray(r.ctx, key)
	if err != nil || !ok {
		r.fail(key, err)
	}
	return v
}

func (r *snapshotReader) ints(key string) []int {
	v, ok, err := r.kv.GetIntArray(r.ctx, key)
	if err != nil || !ok {
		r.fail(key, err)
	}
	return v
}

// Load restores a saved tournament. It reports false when nothing was saved.
// A snapshot that cannot be restored leaves the controller without a
// tournament.
func (c *TournamentController) Load(ctx context.Context) (bool, error) {
	c.t, c.derived, c.log, c.aiLevels, c.explain = nil, nil, nil, nil, nil

	id, ok, err := c.store.GetString(ctx, keyID)
	if err != nil {
		return false, fmt.Errorf("failed to read saved tournament: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := c.load(ctx, id); err != nil {
		c.t, c.derived, c.log, c.aiLevels = nil, nil, nil, nil
		return false, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}

	c.logger.Info("tournament loaded",
		slog.String("tournament_id", c.t.ID),
		slog.Int("current_match_index", c.t.CurrentMatchIndex),
		slog.Bool("done", c.t.Done))
	c.queue(EventTournamentLoaded, c.t.CurrentMatchIndex)
	c.flush()
	return true, nil
}

func (c *TournamentController) load(ctx context.Context, id string) error {
	r := &snapshotReader{ctx: ctx, kv: c.store}
	t := &models.Tournament{
		ID:                id,
		Type:              models.TournamentType(r.str(keyType)),
		Done:              r.boolean(keyDone),
		CurrentMatchIndex: r.integer(keyCurrentMatchIndex),
		Difficulty:        r.integer(keyDifficulty),
		PlayerTeamIDs:     r.strings(keyPlayerTeamIDs),
		TeamIDs:           r.strings(keyTeamIDs),
	}
	rawSeed := r.str(keyRandomSeed)
	matchCount := r.integer(keyMatchCount)
	groupCount := r.integer(keyGroupCount)
	if r.err != nil {
		return r.err
	}

	seed, err := strconv.ParseInt(rawSeed, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad random seed %q", models.ErrInvalidConfiguration, rawSeed)
	}
	t.RandomSeed = seed

	preset, ok := c.settings.GetSettings(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSettingsNotFound, id)
	}
	derived, err := models.Derive(preset)
	if err != nil {
		return err
	}
	if derived.Type != t.Type {
		return fmt.Errorf("%w: saved type %s does not match preset type %s", models.ErrInvalidConfiguration, t.Type, derived.Type)
	}
	if matchCount != derived.MaxMatches || len(t.TeamIDs) != derived.MaxTeams {
		return fmt.Errorf("%w: snapshot does not fit preset %s", models.ErrInvalidConfiguration, id)
	}
	if t.CurrentMatchIndex < 0 || t.CurrentMatchIndex > matchCount {
		return fmt.Errorf("%w: current match index %d out of range", models.ErrInvalidConfiguration, t.CurrentMatchIndex)
	}

	t.FinalMatchIndex = matchCount - 1
	t.MatchInfos = make([]models.MatchInfo, matchCount)
	for i := range t.MatchInfos {
		teamIDs := r.strings(matchKey(i, "teamIds"))
		scores := r.ints(matchKey(i, "scores"))
		day := r.integer(matchKey(i, "matchDay"))
		if r.err != nil {
			return r.err
		}
		if len(teamIDs) != 2 || len(scores) != 2 {
			return fmt.Errorf("%w: match %d is malformed", models.ErrInvalidConfiguration, i)
		}

		m := models.NewMatchInfo(day, needsWinner(t.Type, i, t.FinalMatchIndex))
		for slot, teamID := range teamIDs {
			if teamID != "" {
				m.SetTeam(slot, teamID, brackets.HumanIndexOf(t.PlayerTeamIDs, teamID))
			}
		}
		m.TeamScores = [2]int{scores[0], scores[1]}
		t.MatchInfos[i] = m
	}

	for i := 0; i < groupCount; i++ {
		t.GroupsInfo = append(t.GroupsInfo, r.strings(groupKey(i)))
	}
	if r.err != nil {
		return r.err
	}

	aiLevels, err := c.assignAiLevels(t.TeamIDs, t.RandomSeed, min(derived.MaxAiDifficulty, t.Difficulty))
	if err != nil {
		return err
	}

	c.t = t
	c.derived = derived
	c.aiLevels = aiLevels
	c.recomputeStandings()
	switch {
	case t.Done:
		c.finish()
	case t.Type == models.TypeLogTournament && t.CurrentMatchIndex == t.FinalMatchIndex:
		c.SetupFinalMatch()
	}
	c.setFields()
	return nil
}

// needsWinner mirrors the schedules built by the bracket generators.
func needsWinner(tt models.TournamentType, index, finalIndex int) bool {
	switch tt {
	case models.TypeSingleElimination:
		return true
	case models.TypeLogTournament:
		return index == finalIndex
	default:
		return false
	}
}
