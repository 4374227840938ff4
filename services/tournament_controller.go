package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type SettingsProvider interface {
	GetSettings(id string) (models.TournamentSettings, bool)
	ListSettings() []models.TournamentSettings
}

type EventType string

const (
	EventTournamentStarted EventType = "tournament_started"
	EventTournamentLoaded  EventType = "tournament_loaded"
	EventMatchEnded        EventType = "match_ended"
	EventTournamentDone    EventType = "tournament_done"
	EventTournamentEnded   EventType = "tournament_ended"
)

type Event struct {
	Type         EventType               `json:"type"`
	TournamentID string                  `json:"tournament_id"`
	Status       models.TournamentStatus `json:"status"`
	MatchIndex   int                     `json:"match_index"`
	Match        *models.MatchInfo       `json:"match,omitempty"`
}

type StartOptions struct {
	SettingsID    string   `json:"settings_id"`
	PlayerTeamIDs []string `json:"player_team_ids"`
	// TeamIDs is optional. Missing teams are drawn from the team catalog.
	TeamIDs []string `json:"team_ids,omitempty"`
	// Groups is optional and only used by custom group stages.
	Groups [][]string `json:"groups,omitempty"`
	// RandomSeed defaults to the current time.
	RandomSeed *int64 `json:"random_seed,omitempty"`
	// Difficulty caps the AI levels. Zero means the preset maximum.
	Difficulty int `json:"difficulty"`
}

type StartResult struct {
	Tournament   *models.Tournament `json:"tournament"`
	Explain      *brackets.Explain  `json:"explain"`
	AutoResolved int                `json:"auto_resolved"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// MatchResult is a final score reported by the match executor. The teams
// may be given in any order.
type MatchResult struct {
	TeamA         string `json:"team_a"`
	ScoreA        int    `json:"score_a"`
	TeamB         string `json:"team_b"`
	ScoreB        int    `json:"score_b"`
	ForfeitTeamID string `json:"forfeit_team_id,omitempty"`
}

type EndMatchResult struct {
	MatchIndex   int              `json:"match_index"`
	Match        models.MatchInfo `json:"match"`
	AutoResolved int              `json:"auto_resolved"`
	Done         bool             `json:"done"`
	Warnings     []string         `json:"warnings,omitempty"`
}

// TournamentController owns one tournament and is its only writer. It is not
// safe for concurrent use; TournamentService serializes access.
type TournamentController struct {
	settings   SettingsProvider
	teams      TeamCatalog
	fields     FieldCatalog
	store      repositories.KeyValueStore
	matchMaker *brackets.MatchMaker
	logger     *slog.Logger

	t        *models.Tournament
	derived  *models.DerivedSettings
	log      []models.TeamStats
	aiLevels map[string]int
	explain  *brackets.Explain

	observers    map[int]func(Event)
	nextObserver int
	pending      []Event
}

func NewTournamentController(
	settings SettingsProvider,
	teams TeamCatalog,
	fields FieldCatalog,
	store repositories.KeyValueStore,
	logger *slog.Logger,
) *TournamentController {
	return &TournamentController{
		settings:   settings,
		teams:      teams,
		fields:     fields,
		store:      store,
		matchMaker: brackets.NewMatchMaker(logger),
		logger:     logger,
		observers:  make(map[int]func(Event)),
	}
}

// Subscribe registers fn for every tournament event. Observers run
// synchronously after the state change was persisted.
func (c *TournamentController) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn
	return func() { delete(c.observers, id) }
}

func (c *TournamentController) queue(t EventType, matchIndex int) {
	e := Event{Type: t, MatchIndex: matchIndex, Status: c.t.Status()}
	if c.t != nil {
		e.TournamentID = c.t.ID
		if matchIndex >= 0 && matchIndex < len(c.t.MatchInfos) {
			m := c.t.MatchInfos[matchIndex]
			e.Match = &m
		}
	}
	c.pending = append(c.pending, e)
}

func (c *TournamentController) flush() {
	events := c.pending
	c.pending = nil
	for _, e := range events {
		for _, fn := range c.observers {
			fn(e)
		}
	}
}

func (c *TournamentController) StartNewTournament(ctx context.Context, opts StartOptions) (*StartResult, error) {
	if err := c.EndTournament(ctx); err != nil {
		return nil, err
	}

	result, err := c.start(ctx, opts)
	if err != nil {
		c.pending = nil
		if endErr := c.EndTournament(ctx); endErr != nil {
			c.logger.Error("failed to clear tournament after failed start", slog.Any("error", endErr))
		}
		return nil, err
	}
	c.flush()
	return result, nil
}

func (c *TournamentController) start(ctx context.Context, opts StartOptions) (*StartResult, error) {
	preset, ok := c.settings.GetSettings(opts.SettingsID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSettingsNotFound, opts.SettingsID)
	}
	derived, err := models.Derive(preset)
	if err != nil {
		return nil, err
	}
	difficulty := opts.Difficulty
	if difficulty < 0 {
		return nil, fmt.Errorf("%w: difficulty must not be negative", models.ErrInvalidConfiguration)
	}
	if difficulty == 0 {
		difficulty = derived.MaxAiDifficulty
	}

	seed := time.Now().UnixNano()
	if opts.RandomSeed != nil {
		seed = *opts.RandomSeed
	}

	teamIDs, err := c.resolveTeams(derived, opts, seed)
	if err != nil {
		return nil, err
	}
	players := append([]string{}, opts.PlayerTeamIDs...)

	aiLevels, err := c.assignAiLevels(teamIDs, seed, min(derived.MaxAiDifficulty, difficulty))
	if err != nil {
		return nil, err
	}

	bracket, err := c.matchMaker.CreateMatches(ctx, brackets.GenerateBracketParams{
		Settings:      derived,
		TeamIDs:       teamIDs,
		PlayerTeamIDs: players,
		Groups:        opts.Groups,
		Rand:          newStream(seed, streamSchedule, 0),
	})
	if err != nil {
		return nil, err
	}

	c.derived = derived
	c.aiLevels = aiLevels
	c.explain = bracket.Explain
	c.t = &models.Tournament{
		ID:                derived.ID,
		Type:              derived.Type,
		TeamIDs:           teamIDs,
		PlayerTeamIDs:     players,
		MatchInfos:        bracket.Matches,
		CurrentMatchIndex: 0,
		FinalMatchIndex:   bracket.FinalMatchIndex,
		RandomSeed:        seed,
		Difficulty:        difficulty,
		GroupsInfo:        bracket.Groups,
	}

	c.recomputeStandings()
	c.setFields()
	resolved, warnings := c.resolveAiMatches(ctx)

	if err := c.Save(ctx); err != nil {
		return nil, err
	}

	c.pending = append([]Event{{
		Type:         EventTournamentStarted,
		TournamentID: c.t.ID,
		Status:       c.t.Status(),
		MatchIndex:   c.t.CurrentMatchIndex,
	}}, c.pending...)

	c.logger.Info("tournament started",
		slog.String("tournament_id", c.t.ID),
		slog.String("type", string(c.t.Type)),
		slog.Int("teams", len(teamIDs)),
		slog.Int("players", len(players)),
		slog.Int64("seed", seed),
		slog.Int("auto_resolved", resolved))

	return &StartResult{
		Tournament:   c.t.Clone(),
		Explain:      bracket.Explain,
		AutoResolved: resolved,
		Warnings:     warnings,
	}, nil
}

// resolveTeams returns the play order: players first, then the supplied
// teams or random catalog teams.
func (c *TournamentController) resolveTeams(d *models.DerivedSettings, opts StartOptions, seed int64) ([]string, error) {
	if len(opts.PlayerTeamIDs) > d.MaxTeams {
		return nil, fmt.Errorf("%w: %d players for %d teams", models.ErrInvalidConfiguration, len(opts.PlayerTeamIDs), d.MaxTeams)
	}

	teamIDs := make([]string, 0, d.MaxTeams)
	taken := make(map[string]bool, d.MaxTeams)
	for _, id := range opts.PlayerTeamIDs {
		if taken[id] {
			return nil, fmt.Errorf("%w: duplicate player team %q", models.ErrInvalidConfiguration, id)
		}
		if _, ok := c.teams.GetTeam(id); !ok {
			return nil, fmt.Errorf("%w: player team %q is not in the catalog", models.ErrMissingDependency, id)
		}
		taken[id] = true
		teamIDs = append(teamIDs, id)
	}

	if len(opts.TeamIDs) > 0 {
		if len(opts.TeamIDs) != d.MaxTeams {
			return nil, fmt.Errorf("%w: expected %d teams, got %d", models.ErrInvalidConfiguration, d.MaxTeams, len(opts.TeamIDs))
		}
		supplied := make(map[string]bool, len(opts.TeamIDs))
		for _, id := range opts.TeamIDs {
			if supplied[id] {
				return nil, fmt.Errorf("%w: duplicate team %q", models.ErrInvalidConfiguration, id)
			}
			supplied[id] = true
			if _, ok := c.teams.GetTeam(id); !ok {
				return nil, fmt.Errorf("%w: team %q is not in the catalog", models.ErrMissingDependency, id)
			}
		}
		for _, id := range opts.PlayerTeamIDs {
			if !supplied[id] {
				return nil, fmt.Errorf("%w: player team %q is missing from the team list", models.ErrInvalidConfiguration, id)
			}
		}
		for _, id := range opts.TeamIDs {
			if !taken[id] {
				teamIDs = append(teamIDs, id)
			}
		}
		return teamIDs, nil
	}

	rng := newStream(seed, streamTeams, 0)
	for len(teamIDs) < d.MaxTeams {
		team, ok := c.teams.GetRandomTeam(rng, teamIDs, nil)
		if !ok {
			return nil, fmt.Errorf("%w: catalog has only %d teams, %d needed", models.ErrMissingDependency, len(teamIDs), d.MaxTeams)
		}
		teamIDs = append(teamIDs, team.ID)
	}
	return teamIDs, nil
}

// assignAiLevels rolls a level around each team's catalog skill and caps it.
func (c *TournamentController) assignAiLevels(teamIDs []string, seed int64, limit int) (map[string]int, error) {
	rng := newStream(seed, streamAiLevels, 0)
	levels := make(map[string]int, len(teamIDs))
	for _, id := range teamIDs {
		team, ok := c.teams.GetTeam(id)
		if !ok {
			return nil, fmt.Errorf("%w: team %q is not in the catalog", models.ErrMissingDependency, id)
		}
		rolled := max(team.Skill-1+rng.Intn(3), 0)
		levels[id] = min(rolled, max(limit, 0))
	}
	return levels, nil
}

// EndMatch records the result of the current match, advances the
// tournament and fast-forwards AI-only matches.
func (c *TournamentController) EndMatch(ctx context.Context, r MatchResult) (*EndMatchResult, error) {
	if c.t == nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidMatchResult, ErrNoActiveTournament)
	}
	if c.t.Done {
		return nil, fmt.Errorf("%w: tournament %s is already done", models.ErrInvalidMatchResult, c.t.ID)
	}

	index := c.t.CurrentMatchIndex
	if err := c.endMatch(r); err != nil {
		return nil, err
	}
	resolved, warnings := c.resolveAiMatches(ctx)

	if err := c.Save(ctx); err != nil {
		c.pending = nil
		return nil, err
	}
	c.flush()

	return &EndMatchResult{
		MatchIndex:   index,
		Match:        c.t.MatchInfos[index],
		AutoResolved: resolved,
		Done:         c.t.Done,
		Warnings:     warnings,
	}, nil
}

func (c *TournamentController) endMatch(r MatchResult) error {
	index := c.t.CurrentMatchIndex
	m := c.t.CurrentMatch()
	if m == nil {
		return fmt.Errorf("%w: no match is being played", models.ErrInvalidMatchResult)
	}
	if m.Done() {
		return fmt.Errorf("%w: match %d is already done", models.ErrInvalidMatchResult, index)
	}
	if !m.HasTeams() {
		return fmt.Errorf("%w: match %d has no teams yet", models.ErrInvalidMatchResult, index)
	}

	slotA, slotB := m.SlotOf(r.TeamA), m.SlotOf(r.TeamB)
	if slotA < 0 || slotB < 0 || slotA == slotB {
		return fmt.Errorf("%w: %s vs %s does not match scheduled %s", models.ErrInvalidMatchResult, r.TeamA, r.TeamB, m)
	}
	if r.ScoreA < 0 || r.ScoreB < 0 {
		return fmt.Errorf("%w: scores must not be negative", models.ErrInvalidMatchResult)
	}

	var scores [2]int
	scores[slotA] = r.ScoreA
	scores[slotB] = r.ScoreB
	if r.ForfeitTeamID != "" {
		forfeit := m.SlotOf(r.ForfeitTeamID)
		if forfeit < 0 {
			return fmt.Errorf("%w: forfeiting team %s is not playing", models.ErrInvalidMatchResult, r.ForfeitTeamID)
		}
		scores = forfeitScores(m, forfeit, scores)
	}
	if m.NeedsWinner && scores[0] == scores[1] {
		return fmt.Errorf("%w: match %d needs a winner", models.ErrInvalidMatchResult, index)
	}

	m.TeamScores = scores
	if c.t.Type == models.TypeSingleElimination {
		if err := c.PutWinnerInNextMatch(index); err != nil {
			m.TeamScores = [2]int{models.NoScore, models.NoScore}
			return err
		}
	}

	c.t.CurrentMatchIndex++
	c.recomputeStandings()
	if c.t.CurrentMatchIndex > c.t.FinalMatchIndex {
		c.finish()
	} else if c.t.Type == models.TypeLogTournament && c.t.CurrentMatchIndex == c.t.FinalMatchIndex {
		c.SetupFinalMatch()
	}
	c.setFields()

	c.queue(EventMatchEnded, index)
	if c.t.Done {
		c.queue(EventTournamentDone, index)
	}
	return nil
}

// forfeitScores awards the match to the side that did not forfeit. Two
// human teams draw 0-0 unless the match needs a winner.
func forfeitScores(m *models.MatchInfo, forfeit int, scores [2]int) [2]int {
	if m.IsPlayer[0] && m.IsPlayer[1] && !m.NeedsWinner {
		return [2]int{0, 0}
	}
	winner := 1 - forfeit
	var out [2]int
	out[winner] = max(3, scores[winner]-scores[forfeit])
	out[forfeit] = 0
	return out
}

// PutWinnerInNextMatch copies the winner of an elimination match into the
// first empty slot of the match it feeds.
func (c *TournamentController) PutWinnerInNextMatch(index int) error {
	if c.t == nil || c.derived == nil || index < 0 || index >= len(c.derived.WinnerNextMatch) {
		return nil
	}
	next := c.derived.WinnerNextMatch[index]
	if next < 0 {
		return nil
	}

	m := c.t.MatchInfos[index]
	w := m.Winner()
	if w == models.NoWinner {
		return fmt.Errorf("%w: match %d has no winner", models.ErrInvalidMatchResult, index)
	}

	target := &c.t.MatchInfos[next]
	if target.SlotOf(m.TeamIDs[w]) >= 0 {
		return nil
	}
	for slot := 0; slot < 2; slot++ {
		if target.TeamIDs[slot] == "" {
			target.SetTeam(slot, m.TeamIDs[w], m.HumanIndex[w])
			target.TeamScores[1-slot] = models.NoScore
			return nil
		}
	}
	return fmt.Errorf("%w: match %d has no free slot for the winner of match %d", models.ErrSchedulingFailed, next, index)
}

// SetupFinalMatch puts the top two of the log into the final of a log
// tournament. A final that was already played keeps its scores and the
// winner follows from them.
func (c *TournamentController) SetupFinalMatch() {
	if c.t == nil || c.t.Type != models.TypeLogTournament || len(c.log) < 2 {
		return
	}
	final := &c.t.MatchInfos[c.t.FinalMatchIndex]
	scores := final.TeamScores
	for slot := 0; slot < 2; slot++ {
		id := c.log[slot].TeamID
		final.SetTeam(slot, id, brackets.HumanIndexOf(c.t.PlayerTeamIDs, id))
	}
	if scores[0] >= 0 && scores[1] >= 0 {
		final.TeamScores = scores
	}
}

// finish marks the tournament done and records the grand result.
func (c *TournamentController) finish() {
	c.t.Done = true
	c.t.CurrentMatchIndex = c.t.FinalMatchIndex + 1

	if c.t.Type == models.TypeCustom {
		if len(c.log) >= 2 {
			c.t.WinnerTeamID, c.t.WinnerScore = c.log[0].TeamID, c.log[0].Points
			c.t.LoserTeamID, c.t.LoserScore = c.log[1].TeamID, c.log[1].Points
		}
		return
	}

	final := c.t.MatchInfos[c.t.FinalMatchIndex]
	w := final.Winner()
	if w == models.NoWinner {
		return
	}
	c.t.WinnerTeamID, c.t.WinnerScore = final.TeamIDs[w], final.TeamScores[w]
	c.t.LoserTeamID, c.t.LoserScore = final.TeamIDs[1-w], final.TeamScores[1-w]
}

func (c *TournamentController) recomputeStandings() {
	if c.t == nil {
		c.log = nil
		return
	}
	exclude := -1
	if c.t.Type == models.TypeLogTournament {
		exclude = c.t.FinalMatchIndex
	}
	upTo := c.t.CurrentMatchIndex
	draw := upTo
	if exclude >= 0 {
		draw = min(upTo, exclude)
	}
	c.log = brackets.RecomputeStandings(brackets.StandingsParams{
		Matches:       c.t.MatchInfos,
		UpToIndex:     upTo,
		ExcludeIndex:  exclude,
		TeamIDs:       c.t.TeamIDs,
		PlayerTeamIDs: c.t.PlayerTeamIDs,
		AiLevels:      c.aiLevels,
		Rand:          newStream(c.t.RandomSeed, streamStandings, draw),
	})
}

// EndTournament clears the tournament, its standings and its persisted
// state. Calling it without a tournament is a no-op apart from the store
// cleanup.
func (c *TournamentController) EndTournament(ctx context.Context) error {
	had := c.t != nil
	id := ""
	if had {
		id = c.t.ID
	}

	c.t = nil
	c.derived = nil
	c.log = nil
	c.aiLevels = nil
	c.explain = nil

	if err := c.store.DeletePrefix(ctx, persistPrefix); err != nil {
		return fmt.Errorf("failed to clear persisted tournament: %w", err)
	}
	if had {
		c.logger.Info("tournament ended", slog.String("tournament_id", id))
		c.pending = append(c.pending, Event{Type: EventTournamentEnded, TournamentID: id, Status: models.StatusNotStarted, MatchIndex: -1})
		c.flush()
	}
	return nil
}

// GetMatchInfo returns the match at index, or the current match for -1.
// The index is clamped to the schedule.
func (c *TournamentController) GetMatchInfo(index int) (models.MatchInfo, bool) {
	if c.t == nil || len(c.t.MatchInfos) == 0 {
		return models.MatchInfo{}, false
	}
	if index == -1 {
		index = c.t.CurrentMatchIndex
	}
	index = max(0, min(index, len(c.t.MatchInfos)-1))
	return c.t.MatchInfos[index], true
}

func (c *TournamentController) GetFinalMatchInfo() (models.MatchInfo, bool) {
	if c.t == nil || len(c.t.MatchInfos) == 0 {
		return models.MatchInfo{}, false
	}
	return c.t.MatchInfos[c.t.FinalMatchIndex], true
}

func (c *TournamentController) IsFinalMatch() bool {
	return c.t != nil && !c.t.Done && c.t.CurrentMatchIndex == c.t.FinalMatchIndex
}

func (c *TournamentController) IsTournamentDone() bool {
	return c.t != nil && c.t.Done
}

func (c *TournamentController) Log() []models.TeamStats {
	return append([]models.TeamStats(nil), c.log...)
}

func (c *TournamentController) Tournament() *models.Tournament {
	return c.t.Clone()
}

func (c *TournamentController) Status() models.TournamentStatus {
	return c.t.Status()
}

// Settings returns the derived settings of the running tournament.
func (c *TournamentController) Settings() *models.DerivedSettings {
	return c.derived
}

// Explain returns the scheduling report. It is only kept for tournaments
// started by this process.
func (c *TournamentController) Explain() *brackets.Explain {
	return c.explain
}

// GetRoundBounds returns the half-open match index range of a round. The
// round is clamped to the schedule.
func (c *TournamentController) GetRoundBounds(round int) (start, end int) {
	if c.t == nil || len(c.t.MatchInfos) == 0 {
		return 0, 0
	}
	var starts []int
	for i, m := range c.t.MatchInfos {
		if i == 0 || m.MatchDay != c.t.MatchInfos[i-1].MatchDay {
			starts = append(starts, i)
		}
	}
	round = max(0, min(round, len(starts)-1))
	start = starts[round]
	end = len(c.t.MatchInfos)
	if round+1 < len(starts) {
		end = starts[round+1]
	}
	return start, end
}

func (c *TournamentController) teamStats(id string) (*models.TeamStats, error) {
	for i := range c.log {
		if c.log[i].TeamID == id {
			return &c.log[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no standings for team %s", models.ErrMissingDependency, id)
}
