package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
)

const archiveTimeout = 30 * time.Second

// Broadcaster publishes messages to websocket rooms.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message any)
}

// TournamentSummary is the read model of the running tournament without
// its schedule.
type TournamentSummary struct {
	ID                string                  `json:"id"`
	Type              models.TournamentType   `json:"type"`
	Status            models.TournamentStatus `json:"status"`
	TeamIDs           []string                `json:"team_ids"`
	PlayerTeamIDs     []string                `json:"player_team_ids"`
	CurrentMatchIndex int                     `json:"current_match_index"`
	FinalMatchIndex   int                     `json:"final_match_index"`
	IsFinalMatch      bool                    `json:"is_final_match"`
	Groups            [][]string              `json:"groups,omitempty"`
	WinnerTeamID      string                  `json:"winner_team_id,omitempty"`
	LoserTeamID       string                  `json:"loser_team_id,omitempty"`
	WinnerScore       int                     `json:"winner_score,omitempty"`
	LoserScore        int                     `json:"loser_score,omitempty"`
}

// RoundView is one match day of the schedule.
type RoundView struct {
	Round   int                `json:"round"`
	Start   int                `json:"start"`
	End     int                `json:"end"`
	Matches []models.MatchInfo `json:"matches"`
}

// TournamentService serializes access to a TournamentController and
// forwards its events to websocket clients and the archive.
type TournamentService struct {
	mu         sync.Mutex
	controller *TournamentController
	settings   SettingsProvider
	hub        Broadcaster
	archive    ArchiveService
	logger     *slog.Logger
	archives   sync.WaitGroup
}

// NewTournamentService wires the controller events. hub and archive are
// optional.
func NewTournamentService(
	controller *TournamentController,
	settings SettingsProvider,
	hub Broadcaster,
	archive ArchiveService,
	logger *slog.Logger,
) *TournamentService {
	s := &TournamentService{
		controller: controller,
		settings:   settings,
		hub:        hub,
		archive:    archive,
		logger:     logger,
	}
	controller.Subscribe(s.onEvent)
	return s
}

func (s *TournamentService) onEvent(e Event) {
	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.TournamentRoom, brackets.WebSocketMessage{
			Type:    string(e.Type),
			Payload: e,
			RoomID:  brackets.TournamentRoom,
		})
	}

	if e.Type != EventTournamentDone || s.archive == nil {
		return
	}
	t := s.controller.Tournament()
	log := s.controller.Log()
	s.archives.Add(1)
	go func() {
		defer s.archives.Done()
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if _, err := s.archive.ArchiveTournament(ctx, t, log); err != nil {
			s.logger.Error("failed to archive tournament", slog.String("tournament_id", t.ID), slog.Any("error", err))
		}
	}()
}

// WaitForArchives blocks until pending archive uploads finished.
func (s *TournamentService) WaitForArchives() {
	s.archives.Wait()
}

// Restore loads the tournament saved by a previous run, if any.
func (s *TournamentService) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Load(ctx)
}

func (s *TournamentService) ListSettings() []models.TournamentSettings {
	return s.settings.ListSettings()
}

func (s *TournamentService) Start(ctx context.Context, opts StartOptions) (*StartResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.StartNewTournament(ctx, opts)
}

func (s *TournamentService) EndMatch(ctx context.Context, result MatchResult) (*EndMatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.EndMatch(ctx, result)
}

func (s *TournamentService) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.EndTournament(ctx)
}

func (s *TournamentService) Summary() (*TournamentSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.controller.Tournament()
	if t == nil {
		return nil, ErrNoActiveTournament
	}
	return &TournamentSummary{
		ID:                t.ID,
		Type:              t.Type,
		Status:            t.Status(),
		TeamIDs:           t.TeamIDs,
		PlayerTeamIDs:     t.PlayerTeamIDs,
		CurrentMatchIndex: t.CurrentMatchIndex,
		FinalMatchIndex:   t.FinalMatchIndex,
		IsFinalMatch:      s.controller.IsFinalMatch(),
		Groups:            t.GroupsInfo,
		WinnerTeamID:      t.WinnerTeamID,
		LoserTeamID:       t.LoserTeamID,
		WinnerScore:       t.WinnerScore,
		LoserScore:        t.LoserScore,
	}, nil
}

// Rounds returns the schedule grouped by match day.
func (s *TournamentService) Rounds() ([]RoundView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.controller.Tournament()
	if t == nil {
		return nil, ErrNoActiveTournament
	}
	var rounds []RoundView
	for start := 0; start < len(t.MatchInfos); {
		_, end := s.controller.GetRoundBounds(len(rounds))
		rounds = append(rounds, RoundView{
			Round:   len(rounds),
			Start:   start,
			End:     end,
			Matches: t.MatchInfos[start:end],
		})
		start = end
	}
	return rounds, nil
}

// Match returns the match at index; -1 is the current match.
func (s *TournamentService) Match(index int) (*models.MatchInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.controller.GetMatchInfo(index)
	if !ok {
		return nil, ErrNoActiveTournament
	}
	return &m, nil
}

func (s *TournamentService) FinalMatch() (*models.MatchInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.controller.GetFinalMatchInfo()
	if !ok {
		return nil, ErrNoActiveTournament
	}
	return &m, nil
}

func (s *TournamentService) Log() ([]models.TeamStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.controller.Status() == models.StatusNotStarted {
		return nil, ErrNoActiveTournament
	}
	return s.controller.Log(), nil
}
