package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/storage"
	"github.com/google/uuid"
)

// ArchiveService stores snapshots of finished tournaments in object storage.
type ArchiveService interface {
	ArchiveTournament(ctx context.Context, t *models.Tournament, log []models.TeamStats) (*storage.UploadResult, error)
}

type TournamentSnapshot struct {
	Tournament *models.Tournament `json:"tournament"`
	Log        []models.TeamStats `json:"log"`
	ArchivedAt time.Time          `json:"archived_at"`
}

type archiveService struct {
	uploader storage.ObjectStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewArchiveService(uploader storage.ObjectStore, logger *slog.Logger) ArchiveService {
	return &archiveService{uploader: uploader, logger: logger, now: time.Now}
}

func (s *archiveService) ArchiveTournament(ctx context.Context, t *models.Tournament, log []models.TeamStats) (*storage.UploadResult, error) {
	if t == nil {
		return nil, ErrNoActiveTournament
	}
	snapshot := TournamentSnapshot{Tournament: t, Log: log, ArchivedAt: s.now().UTC()}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament snapshot: %w", err)
	}

	key := fmt.Sprintf("tournaments/%s/%s.json", t.ID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	s.logger.Info("tournament archived",
		slog.String("tournament_id", t.ID),
		slog.String("key", result.Key),
		slog.String("location", result.Location))
	return result, nil
}
