package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	ErrTeamConflict = errors.New("team id already exists")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	ListAll(ctx context.Context) ([]models.Team, error)
}

type sqlTeamRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLTeamRepository(db *sql.DB, dialect Dialect) TeamRepository {
	return &sqlTeamRepository{db: db, dialect: dialect}
}

func (r *sqlTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := rebind(r.dialect, `INSERT INTO teams (id, name, skill, home_field_id) VALUES ($1, $2, $3, $4)`)

	var homeField sql.NullString
	if team.HomeFieldID != "" {
		homeField = sql.NullString{String: team.HomeFieldID, Valid: true}
	}
	_, err := r.getExecutor(exec).ExecContext(ctx, query, team.ID, team.Name, team.Skill, homeField)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrTeamConflict, team.ID)
		}
		return fmt.Errorf("failed to create team %s: %w", team.ID, err)
	}
	return nil
}

func (r *sqlTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := rebind(r.dialect, `SELECT id, name, skill, home_field_id FROM teams WHERE id = $1`)

	var team models.Team
	var homeField sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name, &team.Skill, &homeField)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	team.HomeFieldID = homeField.String
	return &team, nil
}

func (r *sqlTeamRepository) ListAll(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, skill, home_field_id FROM teams ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		var homeField sql.NullString
		if err := rows.Scan(&team.ID, &team.Name, &team.Skill, &homeField); err != nil {
			return nil, err
		}
		team.HomeFieldID = homeField.String
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}
