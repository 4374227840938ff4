package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrFieldNotFound = errors.New("field not found")
	ErrFieldConflict = errors.New("field id already exists")
)

type FieldRepository interface {
	Create(ctx context.Context, exec SQLExecutor, field *models.Field) error
	GetByID(ctx context.Context, id string) (*models.Field, error)
	ListAll(ctx context.Context) ([]models.Field, error)
}

type sqlFieldRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLFieldRepository(db *sql.DB, dialect Dialect) FieldRepository {
	return &sqlFieldRepository{db: db, dialect: dialect}
}

func (r *sqlFieldRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlFieldRepository) Create(ctx context.Context, exec SQLExecutor, field *models.Field) error {
	query := rebind(r.dialect, `INSERT INTO fields (id, name, team_id) VALUES ($1, $2, $3)`)

	var teamID sql.NullString
	if field.TeamID != "" {
		teamID = sql.NullString{String: field.TeamID, Valid: true}
	}
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, field.ID, field.Name, teamID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrFieldConflict, field.ID)
		}
		return fmt.Errorf("failed to create field %s: %w", field.ID, err)
	}
	return nil
}

func (r *sqlFieldRepository) GetByID(ctx context.Context, id string) (*models.Field, error) {
	query := rebind(r.dialect, `SELECT id, name, team_id FROM fields WHERE id = $1`)

	var field models.Field
	var teamID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&field.ID, &field.Name, &teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	field.TeamID = teamID.String
	return &field, nil
}

func (r *sqlFieldRepository) ListAll(ctx context.Context) ([]models.Field, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, team_id FROM fields ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	fields := make([]models.Field, 0)
	for rows.Next() {
		var field models.Field
		var teamID sql.NullString
		if err := rows.Scan(&field.ID, &field.Name, &teamID); err != nil {
			return nil, err
		}
		field.TeamID = teamID.String
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}
