package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// seed inserts the teams and fields that do not exist yet in one
// transaction and returns how many rows it created.
func seed(
	ctx context.Context,
	dbConn *sql.DB,
	teamRepo repositories.TeamRepository,
	fieldRepo repositories.FieldRepository,
	teams []models.Team,
	fields []models.Field,
) (int, error) {
	existingTeams, err := teamRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	existingFields, err := fieldRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	haveTeam := make(map[string]bool, len(existingTeams))
	for _, t := range existingTeams {
		haveTeam[t.ID] = true
	}
	haveField := make(map[string]bool, len(existingFields))
	for _, f := range existingFields {
		haveField[f.ID] = true
	}

	tx, err := dbConn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := 0
	for i := range fields {
		if haveField[fields[i].ID] {
			continue
		}
		if err := fieldRepo.Create(ctx, tx, &fields[i]); err != nil {
			return 0, err
		}
		created++
	}
	for i := range teams {
		if haveTeam[teams[i].ID] {
			continue
		}
		if err := teamRepo.Create(ctx, tx, &teams[i]); err != nil {
			return 0, err
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return created, nil
}
