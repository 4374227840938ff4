package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type TeamCatalog interface {
	GetTeam(id string) (*models.Team, bool)
	// GetRandomTeam samples uniformly among the teams not in excludeIDs.
	// A non-empty fromSet restricts the candidates to those ids.
	GetRandomTeam(rng *rand.Rand, excludeIDs []string, fromSet []string) (*models.Team, bool)
}

type FieldCatalog interface {
	// GetField returns the home field of a team.
	GetField(teamID string) (*models.Field, bool)
	// GetRandomField samples a field that is not the home of any of the
	// excluded teams.
	GetRandomField(rng *rand.Rand, excludeTeamIDs ...string) (*models.Field, bool)
}

// Catalog is an in-memory Team and Field catalog. It is immutable once built.
type Catalog struct {
	teams     []models.Team
	teamIndex map[string]int
	fields    []models.Field
	homeField map[string]int
}

func NewCatalog(teams []models.Team, fields []models.Field) *Catalog {
	c := &Catalog{
		teams:     append([]models.Team(nil), teams...),
		fields:    append([]models.Field(nil), fields...),
		teamIndex: make(map[string]int, len(teams)),
		homeField: make(map[string]int, len(fields)),
	}
	sort.Slice(c.teams, func(i, j int) bool { return c.teams[i].ID < c.teams[j].ID })
	sort.Slice(c.fields, func(i, j int) bool { return c.fields[i].ID < c.fields[j].ID })

	fieldIndex := make(map[string]int, len(c.fields))
	for i, f := range c.fields {
		fieldIndex[f.ID] = i
		if f.TeamID != "" {
			if _, taken := c.homeField[f.TeamID]; !taken {
				c.homeField[f.TeamID] = i
			}
		}
	}
	for i, t := range c.teams {
		c.teamIndex[t.ID] = i
		if fi, ok := fieldIndex[t.HomeFieldID]; ok {
			c.homeField[t.ID] = fi
		}
	}
	return c
}

// LoadCatalog reads teams and fields concurrently.
func LoadCatalog(ctx context.Context, teamRepo repositories.TeamRepository, fieldRepo repositories.FieldRepository) (*Catalog, error) {
	var teams []models.Team
	var fields []models.Field

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = teamRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to load teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		fields, err = fieldRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to load fields: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewCatalog(teams, fields), nil
}

func (c *Catalog) GetTeam(id string) (*models.Team, bool) {
	i, ok := c.teamIndex[id]
	if !ok {
		return nil, false
	}
	t := c.teams[i]
	return &t, true
}

func (c *Catalog) GetRandomTeam(rng *rand.Rand, excludeIDs []string, fromSet []string) (*models.Team, bool) {
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var candidates []int
	if len(fromSet) > 0 {
		seen := make(map[string]bool, len(fromSet))
		for _, id := range fromSet {
			i, ok := c.teamIndex[id]
			if !ok || excluded[id] || seen[id] {
				continue
			}
			seen[id] = true
			candidates = append(candidates, i)
		}
	} else {
		for i, t := range c.teams {
			if !excluded[t.ID] {
				candidates = append(candidates, i)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	t := c.teams[candidates[rng.Intn(len(candidates))]]
	return &t, true
}

func (c *Catalog) GetField(teamID string) (*models.Field, bool) {
	i, ok := c.homeField[teamID]
	if !ok {
		return nil, false
	}
	f := c.fields[i]
	return &f, true
}

func (c *Catalog) GetRandomField(rng *rand.Rand, excludeTeamIDs ...string) (*models.Field, bool) {
	excluded := make(map[int]bool, len(excludeTeamIDs))
	for _, id := range excludeTeamIDs {
		if i, ok := c.homeField[id]; ok {
			excluded[i] = true
		}
		for i, f := range c.fields {
			if f.TeamID != "" && f.TeamID == id {
				excluded[i] = true
			}
		}
	}

	candidates := make([]int, 0, len(c.fields))
	for i := range c.fields {
		if !excluded[i] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	f := c.fields[candidates[rng.Intn(len(candidates))]]
	return &f, true
}

// Teams lists the catalog teams ordered by id.
func (c *Catalog) Teams() []models.Team {
	return append([]models.Team(nil), c.teams...)
}
