package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/db"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/utils"
)

var clubNames = []string{
	"Harbor City", "Northgate Rovers", "Old Mill United", "Riverside Athletic",
	"Kingsbridge Town", "Eastfield Wanderers", "Westbrook Albion", "Southport Rangers",
	"Ironworks", "Lakeside Dynamo", "Hillcrest Celtic", "Marshland Borough",
	"Stonehaven", "Ashford Villa", "Greenway Sporting", "Bayview Olympic",
	"Copperfield", "Redcliff Rovers", "Fairhaven Athletic", "Oakridge United",
	"Brookdale Town", "Silverton", "Highmoor Wanderers", "Elmstead Albion",
	"Coldwater", "Pinecrest Rangers", "Foxhall Celtic", "Granite City",
	"Thornbury", "Wildmere Dynamo", "Summerleigh", "Blackwater Borough",
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	hashSecret := flag.String("hash-secret", "", "print the bcrypt hash of an executor secret and exit")
	teamCount := flag.Int("teams", len(clubNames), "number of clubs to seed")
	neutral := flag.Int("neutral-fields", 4, "number of neutral fields to seed")
	flag.Parse()

	if *hashSecret != "" {
		hash, err := utils.HashSecret(*hashSecret)
		if err != nil {
			logger.Error("failed to hash secret", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if *teamCount < 1 || *teamCount > len(clubNames) {
		logger.Error("invalid team count", slog.Int("teams", *teamCount), slog.Int("max", len(clubNames)))
		os.Exit(1)
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	dbConn, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	dialect := repositories.Dialect(cfg.DBDriver)
	teamRepo := repositories.NewSQLTeamRepository(dbConn, dialect)
	fieldRepo := repositories.NewSQLFieldRepository(dbConn, dialect)

	teams, fields := catalogFixture(*teamCount, *neutral)
	created, err := seed(ctx, dbConn, teamRepo, fieldRepo, teams, fields)
	if err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seeding complete", slog.Int("created", created), slog.Int("teams", len(teams)), slog.Int("fields", len(fields)))
}

// catalogFixture builds n clubs with a home field each plus neutral venues.
// Skills cycle through 0..4 so every AI level is represented.
func catalogFixture(n, neutral int) ([]models.Team, []models.Field) {
	teams := make([]models.Team, 0, n)
	fields := make([]models.Field, 0, n+neutral)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("club-%02d", i+1)
		fieldID := "home-" + id
		teams = append(teams, models.Team{ID: id, Name: clubNames[i], Skill: i % 5, HomeFieldID: fieldID})
		fields = append(fields, models.Field{ID: fieldID, Name: clubNames[i] + " Ground", TeamID: id})
	}
	for i := 0; i < neutral; i++ {
		fields = append(fields, models.Field{ID: fmt.Sprintf("neutral-%d", i+1), Name: fmt.Sprintf("Neutral Stadium %d", i+1)})
	}
	return teams, fields
}
