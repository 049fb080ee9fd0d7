// seed_stats fills a development database with a user, a few workouts and weeks
// of executed sessions, so the statistics endpoints have data to show.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/execution"
	"github.com/2beens/fittrack/internal/logging"
	"github.com/2beens/fittrack/internal/seed"
	"github.com/2beens/fittrack/internal/users"
	"github.com/2beens/fittrack/internal/workouts"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	envFile := flag.String("envfile", ".env", "optional dotenv file with secrets")
	email := flag.String("user", "demo@fittrack.dev", "email of the user to seed, created when missing")
	password := flag.String("password", "demo-pass-123", "password for a newly created user")
	days := flag.Int("days", 60, "how many days of history to generate")
	perWeek := flag.Int("per-week", 4, "average sessions per week")
	randSeed := flag.Int64("seed", 0, "random seed, 0 picks a random one")
	flag.Parse()

	if *perWeek < 0 || *perWeek > 7 {
		fmt.Println("per-week must be within [0, 7]")
		os.Exit(1)
	}

	if err := godotenv.Load(*envFile); err != nil {
		fmt.Printf("no env file loaded from [%s]: %s\n", *envFile, err)
	}

	if *env == "prod" || *env == "production" {
		log.Fatalln("refusing to seed a production database")
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("FITTRACK_POSTGRES_PASS"),
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %s", err)
	}

	seeder := seed.NewSeeder(
		users.NewRepo(pool),
		workouts.NewRepo(pool),
		execution.NewRepo(pool),
		gofakeit.New(*randSeed),
	)

	start := time.Now()
	summary, err := seeder.Run(ctx, seed.Params{
		Email:    *email,
		Password: *password,
		Days:     *days,
		PerWeek:  *perWeek,
		Now:      time.Now().In(cfg.Location()),
	})
	if err != nil {
		log.Fatalf("seed: %s", err)
	}

	log.Infof("user %d seeded in %s: %d workouts, %d finished sessions, %d cancelled",
		summary.UserID, time.Since(start).Round(time.Millisecond), summary.Workouts, summary.Finished, summary.Cancelled)
}
