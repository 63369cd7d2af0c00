package main

import (
	"context"
	"fmt"

	"failmarket/internal/db"
	"failmarket/internal/seed"
	"failmarket/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with reference and demo data",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "projects",
			Usage: "Number of fake projects to create",
			Value: 20,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete previously seeded fake projects first",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		categoryRepo := store.NewCategoryRepository(pool)
		userRepo := store.NewUserRepository(pool)
		topupRepo := store.NewTopupRepository(pool)
		projectRepo := store.NewProjectRepository(pool)

		logrus.Info("Seeding categories...")
		if err := seed.SeedCategories(ctx, categoryRepo); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		logrus.Info("Seeding fake users...")
		if err := seed.SeedFakeUsers(ctx, userRepo, topupRepo); err != nil {
			return fmt.Errorf("failed to seed fake users: %w", err)
		}

		logrus.Info("Seeding fake projects...")
		if err := seed.SeedFakeProjects(ctx, pool, projectRepo, categoryRepo, userRepo, c.Int("projects"), c.Bool("reset")); err != nil {
			return fmt.Errorf("failed to seed fake projects: %w", err)
		}

		logrus.Info("Seed completed")

		return nil
	},
}
