package main

import (
	"context"
	"flag"
	"time"

	"roadrescue/internal/adapter/repository"
	"roadrescue/internal/infrastructure/firestore"
	"roadrescue/internal/infrastructure/jwt"
	"roadrescue/internal/infrastructure/password"
	"roadrescue/internal/infrastructure/revocation"
	"roadrescue/internal/seed"
	"roadrescue/internal/usecase"
	"roadrescue/pkg/config"
	"roadrescue/pkg/logger"
)

// Seeds a Firestore project with categories, the admin account and
// community tips. Every step is safe to rerun.
func main() {
	only := flag.String("only", "", "seed a single set: categories, admin or tips")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := firestore.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize Firestore: %v", err)
	}
	defer client.Close()

	repos := repository.NewFirestoreRepositories(client)
	auth := usecase.NewAuthUseCase(repos.Users, password.NewBcryptHasher(0),
		jwt.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second), revocation.NewMemoryRevoker())
	community := usecase.NewCommunityUseCase(repos.Topics, repos.Tips, repos.Users)

	if *only == "" || *only == "categories" {
		total, err := seed.Categories(ctx, repos.Categories, time.Now())
		if err != nil {
			logger.Fatal("Failed to seed categories: %v", err)
		}
		logger.Info("Seeded categories. Total: %d", total)
	}

	if *only == "" || *only == "admin" || *only == "tips" {
		admin, err := seed.Admin(ctx, auth, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.Fatal("Failed to seed admin: %v", err)
		}

		if *only == "" || *only == "tips" {
			created, err := seed.Tips(ctx, repos.Tips, community, admin.ID)
			if err != nil {
				logger.Fatal("Failed to seed community tips: %v", err)
			}
			logger.Info("Seeded %d community tips", created)
		}
	}
}
