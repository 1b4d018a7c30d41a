package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/nekogravitycat/room-booking-backend/internal/auth"
	"github.com/nekogravitycat/room-booking-backend/internal/config"
	"github.com/nekogravitycat/room-booking-backend/internal/db"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/room-booking-backend/internal/user"
	"github.com/nekogravitycat/room-booking-backend/migrations"
)

func main() {
	adminUsername := flag.String("admin-username", "", "create an admin account with this username after migrating")
	adminEmail := flag.String("admin-email", "", "email of the bootstrap admin")
	adminPassword := flag.String("admin-password", "", "password of the bootstrap admin (or ADMIN_PASSWORD)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal("failed to load config", "error", err)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "room-booking-migrate",
	})

	pool, err := db.NewPool(ctx, cfg.DBDSN, 1)
	if err != nil {
		log.Fatal("failed to connect to db", "error", err)
	}
	defer pool.Close()

	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		log.Fatal("migration failed", "error", err, "applied", applied)
	}
	if len(applied) == 0 {
		log.Info("schema is up to date")
	} else {
		log.Info("migrations applied", "files", applied)
	}

	if *adminUsername == "" {
		return
	}

	password := *adminPassword
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}

	users := user.NewService(user.NewPgxRepository(pool), auth.NewBcryptPasswordHasher(cfg.BcryptCost), log)
	admin, err := users.Create(ctx, user.CreateRequest{
		RegisterRequest: user.RegisterRequest{
			Username: *adminUsername,
			Email:    *adminEmail,
			Password: password,
			FullName: "Administrator",
		},
		Role: user.RoleAdmin,
	})
	switch {
	case errors.Is(err, user.ErrUsernameTaken), errors.Is(err, user.ErrEmailAlreadyUsed):
		log.Info("admin account already exists", "username", *adminUsername)
	case err != nil:
		log.Fatal("failed to create admin", "error", err)
	default:
		log.Info("admin account created", "id", admin.ID, "username", admin.Username)
	}
}
