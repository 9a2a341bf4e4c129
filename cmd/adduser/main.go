// Command adduser writes a credential record to the configured store.
//
//	adduser -username alice -password s3cret -role Educator
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/service"
	"github.com/learnhub/course-portal/internal/pkg/config"
	"github.com/learnhub/course-portal/internal/pkg/store"
	"github.com/learnhub/course-portal/pkg/logger"
)

func main() {
	var (
		username = flag.String("username", "", "login name")
		password = flag.String("password", "", "plain-text password, stored as a bcrypt hash")
		role     = flag.String("role", string(domain.RoleLearner), "Educator or Learner")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "adduser"})

	if err := run(cfg, log, *username, *password, *role); err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("could not add user")
	}
	log.Info().Str("username", *username).Str("role", *role).Msg("user added")
}

func run(cfg *config.Config, log zerolog.Logger, username, password, roleName string) error {
	if username == "" {
		return fmt.Errorf("%w: -username is required", domain.ErrValidation)
	}
	role, ok := domain.ParseRole(roleName)
	if !ok {
		return fmt.Errorf("%w: -role must be Educator or Learner", domain.ErrValidation)
	}
	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	return backend.Users.Create(ctx, &domain.User{Username: username, PasswordHash: hash, Role: role})
}
