// Command provision seeds the first administrator account so the API has a
// user capable of creating everyone else.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aulavirtual/aula-api/internal/config"
	"github.com/aulavirtual/aula-api/internal/database"
	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/policy"
	"github.com/aulavirtual/aula-api/internal/repository"
	"github.com/aulavirtual/aula-api/internal/service"
)

func main() {
	name := flag.String("name", "Administrator", "display name for the admin account")
	email := flag.String("email", "", "email address for the admin account")
	password := flag.String("password", "", "initial password for the admin account")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password must be provided")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	accounts := service.NewAccountService(
		repository.NewUserRepository(db),
		policy.New(cfg.EnrollmentPolicy),
		service.NewLogNotifier(logger),
		validate,
		cfg.LoginURL,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	account, err := accounts.Bootstrap(ctx, dto.AccountCreateRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			log.Fatalf("an account with email %s already exists", *email)
		}
		log.Fatalf("failed to provision admin: %v", err)
	}

	log.Printf("admin account %d (%s) provisioned", account.ID, account.Email)
}
