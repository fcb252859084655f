package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/observability"
	"github.com/aulavirtual/aula-api/internal/policy"
	"github.com/aulavirtual/aula-api/internal/repository"
)

// AccountService provisions and lists platform accounts.
type AccountService interface {
	Register(ctx context.Context, actor models.User, payload dto.AccountCreateRequest) (dto.AccountResponse, error)
	Bootstrap(ctx context.Context, payload dto.AccountCreateRequest) (dto.AccountResponse, error)
	ListByRole(ctx context.Context, actor models.User, role string) ([]dto.AccountResponse, error)
}

type accountService struct {
	users     repository.UserRepository
	policy    *policy.Policy
	notifier  Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	loginURL  string
}

// NewAccountService builds a new account service.
func NewAccountService(users repository.UserRepository, pol *policy.Policy, notifier Notifier, validate *validator.Validate, loginURL string, logger zerolog.Logger) AccountService {
	return &accountService{
		users:     users,
		policy:    pol,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "account_service").Logger(),
		loginURL:  loginURL,
	}
}

// Register creates an account on behalf of an administrator and, once the
// account is committed, sends the credentials to the new user. Notification
// failure is logged and never propagated.
func (s *accountService) Register(ctx context.Context, actor models.User, payload dto.AccountCreateRequest) (dto.AccountResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionCreateAccount, nil); err != nil {
		return dto.AccountResponse{}, err
	}

	account, err := s.create(ctx, payload)
	if err != nil {
		return dto.AccountResponse{}, err
	}

	subject := "Your Aula Virtual credentials"
	body := credentialsBody(account.Name, account.Email, payload.Password, account.Role, s.loginURL)
	if err := s.notifier.Send(ctx, account.Email, subject, body); err != nil {
		observability.Notifications().WithLabelValues("failed").Inc()
		s.logger.Warn().Err(err).Str("email", account.Email).Msg("credentials notification failed")
	} else {
		observability.Notifications().WithLabelValues("delivered").Inc()
	}

	s.logger.Info().Uint("account_id", account.ID).Str("role", account.Role).Msg("account created")

	return dto.NewAccountResponse(account), nil
}

// Bootstrap creates an account without an acting user. It backs the
// provisioning command that seeds the first administrator.
func (s *accountService) Bootstrap(ctx context.Context, payload dto.AccountCreateRequest) (dto.AccountResponse, error) {
	account, err := s.create(ctx, payload)
	if err != nil {
		return dto.AccountResponse{}, err
	}

	s.logger.Info().Uint("account_id", account.ID).Str("role", account.Role).Msg("account bootstrapped")

	return dto.NewAccountResponse(account), nil
}

func (s *accountService) ListByRole(ctx context.Context, actor models.User, role string) ([]dto.AccountResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionCreateAccount, nil); err != nil {
		return nil, err
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	return dto.NewAccountResponseSlice(users), nil
}

func (s *accountService) create(ctx context.Context, payload dto.AccountCreateRequest) (models.User, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.User{}, err
	}

	account := models.User{
		Name:  payload.Name,
		Email: payload.Email,
		Role:  payload.Role,
	}
	if err := account.SetPassword(payload.Password); err != nil {
		return models.User{}, err
	}

	if err := s.users.Create(ctx, &account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}

	return account, nil
}
