package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/repository"
	"github.com/aulavirtual/aula-api/internal/session"
)

// AuthService opens and closes sessions against stored credentials.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	users     repository.UserRepository
	sessions  *session.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService builds a new auth service.
func NewAuthService(users repository.UserRepository, sessions *session.Store, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		sessions:  sessions,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if !user.CheckPassword(payload.Password) {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("login succeeded")

	return dto.LoginResponse{
		Token:   token,
		Account: dto.NewAccountResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}
