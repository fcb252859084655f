// Package session implements server-side revocable sessions. A login issues a
// signed token whose jti is stored in Redis with a TTL; resolving a session
// verifies the signature and checks the jti still exists, so logout and
// expiry both invalidate the token immediately.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aulavirtual/aula-api/internal/models"
)

// ErrSessionInvalid indicates the token is missing, malformed, revoked or
// expired.
var ErrSessionInvalid = errors.New("session invalid or expired")

const keyPrefix = "aula:session:"

// Session is the resolved identity bound to a request.
type Session struct {
	UserID uint
	Role   string
	JTI    string
}

// Store issues and resolves sessions.
type Store struct {
	redis  *redis.Client
	secret []byte
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewStore builds a session store.
func NewStore(redisClient *redis.Client, secret string, ttl time.Duration, logger zerolog.Logger) *Store {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Store{
		redis:  redisClient,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger.With().Str("component", "session_store").Logger(),
		now:    time.Now,
	}
}

// Create opens a session for the user and returns the signed token.
func (s *Store) Create(ctx context.Context, user models.User) (string, error) {
	jti := uuid.NewString()
	now := s.now()

	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": user.Role,
		"jti":  jti,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.redis.Set(ctx, keyPrefix+jti, user.ID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("session opened")
	return token, nil
}

// Resolve verifies the token and returns the session it carries.
func (s *Store) Resolve(ctx context.Context, tokenString string) (Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, ErrSessionInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrSessionInvalid
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return Session{}, ErrSessionInvalid
	}

	exists, err := s.redis.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return Session{}, fmt.Errorf("failed to look up session: %w", err)
	}
	if exists == 0 {
		return Session{}, ErrSessionInvalid
	}

	userID, err := subjectFromClaims(claims)
	if err != nil {
		return Session{}, ErrSessionInvalid
	}

	role, _ := claims["role"].(string)
	if !models.ValidRole(role) {
		return Session{}, ErrSessionInvalid
	}

	return Session{UserID: userID, Role: role, JTI: jti}, nil
}

// Destroy revokes the session carried by the token. Revoking an already
// absent session is not an error.
func (s *Store) Destroy(ctx context.Context, tokenString string) error {
	sess, err := s.Resolve(ctx, tokenString)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return nil
		}
		return err
	}

	if err := s.redis.Del(ctx, keyPrefix+sess.JTI).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.logger.Info().Uint("user_id", sess.UserID).Msg("session closed")
	return nil
}

func subjectFromClaims(claims jwt.MapClaims) (uint, error) {
	switch v := claims["sub"].(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}
