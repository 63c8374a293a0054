package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
)

// UserStore looks up accounts.
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionStore persists revocable logins.
type SessionStore interface {
	Insert(ctx context.Context, session models.Session) error
	Active(ctx context.Context, id string, user primitive.ObjectID, now time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
}

// Claims is the payload of an access token.
type Claims struct {
	Role      models.AccessLevel `json:"role"`
	SessionID string             `json:"sid"`
	jwt.RegisteredClaims
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// Identity is what an access token resolves to.
type Identity struct {
	Caller    models.Caller
	SessionID string
}

// AuthService describes login, token verification and logout.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (Identity, error)
	Logout(ctx context.Context, sessionID string) error
}

// Service implements AuthService.
type Service struct {
	users    UserStore
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an auth service signing tokens with secret.
func NewService(users UserStore, sessions SessionStore, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

var errBadCredentials = apperror.Unauthorized("Invalid username or password")

// Login checks the credentials, opens a session and signs a token bound to it.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Validation("Please provide a username and password")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		s.logger.Info("login refused", zap.String("username", username))
		return nil, errBadCredentials
	}
	if !user.Active {
		return nil, apperror.Unauthorized("Account is disabled")
	}

	now := s.now().UTC()
	session := models.Session{
		ID:        uuid.NewString(),
		User:      user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:      user.AccessLevel,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("login", zap.String("user_id", user.ID.Hex()), zap.String("session_id", session.ID))
	return &LoginResult{Token: signed, ExpiresAt: session.ExpiresAt, User: *user}, nil
}

// Authenticate verifies a token and its session. The access level is read
// from the stored account so level changes apply to live sessions.
func (s *Service) Authenticate(ctx context.Context, raw string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperror.Unauthorized("Session expired")
		}
		return Identity{}, apperror.Unauthorized("Invalid token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil || claims.SessionID == "" {
		return Identity{}, apperror.Unauthorized("Invalid token")
	}

	active, err := s.sessions.Active(ctx, claims.SessionID, userID, s.now().UTC())
	if err != nil {
		return Identity{}, err
	}
	if !active {
		return Identity{}, apperror.Unauthorized("Session expired")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	if user == nil || !user.Active {
		return Identity{}, apperror.Unauthorized("Account is disabled")
	}

	return Identity{
		Caller:    models.Caller{ID: user.ID.Hex(), AccessLevel: user.AccessLevel},
		SessionID: claims.SessionID,
	}, nil
}

// Logout revokes a session.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("logout", zap.String("session_id", sessionID))
	return nil
}
