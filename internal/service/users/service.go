package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
	"github.com/mamadbah2/bizdesk/internal/repository/mongodb"
	"github.com/mamadbah2/bizdesk/internal/service/auth"
)

// Repository stores user accounts.
type Repository interface {
	List(ctx context.Context, filter bson.D) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error)
}

// UserService describes account management.
type UserService interface {
	Register(ctx context.Context, in models.NewUser) (*models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, in models.UserProfile) error
	Delete(ctx context.Context, caller models.Caller, id string) error
	ChangePassword(ctx context.Context, caller models.Caller, current, next string) error
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	ResetPassword(ctx context.Context, id, password string) error
	SetAccessLevel(ctx context.Context, caller models.Caller, id string, level models.AccessLevel) error
	SetActive(ctx context.Context, caller models.Caller, id, active string) error
}

// Service implements UserService.
type Service struct {
	users    Repository
	sessions SessionRevoker
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a user service.
func NewService(users Repository, sessions SessionRevoker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, sessions: sessions, logger: logger, now: time.Now}
}

var errUsernameTaken = apperror.Validation("Username is already taken")

// Register creates an active account. The access level defaults to User.
func (s *Service) Register(ctx context.Context, in models.NewUser) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	if in.FirstName == "" || in.LastName == "" || in.Username == "" || in.Password == "" {
		return nil, apperror.Validation("Please provide a first name, last name, username and password")
	}

	if in.AccessLevel == "" {
		in.AccessLevel = models.AccessUser
	}
	if !in.AccessLevel.Valid() {
		return nil, apperror.Validation("Unknown access level")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: hash,
		AccessLevel:  in.AccessLevel,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, mongodb.ErrDuplicateUsername) {
			return nil, errUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("access_level", string(user.AccessLevel)))
	return user, nil
}

func (s *Service) List(ctx context.Context, search string) ([]models.User, error) {
	users, err := s.users.List(ctx, query.UsersQuery(strings.TrimSpace(search)))
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in models.UserProfile) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}

	set := bson.D{}
	for _, field := range []struct {
		key      string
		value    *string
		required bool
	}{
		{"firstName", in.FirstName, true},
		{"lastName", in.LastName, true},
		{"username", in.Username, true},
		{"email", in.Email, false},
		{"phoneNumber", in.PhoneNumber, false},
	} {
		if field.value == nil {
			continue
		}
		v := strings.TrimSpace(*field.value)
		if field.required && v == "" {
			return apperror.Validation(field.key + " cannot be empty")
		}
		set = append(set, bson.E{Key: field.key, Value: v})
	}
	if len(set) == 0 {
		return apperror.Validation("Nothing to update")
	}

	return s.update(ctx, userID, set)
}

// Delete removes another user's account and ends their sessions.
func (s *Service) Delete(ctx context.Context, caller models.Caller, id string) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}
	if caller.ID == userID.Hex() {
		return apperror.Forbidden("You cannot delete your own account")
	}

	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("User not found")
	}
	if _, err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("by", caller.ID))
	return nil
}

// ChangePassword replaces the caller's own password after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, caller models.Caller, current, next string) error {
	userID, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		return apperror.Unauthorized("invalid caller identity")
	}
	if current == "" || next == "" {
		return apperror.Validation("Please provide the current and the new password")
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return apperror.Validation("Current password is incorrect")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.update(ctx, userID, bson.D{{Key: "password", Value: hash}})
}

// UsernameAvailable reports whether no account uses username.
func (s *Service) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, apperror.Validation("Please provide a username")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return user == nil, nil
}

// ResetPassword sets a new password for a user and ends all their sessions.
func (s *Service) ResetPassword(ctx context.Context, id, password string) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.update(ctx, userID, bson.D{{Key: "password", Value: hash}}); err != nil {
		return err
	}

	revoked, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	s.logger.Info("password reset", zap.String("user_id", id), zap.Int64("sessions_revoked", revoked))
	return nil
}

func (s *Service) SetAccessLevel(ctx context.Context, caller models.Caller, id string, level models.AccessLevel) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}
	if caller.ID == userID.Hex() {
		return apperror.Forbidden("You cannot change your own access level")
	}
	if !level.Valid() {
		return apperror.Validation("Unknown access level")
	}

	if err := s.update(ctx, userID, bson.D{{Key: "accessLevel", Value: level}}); err != nil {
		return err
	}
	s.logger.Info("access level changed", zap.String("user_id", id), zap.String("access_level", string(level)))
	return nil
}

// SetActive enables or disables an account. Only the literals "true" and
// "false" are accepted. Disabling ends every session of the account.
func (s *Service) SetActive(ctx context.Context, caller models.Caller, id, active string) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}
	if caller.ID == userID.Hex() {
		return apperror.Forbidden("You cannot change your own active status")
	}

	var enabled bool
	switch active {
	case "true":
		enabled = true
	case "false":
	default:
		return apperror.Validation(`active must be "true" or "false"`)
	}

	if err := s.update(ctx, userID, bson.D{{Key: "active", Value: enabled}}); err != nil {
		return err
	}
	if !enabled {
		if _, err := s.sessions.DeleteByUser(ctx, userID); err != nil {
			return err
		}
	}
	s.logger.Info("active status changed", zap.String("user_id", id), zap.Bool("active", enabled))
	return nil
}

func (s *Service) find(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

func (s *Service) update(ctx context.Context, id primitive.ObjectID, set bson.D) error {
	set = append(set, bson.E{Key: "updatedAt", Value: s.now().UTC()})
	found, err := s.users.Update(ctx, id, set)
	if errors.Is(err, mongodb.ErrDuplicateUsername) {
		return errUsernameTaken
	}
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFound("User not found")
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound("User not found")
	}
	return oid, nil
}
