package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"recipebox/internal/logging"
	"recipebox/internal/models"
	"recipebox/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	minUsernameLen = 2
	maxUsernameLen = 20
	maxEmailLen    = 120
	// bcrypt refuses longer input.
	maxPasswordBytes = 72
)

// AuthService registers users and verifies their credentials. Session handling
// lives in the middleware package; this service never sees cookies.
type AuthService struct {
	db       *gorm.DB
	log      logging.Logger
	validate *validator.Validate
}

func NewAuthService(db *gorm.DB, log logging.Logger) *AuthService {
	return &AuthService{
		db:       db,
		log:      log,
		validate: validator.New(),
	}
}

// Register creates a user with a bcrypt-hashed password.
// It returns a *ValidationError for malformed input, ErrDuplicateUsername or
// ErrDuplicateEmail when either is already taken.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	verr := &ValidationError{}
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		verr.add("username", "Username must be between 2 and 20 characters.")
	}
	switch {
	case email == "":
		verr.add("email", "Email is required.")
	case len(email) > maxEmailLen || s.validate.Var(email, "email") != nil:
		verr.add("email", "Invalid email address.")
	}
	switch {
	case password == "":
		verr.add("password", "Password is required.")
	case len(password) > maxPasswordBytes:
		verr.add("password", "Password must be at most 72 bytes.")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Someone registered the same name or email between the check and
			// the insert; report which one.
			if cerr := s.checkAvailable(ctx, username, email); cerr != nil {
				return nil, cerr
			}
		}
		return nil, errors.Wrap(err, "create user")
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return &user, nil
}

func (s *AuthService) checkAvailable(ctx context.Context, username, email string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return errors.Wrap(err, "check username")
	}
	if count > 0 {
		return ErrDuplicateUsername
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return errors.Wrap(err, "check email")
	}
	if count > 0 {
		return ErrDuplicateEmail
	}
	return nil
}

// Authenticate returns the user owning email when password verifies, and
// ErrInvalidCredentials otherwise. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn(ctx, "login failed", "reason", "unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user by email")
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		s.log.Warn(ctx, "login failed", "user_id", user.ID, "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetUser loads the user behind a session.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

// ChangePassword replaces the stored hash after verifying the current
// password. It is the only update users support.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if next == "" {
		return &ValidationError{Fields: map[string]string{"new_password": "New password is required."}}
	}
	if len(next) > maxPasswordBytes {
		return &ValidationError{Fields: map[string]string{"new_password": "Password must be at most 72 bytes."}}
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(current, user.Password) {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(next)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", hash).Error; err != nil {
		return errors.Wrap(err, "update password")
	}

	s.log.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}
