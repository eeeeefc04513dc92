// Package auth registers local accounts and verifies their passwords.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository"
)

var (
	// ErrUsernameTaken rejects a registration for an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrAccountNotFound means the account is unknown on this device; the user
	// should register or import a backup.
	ErrAccountNotFound = errors.New("account not found on this device")
	// ErrInvalidPassword rejects a wrong password.
	ErrInvalidPassword = errors.New("invalid password")
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=4,max=72"`
	FarmName string `json:"farmName" validate:"required,max=120"`
}

// Service handles local accounts.
type Service struct {
	users    *repository.Users
	validate *validator.Validate
	logger   *zap.Logger
	cost     int
}

// NewService wires a new auth service instance.
func NewService(users *repository.Users, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, validate: validator.New(), logger: logger, cost: bcrypt.DefaultCost}
}

// Register creates an admin account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FarmName = strings.TrimSpace(in.FarmName)
	if err := s.validate.Struct(in); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	_, exists, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           models.NewID(""),
		Username:     in.Username,
		PasswordHash: string(hash),
		FarmName:     in.FarmName,
		Role:         models.RoleAdmin,
	}
	if err := s.users.Save(ctx, user); err != nil {
		return models.User{}, err
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies the credentials. Accounts restored from old backups carry a
// base64 placeholder instead of a hash; a successful login upgrades them.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", models.ErrValidation)
	}

	user, ok, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrAccountNotFound
	}

	if isBcrypt(user.PasswordHash) {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return models.User{}, ErrInvalidPassword
		}
		return user, nil
	}

	if user.PasswordHash != base64.StdEncoding.EncodeToString([]byte(password)) {
		return models.User{}, ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Save(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("upgrade password hash: %w", err)
	}
	s.logger.Info("legacy password hash upgraded", zap.String("user_id", user.ID))
	return user, nil
}

func isBcrypt(hash string) bool {
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}
