package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carteira/internal/amqp"
	"carteira/internal/auth"
	"carteira/internal/core"
	"carteira/internal/log"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// ProfileUpdate carries a partial profile change; nil fields keep the stored value.
type ProfileUpdate struct {
	Name        *string
	AvatarURL   *string
	Wallpaper   *string
	Theme       *core.Theme
	PrivacyMode *bool
}

// AuthService owns accounts: registration, login and profile metadata.
type AuthService struct {
	users  UserStore
	events EventPublisher
	logger *log.Logger
}

func NewAuthService(users UserStore, events EventPublisher, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AuthService{
		users:  users,
		events: events,
		logger: logger.WithComponent(log.ComponentAuth),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and announces it with a user.registered event.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	email = normalizeEmail(email)
	if err := core.ValidateEmail(email); err != nil {
		return core.User{}, err
	}
	name = strings.TrimSpace(name)
	if name != "" {
		if err := core.ValidateName(name); err != nil {
			return core.User{}, err
		}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, err
	}

	u, err := s.users.CreateUser(ctx, core.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Theme:        core.ThemeDark,
	})
	if err != nil {
		if !errors.Is(err, core.ErrEmailTaken) {
			s.logger.ErrorContext(ctx, "Failed to create user", log.FieldOperation, log.OpRegister, log.FieldError, err)
		}
		return core.User{}, err
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID)

	if e, err := amqp.UserRegisteredEvent(u); err == nil {
		publish(ctx, s.events, s.logger, e)
	}
	return u, nil
}

// Login returns ErrInvalidCredentials for an unknown email or a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := auth.ComparePassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.WarnContext(ctx, "Login rejected", log.FieldUserID, u.ID)
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, err
	}
	return u, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, id string) (core.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// UpdateProfile applies upd on top of the stored user and returns the result.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (core.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	if upd.Name != nil {
		if err := core.ValidateName(*upd.Name); err != nil {
			return core.User{}, err
		}
		u.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = *upd.AvatarURL
	}
	if upd.Wallpaper != nil {
		u.Wallpaper = *upd.Wallpaper
	}
	if upd.Theme != nil {
		u.Theme = *upd.Theme
	}
	if upd.PrivacyMode != nil {
		u.PrivacyMode = *upd.PrivacyMode
	}

	if err := s.users.UpdateUserProfile(ctx, u); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update profile",
			log.FieldUserID, id, log.FieldOperation, log.OpUpdate, log.FieldError, err)
		return core.User{}, err
	}
	return u, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, id, password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUserPassword(ctx, id, hash); err != nil {
		s.logger.ErrorContext(ctx, "Failed to change password", log.FieldUserID, id, log.FieldError, err)
		return err
	}
	s.logger.InfoContext(ctx, "Password changed", log.FieldUserID, id)
	return nil
}

// publish sends e when events are enabled. Failures are logged only.
func publish(ctx context.Context, events EventPublisher, logger *log.Logger, e amqp.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "Failed to publish event",
			log.FieldEventType, e.Type, log.FieldUserID, e.UserID, log.FieldError, err)
	}
}
