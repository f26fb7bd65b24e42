package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/ports"
)

// AlertService owns the caller's profile and alert list. Nobody but the
// owner reads or edits a list; the cascade only appends.
type AlertService struct {
	userRepo ports.UserRepository
}

func NewAlertService(userRepo ports.UserRepository) *AlertService {
	return &AlertService{userRepo: userRepo}
}

// SaveProfile upserts the caller's profile. The role comes from the
// identity provider, never from the request body.
func (s *AlertService) SaveProfile(ctx context.Context, caller domain.Caller, fullName, email string) (*domain.User, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email: %w", domain.ErrInvalidInput, err)
	}
	role := caller.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := &domain.User{ID: caller.UserID, FullName: fullName, Email: email, Role: role}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, caller.UserID)
}

// Alerts lists the caller's alerts oldest first. A caller with no profile yet
// simply has none.
func (s *AlertService) Alerts(ctx context.Context, caller domain.Caller) ([]string, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Alerts == nil {
		return []string{}, nil
	}
	return user.Alerts, nil
}

func (s *AlertService) Dismiss(ctx context.Context, caller domain.Caller, index int) error {
	if err := caller.RequireUser(); err != nil {
		return err
	}
	return s.userRepo.RemoveAlert(ctx, caller.UserID, index)
}

func (s *AlertService) Clear(ctx context.Context, caller domain.Caller) error {
	if err := caller.RequireUser(); err != nil {
		return err
	}
	return s.userRepo.ClearAlerts(ctx, caller.UserID)
}
