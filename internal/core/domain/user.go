package domain

import "fmt"

type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
)

type User struct {
	ID       string   `json:"id"`
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Role     Role     `json:"role"`
	Alerts   []string `json:"alerts"`
}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleOrganizer:
		return Role(s), nil
	case "":
		return RoleUser, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// Caller is the authenticated identity attached to a request.
type Caller struct {
	UserID string
	Role   Role
}

func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

func (c Caller) RequireUser() error {
	if !c.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func (c Caller) RequireOrganizer() error {
	if err := c.RequireUser(); err != nil {
		return err
	}
	if c.Role != RoleOrganizer {
		return fmt.Errorf("%w: organizer role required", ErrForbidden)
	}
	return nil
}

// RemoveAlert drops the alert at index and returns the new list.
func RemoveAlert(alerts []string, index int) ([]string, error) {
	if index < 0 || index >= len(alerts) {
		return alerts, fmt.Errorf("%w: alert %d", ErrNotFound, index)
	}
	out := make([]string, 0, len(alerts)-1)
	out = append(out, alerts[:index]...)
	return append(out, alerts[index+1:]...), nil
}
