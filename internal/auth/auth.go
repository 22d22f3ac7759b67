// Package auth verifies credentials and produces the profile a session signs
// in as.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/globotrack/internal/models"
)

// DefaultBio is given to every newly produced profile.
const DefaultBio = "Avid traveler looking for unique routes."

// ErrInvalidCredentials is returned when required credential fields are missing.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is what a user submits to sign in or sign up.
// Name is only read on sign-up.
type Credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password"`
}

// Verifier turns credentials into a profile.
type Verifier interface {
	SignIn(ctx context.Context, c Credentials) (models.UserProfile, error)
	SignUp(ctx context.Context, c Credentials) (models.UserProfile, error)
}

// LocalVerifier accepts any credentials with an email and synthesizes a
// fresh profile. There is no account registry; the password is not checked.
type LocalVerifier struct{}

var _ Verifier = LocalVerifier{}

// SignIn derives the display name from the local part of the email.
func (LocalVerifier) SignIn(_ context.Context, c Credentials) (models.UserProfile, error) {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return models.UserProfile{}, fmt.Errorf("sign in: email required: %w", ErrInvalidCredentials)
	}
	return newProfile(displayName(email), email), nil
}

// SignUp uses the supplied name.
func (LocalVerifier) SignUp(_ context.Context, c Credentials) (models.UserProfile, error) {
	email := strings.TrimSpace(c.Email)
	name := strings.TrimSpace(c.Name)
	switch {
	case email == "":
		return models.UserProfile{}, fmt.Errorf("sign up: email required: %w", ErrInvalidCredentials)
	case name == "":
		return models.UserProfile{}, fmt.Errorf("sign up: name required: %w", ErrInvalidCredentials)
	}
	return newProfile(name, email), nil
}

func newProfile(name, email string) models.UserProfile {
	return models.UserProfile{
		Name:        name,
		Email:       email,
		Bio:         DefaultBio,
		SavedRoutes: []models.TravelRoute{},
	}
}

// displayName is the part of email before '@', or "User" when that is empty.
func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); local != "" {
		return local
	}
	return "User"
}
