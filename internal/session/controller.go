// Package session owns the signed-in profile and keeps the persisted copy in
// step with it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/raphaelgruber/globotrack/internal/auth"
	"github.com/raphaelgruber/globotrack/internal/models"
	"github.com/raphaelgruber/globotrack/internal/store"
)

// ErrNotSignedIn is returned by operations that need a profile.
var ErrNotSignedIn = errors.New("not signed in")

// MsgSignInToSave is shown when a signed-out user tries to save a route.
const MsgSignInToSave = "Please sign in to save routes."

// Controller is the single writer of the profile. Every mutation replaces the
// in-memory value and then saves the whole profile.
type Controller struct {
	mu       sync.Mutex
	profile  *models.UserProfile
	store    store.ProfileStore
	verifier auth.Verifier
	logger   *slog.Logger
	newID    func() string
}

// Open loads the persisted profile, if any. An absent or unreadable record
// starts the controller signed out.
func Open(ctx context.Context, s store.ProfileStore, v auth.Verifier, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = auth.LocalVerifier{}
	}
	c := &Controller{
		store:    s,
		verifier: v,
		logger:   logger,
		newID:    routeID,
	}

	p, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p != nil {
		c.profile = p
		logger.Debug("restored profile", "email", p.Email, "saved_routes", len(p.SavedRoutes))
	}
	return c, nil
}

// SignIn replaces the current profile with the one the verifier produces.
func (c *Controller) SignIn(ctx context.Context, creds auth.Credentials) (models.UserProfile, error) {
	p, err := c.verifier.SignIn(ctx, creds)
	if err != nil {
		return models.UserProfile{}, err
	}
	return c.signInAs(ctx, p)
}

// SignUp creates a profile with the supplied name and signs in as it.
func (c *Controller) SignUp(ctx context.Context, creds auth.Credentials) (models.UserProfile, error) {
	p, err := c.verifier.SignUp(ctx, creds)
	if err != nil {
		return models.UserProfile{}, err
	}
	return c.signInAs(ctx, p)
}

func (c *Controller) signInAs(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.commit(ctx, p); err != nil {
		return models.UserProfile{}, err
	}
	c.logger.Info("signed in", "email", p.Email)
	return p.Clone(), nil
}

// SignOut erases the stored record and drops the profile. When the record
// cannot be erased the session stays signed in.
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear profile", "error", err)
		return fmt.Errorf("clear profile: %w", err)
	}
	c.profile = nil
	c.logger.Info("signed out")
	return nil
}

// SaveRoute appends a copy of route under a fresh id. It reports false
// without writing when a route with the same name is already saved.
func (c *Controller) SaveRoute(ctx context.Context, route models.TravelRoute) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.profile == nil {
		return false, ErrNotSignedIn
	}
	if c.profile.HasRoute(route.Name) {
		return false, nil
	}

	next := c.profile.Clone()
	saved := route.Clone()
	saved.ID = c.newID()
	next.SavedRoutes = append(next.SavedRoutes, saved)
	if err := c.commit(ctx, next); err != nil {
		return false, err
	}

	c.logger.Info("route saved", "route", route.Name, "id", saved.ID)
	return true, nil
}

// DeleteRoute removes every saved route with the given id. An unknown id
// leaves the list as it was but is still persisted.
func (c *Controller) DeleteRoute(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.profile == nil {
		return ErrNotSignedIn
	}

	next := c.profile.Clone()
	kept := next.SavedRoutes[:0]
	for _, r := range next.SavedRoutes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	next.SavedRoutes = kept
	return c.commit(ctx, next)
}

// UpdateBio replaces the bio.
func (c *Controller) UpdateBio(ctx context.Context, bio string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.profile == nil {
		return ErrNotSignedIn
	}

	next := c.profile.Clone()
	next.Bio = bio
	return c.commit(ctx, next)
}

// Current returns a copy of the profile and whether one is signed in.
func (c *Controller) Current() (models.UserProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.profile == nil {
		return models.UserProfile{}, false
	}
	return c.profile.Clone(), true
}

// SignedIn reports whether a profile is present.
func (c *Controller) SignedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile != nil
}

// IsRouteSaved reports whether the signed-in profile holds a route named name.
func (c *Controller) IsRouteSaved(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile != nil && c.profile.HasRoute(name)
}

// commit writes next and makes it the current profile once the store has
// accepted it. On failure the current profile is left untouched. Callers
// hold c.mu.
func (c *Controller) commit(ctx context.Context, next models.UserProfile) error {
	if err := c.store.Save(ctx, next); err != nil {
		c.logger.Error("failed to persist profile", "error", err)
		return fmt.Errorf("save profile: %w", err)
	}
	c.profile = &next
	return nil
}

// routeID is time-ordered so saved routes sort by when they were saved.
func routeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return strings.ReplaceAll(id.String(), "-", "")
}
