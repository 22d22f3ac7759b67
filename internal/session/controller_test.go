package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/raphaelgruber/globotrack/internal/auth"
	"github.com/raphaelgruber/globotrack/internal/models"
	"github.com/raphaelgruber/globotrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore records every write so tests can assert one save per mutation.
type memStore struct {
	mu       sync.Mutex
	profile  *models.UserProfile
	saves    int
	clears   int
	saveErr  error
	clearErr error
}

func (m *memStore) Load(context.Context) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, nil
	}
	p := m.profile.Clone()
	return &p, nil
}

func (m *memStore) Save(_ context.Context, p models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	c := p.Clone()
	m.profile = &c
	m.saves++
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.profile = nil
	m.clears++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(t *testing.T, s store.ProfileStore) *Controller {
	t.Helper()
	c, err := Open(context.Background(), s, auth.LocalVerifier{}, quietLogger())
	require.NoError(t, err)
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return c
}

func tokyoExpress() models.TravelRoute {
	return models.TravelRoute{
		ID:            "r1",
		Name:          "Tokyo Express",
		TotalCost:     45000,
		TotalDuration: "14h 30m",
		Transfers:     0,
		Legs: []models.RouteLeg{
			{ID: "r1-1", From: "Delhi", To: "Tokyo", Type: models.TransportFlight, Duration: "14h 30m", Cost: 45000, Carrier: "ANA"},
		},
		BookingOptions: []models.BookingOption{
			{Platform: "Skyscanner", Price: 44800, URL: "https://www.skyscanner.co.in"},
		},
	}
}

func TestOpenRestoresPersistedProfile(t *testing.T) {
	ms := &memStore{profile: &models.UserProfile{Name: "Priya", Email: "priya@example.com"}}
	c := newController(t, ms)

	p, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "Priya", p.Name)
	assert.True(t, c.SignedIn())
}

func TestOpenWithoutRecordIsSignedOut(t *testing.T) {
	c := newController(t, &memStore{})
	assert.False(t, c.SignedIn())
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestSignInPersists(t *testing.T) {
	ms := &memStore{}
	c := newController(t, ms)

	p, err := c.SignIn(context.Background(), auth.Credentials{Email: "priya@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "priya", p.Name)
	assert.Equal(t, auth.DefaultBio, p.Bio)
	assert.Equal(t, 1, ms.saves)
	assert.Equal(t, "priya@example.com", ms.profile.Email)
}

func TestSignInRejectedLeavesState(t *testing.T) {
	ms := &memStore{}
	c := newController(t, ms)

	_, err := c.SignIn(context.Background(), auth.Credentials{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.False(t, c.SignedIn())
	assert.Zero(t, ms.saves)
}

func TestSignUpUsesName(t *testing.T) {
	c := newController(t, &memStore{})
	p, err := c.SignUp(context.Background(), auth.Credentials{Name: "Priya Sharma", Email: "p@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Priya Sharma", p.Name)
}

func TestSaveRoute(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	c := newController(t, ms)
	_, err := c.SignUp(ctx, auth.Credentials{Name: "Priya", Email: "priya@example.com"})
	require.NoError(t, err)

	saved, err := c.SaveRoute(ctx, tokyoExpress())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, c.IsRouteSaved("Tokyo Express"))

	p, _ := c.Current()
	require.Len(t, p.SavedRoutes, 1)
	assert.Equal(t, "id-1", p.SavedRoutes[0].ID, "saved copy gets a fresh id")
	assert.Equal(t, 2, ms.saves)
	assert.Equal(t, p, *ms.profile)

	t.Run("same name is a no-op", func(t *testing.T) {
		dup := tokyoExpress()
		dup.TotalCost = 1
		saved, err := c.SaveRoute(ctx, dup)
		require.NoError(t, err)
		assert.False(t, saved)

		p, _ := c.Current()
		assert.Len(t, p.SavedRoutes, 1)
		assert.Equal(t, 45000.0, p.SavedRoutes[0].TotalCost)
		assert.Equal(t, 2, ms.saves)
	})

	t.Run("caller's route is not aliased", func(t *testing.T) {
		r := tokyoExpress()
		r.Name = "Tokyo Slow"
		_, err := c.SaveRoute(ctx, r)
		require.NoError(t, err)
		r.Legs[0].Carrier = "changed"

		p, _ := c.Current()
		assert.Equal(t, "ANA", p.SavedRoutes[1].Legs[0].Carrier)
	})
}

func TestSaveRouteSignedOut(t *testing.T) {
	ms := &memStore{}
	c := newController(t, ms)

	saved, err := c.SaveRoute(context.Background(), tokyoExpress())
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.False(t, saved)
	assert.Zero(t, ms.saves)
}

func TestDeleteRoute(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	c := newController(t, ms)
	_, err := c.SignIn(ctx, auth.Credentials{Email: "priya@example.com"})
	require.NoError(t, err)
	_, err = c.SaveRoute(ctx, tokyoExpress())
	require.NoError(t, err)

	require.NoError(t, c.DeleteRoute(ctx, "missing"))
	p, _ := c.Current()
	assert.Len(t, p.SavedRoutes, 1)

	require.NoError(t, c.DeleteRoute(ctx, "id-1"))
	p, _ = c.Current()
	assert.Empty(t, p.SavedRoutes)
	assert.False(t, c.IsRouteSaved("Tokyo Express"))
	assert.Empty(t, ms.profile.SavedRoutes)

	assert.ErrorIs(t, newController(t, &memStore{}).DeleteRoute(ctx, "id-1"), ErrNotSignedIn)
}

func TestUpdateBio(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	c := newController(t, ms)
	assert.ErrorIs(t, c.UpdateBio(ctx, "x"), ErrNotSignedIn)

	_, err := c.SignIn(ctx, auth.Credentials{Email: "priya@example.com"})
	require.NoError(t, err)
	require.NoError(t, c.UpdateBio(ctx, ""))

	p, _ := c.Current()
	assert.Empty(t, p.Bio)
	assert.Empty(t, ms.profile.Bio)
}

func TestSignOutClearsStore(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	c := newController(t, ms)
	_, err := c.SignIn(ctx, auth.Credentials{Email: "priya@example.com"})
	require.NoError(t, err)

	require.NoError(t, c.SignOut(ctx))
	assert.False(t, c.SignedIn())
	assert.Nil(t, ms.profile)
	assert.Equal(t, 1, ms.clears)

	reopened := newController(t, ms)
	assert.False(t, reopened.SignedIn())
}

func TestSaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	c := newController(t, ms)
	_, err := c.SignIn(ctx, auth.Credentials{Email: "priya@example.com"})
	require.NoError(t, err)
	before, _ := c.Current()

	boom := errors.New("disk full")
	ms.saveErr = boom

	assert.ErrorIs(t, c.UpdateBio(ctx, "new"), boom)
	assert.ErrorIs(t, c.DeleteRoute(ctx, "missing"), boom)
	saved, err := c.SaveRoute(ctx, tokyoExpress())
	assert.ErrorIs(t, err, boom)
	assert.False(t, saved)
	_, err = c.SignUp(ctx, auth.Credentials{Name: "Other", Email: "other@example.com"})
	assert.ErrorIs(t, err, boom)

	after, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, before, after, "failed writes leave the profile unchanged")
	assert.False(t, c.IsRouteSaved("Tokyo Express"))

	t.Run("retry persists", func(t *testing.T) {
		ms.saveErr = nil
		saved, err := c.SaveRoute(ctx, tokyoExpress())
		require.NoError(t, err)
		assert.True(t, saved)

		require.NotNil(t, ms.profile)
		require.Len(t, ms.profile.SavedRoutes, 1)
		assert.Equal(t, "Tokyo Express", ms.profile.SavedRoutes[0].Name)
		p, _ := c.Current()
		assert.Equal(t, p, *ms.profile)
	})
}

func TestSignOutFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	c := newController(t, ms)
	_, err := c.SignIn(ctx, auth.Credentials{Email: "priya@example.com"})
	require.NoError(t, err)

	boom := errors.New("read-only filesystem")
	ms.clearErr = boom
	assert.ErrorIs(t, c.SignOut(ctx), boom)
	assert.True(t, c.SignedIn())
	assert.True(t, newController(t, ms).SignedIn())

	ms.clearErr = nil
	require.NoError(t, c.SignOut(ctx))
	assert.False(t, c.SignedIn())
	assert.False(t, newController(t, ms).SignedIn())
}

func TestCurrentReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := newController(t, &memStore{})
	_, err := c.SignIn(ctx, auth.Credentials{Email: "priya@example.com"})
	require.NoError(t, err)
	_, err = c.SaveRoute(ctx, tokyoExpress())
	require.NoError(t, err)

	p, _ := c.Current()
	p.SavedRoutes[0].Name = "mutated"
	assert.True(t, c.IsRouteSaved("Tokyo Express"))
}

func TestRoundTripThroughFileStore(t *testing.T) {
	ctx := context.Background()
	fs := store.NewFileStore(t.TempDir(), quietLogger())

	c := newController(t, fs)
	_, err := c.SignUp(ctx, auth.Credentials{Name: "Priya", Email: "priya@example.com"})
	require.NoError(t, err)
	_, err = c.SaveRoute(ctx, tokyoExpress())
	require.NoError(t, err)
	require.NoError(t, c.UpdateBio(ctx, "Rail first."))
	want, _ := c.Current()

	reopened := newController(t, fs)
	got, ok := reopened.Current()
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, reopened.SignOut(ctx))
	loaded, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	c, err := Open(ctx, ms, nil, quietLogger())
	require.NoError(t, err)
	_, err = c.SignIn(ctx, auth.Credentials{Email: "priya@example.com"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := tokyoExpress()
			r.Name = fmt.Sprintf("route %d", i)
			_, _ = c.SaveRoute(ctx, r)
		}()
	}
	wg.Wait()

	p, _ := c.Current()
	assert.Len(t, p.SavedRoutes, 20)
	assert.Len(t, ms.profile.SavedRoutes, 20)
}

func TestRouteIDIsUnique(t *testing.T) {
	a, b := routeID(), routeID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 32)
}
