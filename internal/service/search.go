// Package service holds the interactive state around the AI gateway: the
// displayed route search and the assistant transcript.
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/globotrack/internal/models"
)

// User-facing search messages.
const (
	MsgNoRoutes     = "No routes found. Try different cities."
	MsgSearchFailed = "Failed to fetch routes. Please check your connection."
)

// RouteSearcher finds itineraries between two places.
type RouteSearcher interface {
	SearchRoutes(ctx context.Context, origin, destination string) ([]models.TravelRoute, error)
}

// SearchState is what the search view shows.
type SearchState struct {
	Origin      string               `json:"origin"`
	Destination string               `json:"destination"`
	Loading     bool                 `json:"loading"`
	Results     []models.TravelRoute `json:"results"`
	Message     string               `json:"message,omitempty"`
	Generation  uint64               `json:"generation"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// SearchBoard tracks the latest route search. Each search takes a new
// generation; a result only lands if no newer search has started since.
type SearchBoard struct {
	mu       sync.RWMutex
	searcher RouteSearcher
	state    SearchState
	logger   *slog.Logger
}

// NewSearchBoard creates a board backed by searcher.
func NewSearchBoard(searcher RouteSearcher, logger *slog.Logger) *SearchBoard {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchBoard{
		searcher: searcher,
		state:    SearchState{Results: []models.TravelRoute{}},
		logger:   logger,
	}
}

// Begin starts a search generation and marks the board loading. Previous
// results stay visible until the new ones arrive.
func (b *SearchBoard) Begin(origin, destination string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.Generation++
	b.state.Origin = origin
	b.state.Destination = destination
	b.state.Loading = true
	b.state.Message = ""
	b.state.UpdatedAt = time.Now()
	return b.state.Generation
}

// Apply stores the outcome of search gen. It reports false and changes
// nothing when gen is no longer the latest.
func (b *SearchBoard) Apply(gen uint64, routes []models.TravelRoute, err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.state.Generation {
		b.logger.Debug("dropping stale search result", "generation", gen, "latest", b.state.Generation)
		return false
	}

	b.state.Loading = false
	b.state.UpdatedAt = time.Now()
	switch {
	case err != nil:
		b.logger.Warn("route search failed", "origin", b.state.Origin, "destination", b.state.Destination, "error", err)
		b.state.Results = []models.TravelRoute{}
		b.state.Message = MsgSearchFailed
	case len(routes) == 0:
		b.state.Results = []models.TravelRoute{}
		b.state.Message = MsgNoRoutes
	default:
		b.state.Results = cloneRoutes(routes)
		b.state.Message = ""
	}
	return true
}

// Search runs a full search cycle and returns the resulting state along with
// whether this call's result was the one applied. Blank input leaves the
// board untouched.
func (b *SearchBoard) Search(ctx context.Context, origin, destination string) (SearchState, bool) {
	origin, destination = strings.TrimSpace(origin), strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return b.State(), false
	}

	gen := b.Begin(origin, destination)
	routes, err := b.searcher.SearchRoutes(ctx, origin, destination)
	applied := b.Apply(gen, routes, err)
	return b.State(), applied
}

// State returns a copy of the board.
func (b *SearchBoard) State() SearchState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.state
	s.Results = cloneRoutes(b.state.Results)
	return s
}

func cloneRoutes(routes []models.TravelRoute) []models.TravelRoute {
	out := make([]models.TravelRoute, len(routes))
	for i, r := range routes {
		out[i] = r.Clone()
	}
	return out
}
