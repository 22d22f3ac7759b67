// Package gateway turns route searches and chat turns into calls against the
// hosted model and parses the replies back into domain values.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/globotrack/internal/config"
	"github.com/raphaelgruber/globotrack/internal/llm"
	"github.com/raphaelgruber/globotrack/internal/metrics"
	"github.com/raphaelgruber/globotrack/internal/models"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"
)

// MaxRoutes is the number of itineraries requested per search.
const MaxRoutes = 3

// rateBurst is how many calls may go out back to back before the limiter
// starts spacing them.
const rateBurst = 3

// ErrEmptyInput is returned when a required argument is blank.
var ErrEmptyInput = errors.New("empty input")

// Gateway is the only component that talks to the AI endpoint.
type Gateway struct {
	model   *llm.Model
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRateLimit caps calls to the endpoint. perSecond <= 0 disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(g *Gateway) {
		if perSecond <= 0 {
			g.limiter = nil
			return
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTimeout bounds each call. Zero means no deadline beyond the caller's.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// New creates a gateway over model.
func New(model *llm.Model, opts ...Option) *Gateway {
	g := &Gateway{
		model:  model,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewFromConfig builds the configured provider model and wraps it with the
// configured rate limit and per-call timeout.
func NewFromConfig(ctx context.Context, cfg config.Config, mc *metrics.Collector, logger *slog.Logger) (*Gateway, error) {
	model, err := llm.NewModel(ctx, cfg, mc)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}
	opts := []Option{
		WithRateLimit(cfg.LLMRate, rateBurst),
		WithTimeout(cfg.LLMTimeout),
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return New(model, opts...), nil
}

// SearchRoutes asks the model for up to MaxRoutes itineraries.
//
// A reply that is absent or not a JSON array of routes yields an empty slice
// and a nil error. Only failures of the call itself are returned.
func (g *Gateway) SearchRoutes(ctx context.Context, origin, destination string) ([]models.TravelRoute, error) {
	origin, destination = strings.TrimSpace(origin), strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("search routes: origin and destination: %w", ErrEmptyInput)
	}

	ctx, cancel, err := g.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("search routes: %w", err)
	}
	defer cancel()

	g.logger.Info("searching routes", "origin", origin, "destination", destination, "model", g.model.Model())
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, searchPrompt(origin, destination)),
	}
	text, err := g.model.Generate(ctx, metrics.OpRouteSearch, messages, llms.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("search routes: %w", err)
	}

	routes := parseRoutes(text, g.logger)
	g.logger.Info("route search complete", "origin", origin, "destination", destination, "routes", len(routes))
	return routes, nil
}

// Chat sends message to the assistant along with the prior transcript and
// returns the reply, which may be empty.
func (g *Gateway) Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("chat: message: %w", ErrEmptyInput)
	}

	ctx, cancel, err := g.begin(ctx)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	defer cancel()

	messages := chatMessages(message, history)
	g.logger.Debug("sending chat turn", "history", len(messages)-2, "message_len", len(message))

	reply, err := g.model.Generate(ctx, metrics.OpChat, messages)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// begin waits for the rate limiter and applies the per-call deadline.
func (g *Gateway) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	if g.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		return ctx, cancel, nil
	}
	return ctx, func() {}, nil
}

// chatMessages builds the conversation: persona, prior turns, new message.
// Assistant turns before the first user turn are local greetings and are
// not sent; providers expect the conversation to open with the user.
func chatMessages(message string, history []models.ChatMessage) []llms.MessageContent {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemInstruction),
	}

	seenUser := false
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch turn.Role {
		case models.RoleUser:
			seenUser = true
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, content))
		case models.RoleAssistant:
			if seenUser {
				messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, content))
			}
		}
	}

	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, message))
}

// routeReply mirrors one array item of the route schema. Numbers are
// pointers so a field the model left out is told apart from a zero.
type routeReply struct {
	ID             string         `json:"id"`
	Name           string         `json:"name" validate:"required"`
	TotalCost      *float64       `json:"totalCost" validate:"required,gte=0"`
	TotalDuration  string         `json:"totalDuration" validate:"required"`
	Transfers      *float64       `json:"transfers" validate:"required,gte=0"`
	Legs           []legReply     `json:"legs" validate:"required,min=1,dive"`
	BookingOptions []bookingReply `json:"bookingOptions" validate:"required,dive"`
}

type legReply struct {
	ID       string   `json:"id"`
	From     string   `json:"from" validate:"required"`
	To       string   `json:"to" validate:"required"`
	Type     string   `json:"type" validate:"required"`
	Duration string   `json:"duration" validate:"required"`
	Cost     *float64 `json:"cost" validate:"required,gte=0"`
	Carrier  string   `json:"carrier"`
}

type bookingReply struct {
	Platform string   `json:"platform" validate:"required"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	URL      string   `json:"url" validate:"required"`
}

func (r routeReply) route() models.TravelRoute {
	route := models.TravelRoute{
		ID:             r.ID,
		Name:           r.Name,
		TotalCost:      *r.TotalCost,
		TotalDuration:  r.TotalDuration,
		Transfers:      int(*r.Transfers),
		Legs:           make([]models.RouteLeg, len(r.Legs)),
		BookingOptions: make([]models.BookingOption, len(r.BookingOptions)),
	}
	for i, l := range r.Legs {
		route.Legs[i] = models.RouteLeg{
			ID:       l.ID,
			From:     l.From,
			To:       l.To,
			Type:     models.TransportType(l.Type),
			Duration: l.Duration,
			Cost:     *l.Cost,
			Carrier:  l.Carrier,
		}
	}
	for i, b := range r.BookingOptions {
		route.BookingOptions[i] = models.BookingOption{Platform: b.Platform, Price: *b.Price, URL: b.URL}
	}
	return route
}

// parseRoutes decodes the model reply. It never fails: anything that is not
// a JSON array degrades to an empty slice, and array elements that miss
// required fields or name an unknown transport type are dropped.
func parseRoutes(text string, logger *slog.Logger) []models.TravelRoute {
	text = stripCodeFence(text)
	if text == "" {
		logger.Warn("empty route search reply")
		return []models.TravelRoute{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		logger.Warn("failed to parse route search reply", "error", err, "reply_len", len(text))
		return []models.TravelRoute{}
	}

	routes := make([]models.TravelRoute, 0, min(len(raw), MaxRoutes))
	for i, item := range raw {
		if len(routes) == MaxRoutes {
			logger.Debug("dropping surplus routes", "returned", len(raw))
			break
		}

		var reply routeReply
		if err := json.Unmarshal(item, &reply); err != nil {
			logger.Warn("skipping malformed route", "index", i, "error", err)
			continue
		}
		if err := models.Validate(reply); err != nil {
			logger.Warn("skipping incomplete route", "index", i, "name", reply.Name, "error", err)
			continue
		}

		route := reply.route()
		normalizeRoute(&route, len(routes), logger)
		if err := models.Validate(route); err != nil {
			logger.Warn("skipping invalid route", "index", i, "name", route.Name, "error", err)
			continue
		}
		routes = append(routes, route)
	}
	return routes
}

// normalizeRoute fills ids, lowercases transport types and derives the
// transfer count from the legs.
func normalizeRoute(r *models.TravelRoute, pos int, logger *slog.Logger) {
	if r.ID == "" {
		r.ID = fmt.Sprintf("r%d", pos+1)
	}
	for i := range r.Legs {
		leg := &r.Legs[i]
		leg.Type = models.TransportType(strings.ToLower(strings.TrimSpace(string(leg.Type))))
		if leg.ID == "" {
			leg.ID = fmt.Sprintf("%s-%d", r.ID, i+1)
		}
	}
	if n := len(r.Legs); n > 0 && r.Transfers != n-1 {
		logger.Debug("correcting transfer count", "route", r.Name, "reported", r.Transfers, "legs", n)
		r.Transfers = n - 1
	}
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
