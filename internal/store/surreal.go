package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/globotrack/internal/models"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

// ErrTransactionConflict indicates concurrent writers raced on the record.
var ErrTransactionConflict = errors.New("transaction conflict")

const profileTable = "profile"

func init() {
	// WebSocket upgrade requires HTTP/1.1; stop WSS from negotiating HTTP/2.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// SurrealStore keeps the profile as one record in a SurrealDB table.
// The profile JSON is stored verbatim so a corrupt value can be detected
// and discarded exactly like the file backend.
type SurrealStore struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	logger *slog.Logger
}

var _ ProfileStore = (*SurrealStore)(nil)

// NewSurrealStore connects with an auto-reconnecting WebSocket and signs in
// as a root user.
func NewSurrealStore(ctx context.Context, cfg SurrealConfig, log *slog.Logger) (*SurrealStore, error) {
	if log == nil {
		log = slog.Default()
	}
	sdkLogger := logger.New(log.Handler())
	codec := surrealcbor.New()

	// gorillaws appends /rpc itself
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			}), nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	log.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	if _, err := db.SignIn(ctx, surrealdb.Auth{
		Username: cfg.Username,
		Password: cfg.Password,
	}); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}

	log.Info("SurrealDB profile store ready", "namespace", cfg.Namespace, "database", cfg.Database)
	return &SurrealStore{conn: conn, db: db, logger: log}, nil
}

// Close closes the SurrealDB connection.
func (s *SurrealStore) Close(ctx context.Context) error {
	s.logger.Info("closing SurrealDB connection")
	return s.conn.Close(ctx)
}

// Load selects the stored profile JSON.
func (s *SurrealStore) Load(ctx context.Context) (*models.UserProfile, error) {
	results, err := surrealdb.Query[[]string](ctx, s.db,
		`SELECT VALUE data FROM type::record($tb, $id)`,
		map[string]any{"tb": profileTable, "id": ProfileKey})
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return decodeProfile([]byte((*results)[0].Result[0]), s.logger), nil
}

// Save upserts the whole profile record.
func (s *SurrealStore) Save(ctx context.Context, profile models.UserProfile) error {
	data, err := encodeProfile(profile)
	if err != nil {
		return err
	}
	return s.put(ctx, string(data))
}

func (s *SurrealStore) put(ctx context.Context, data string) error {
	_, err := surrealdb.Query[any](ctx, s.db,
		`UPSERT type::record($tb, $id) CONTENT { data: $data, updated_at: time::now() }`,
		map[string]any{"tb": profileTable, "id": ProfileKey, "data": data})
	if err != nil {
		return fmt.Errorf("save profile: %w", wrapQueryError(err))
	}
	return nil
}

// Clear deletes the profile record.
func (s *SurrealStore) Clear(ctx context.Context) error {
	_, err := surrealdb.Query[any](ctx, s.db,
		`DELETE type::record($tb, $id)`,
		map[string]any{"tb": profileTable, "id": ProfileKey})
	if err != nil {
		return fmt.Errorf("clear profile: %w", wrapQueryError(err))
	}
	return nil
}

// wrapQueryError maps known SurrealDB query failures onto sentinel errors.
func wrapQueryError(err error) error {
	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) && strings.Contains(queryErr.Message, "Transaction conflict") {
		return fmt.Errorf("%w: %s", ErrTransactionConflict, queryErr.Message)
	}
	return err
}
