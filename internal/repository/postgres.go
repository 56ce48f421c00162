package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

var _ SessionRepository = (*PostgresSessionRepository)(nil)

const sessionSchema = `
	CREATE TABLE IF NOT EXISTS storefront_sessions (
		id         UUID PRIMARY KEY,
		client_id  UUID NOT NULL,
		token      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)
`

// OpenPostgres opens and verifies a pooled connection.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// PostgresSessionRepository implements SessionRepository using PostgreSQL.
type PostgresSessionRepository struct {
	db     *sql.DB
	logger *logging.Logger
	now    func() time.Time
}

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{
		db:     db,
		logger: logging.New("session-repository"),
		now:    time.Now,
	}
}

// EnsureSchema creates the sessions table when missing.
func (r *PostgresSessionRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, sessionSchema)
	return err
}

// Get loads a session by id.
func (r *PostgresSessionRepository) Get(ctx context.Context, sessionID string) (*session.Identity, error) {
	query := `
		SELECT id, client_id, token
		FROM storefront_sessions
		WHERE id = $1
	`

	var id session.Identity
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&id.SessionID, &id.ClientID, &id.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch session", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &id, nil
}

// Create stores a new session. The token column is never logged.
func (r *PostgresSessionRepository) Create(ctx context.Context, id *session.Identity) error {
	query := `
		INSERT INTO storefront_sessions (id, client_id, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	now := r.now()
	if _, err := r.db.ExecContext(ctx, query, id.SessionID, id.ClientID, id.Token, now, now); err != nil {
		r.logger.Error("Failed to create session", logging.Fields{
			"session_id": id.SessionID,
			"error":      err.Error(),
		})
		return err
	}

	r.logger.Debug("Session created", logging.Fields{"session_id": id.SessionID})
	return nil
}

// UpdateToken sets or clears (empty token) the bearer token of a session.
func (r *PostgresSessionRepository) UpdateToken(ctx context.Context, sessionID, token string) error {
	query := `
		UPDATE storefront_sessions
		SET token = $2, updated_at = $3
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, sessionID, token, r.now())
	if err != nil {
		r.logger.Error("Failed to update session token", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}

	r.logger.Info("Session token updated", logging.Fields{
		"session_id":    sessionID,
		"authenticated": token != "",
	})
	return nil
}

func (r *PostgresSessionRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM storefront_sessions WHERE id = $1`, sessionID)
	return err
}
