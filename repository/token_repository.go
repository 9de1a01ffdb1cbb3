// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"einvoice-gateway/logger"
	"einvoice-gateway/model"
	"time"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for gateway token database operations.
type ITokenRepository interface {
	GetLatestValid(ctx context.Context, now time.Time) (*model.GatewayToken, error)
	Create(ctx context.Context, token *model.GatewayToken) error
	DeleteOlderThan(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) error
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// GetLatestValid returns the most recently inserted token that expires after now.
// It returns sql.ErrNoRows when no usable token is cached.
func (r *TokenRepository) GetLatestValid(ctx context.Context, now time.Time) (*model.GatewayToken, error) {
	log := logger.Log.WithField("now", now)
	log.Debug("Executing query to get latest valid gateway token")

	token := &model.GatewayToken{}
	query := `SELECT id, access_token, expires_at, created_at FROM gateway_tokens WHERE expires_at > $1 ORDER BY id DESC LIMIT 1`
	err := r.DB.QueryRowContext(ctx, query, now.UTC()).Scan(&token.ID, &token.AccessToken, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get latest gateway token query")
		}
		return nil, err
	}
	return token, nil
}

// Create inserts a new token row and fills in its ID and creation time.
func (r *TokenRepository) Create(ctx context.Context, token *model.GatewayToken) error {
	log := logger.Log.WithField("expires_at", token.ExpiresAt)
	log.Info("Executing query to create a new gateway token")

	query := `INSERT INTO gateway_tokens (access_token, expires_at) VALUES ($1, $2) RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, token.AccessToken, token.ExpiresAt.UTC()).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create gateway token query")
		return err
	}
	return nil
}

// DeleteOlderThan removes every token inserted before the row with the given id.
// Rows inserted concurrently after it are left alone, so the newest row always survives.
func (r *TokenRepository) DeleteOlderThan(ctx context.Context, id int64) (int64, error) {
	log := logger.Log.WithField("keep_id", id)
	log.Info("Executing query to prune superseded gateway tokens")

	query := `DELETE FROM gateway_tokens WHERE id < $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute prune gateway tokens query")
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.WithFields(logrus.Fields{"deleted": n}).Debug("Pruned gateway tokens")
	return n, nil
}

// DeleteAll empties the token cache, e.g. after switching gateway environment.
func (r *TokenRepository) DeleteAll(ctx context.Context) error {
	logger.Log.Info("Executing query to delete all gateway tokens")

	_, err := r.DB.ExecContext(ctx, `DELETE FROM gateway_tokens`)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete all gateway tokens query")
		return err
	}
	return nil
}
