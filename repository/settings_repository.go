package repository

import (
	"context"
	"database/sql"
	"einvoice-gateway/logger"
	"einvoice-gateway/model"
)

// ISettingsRepository defines the contract for persisted gateway settings.
type ISettingsRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	Upsert(ctx context.Context, key, value string) error
}

type SettingsRepository struct {
	DB *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// Get returns the stored setting or sql.ErrNoRows.
func (r *SettingsRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	setting := &model.Setting{}
	query := `SELECT setting_key, setting_value, updated_at FROM gateway_settings WHERE setting_key = $1`
	err := r.DB.QueryRowContext(ctx, query, key).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("key", key).Error("Failed to execute get setting query")
		}
		return nil, err
	}
	return setting, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, key, value string) error {
	log := logger.Log.WithField("key", key)
	log.Info("Executing query to upsert setting")

	query := `INSERT INTO gateway_settings (setting_key, setting_value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (setting_key) DO UPDATE SET setting_value = EXCLUDED.setting_value, updated_at = NOW()`
	if _, err := r.DB.ExecContext(ctx, query, key, value); err != nil {
		log.WithError(err).Error("Failed to execute upsert setting query")
		return err
	}
	return nil
}
