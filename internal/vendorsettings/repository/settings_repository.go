package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "vendordesk/internal/errors"
)

type MySQLSettingsRepository struct {
	db *sql.DB
}

func NewMySQLSettingsRepository(db *sql.DB) *MySQLSettingsRepository {
	return &MySQLSettingsRepository{db: db}
}

func (r *MySQLSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT settingValue
		FROM VendorSettings
		WHERE settingKey = ?
	`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("setting %q not found", key))
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %q: %w", key, err)
	}

	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *MySQLSettingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO VendorSettings (settingKey, settingValue)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE settingValue = VALUES(settingValue)
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("storing setting %q: %w", key, err)
	}
	return nil
}
