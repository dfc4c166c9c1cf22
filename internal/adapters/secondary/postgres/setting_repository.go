package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiperdesk/backend/internal/core/ports"
)

// SettingRepository reads per-tenant configuration flags.
type SettingRepository struct {
	pool *pgxpool.Pool
}

var _ ports.SettingStore = (*SettingRepository)(nil)

// NewSettingRepository creates a new setting repository.
func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

// GetSetting returns the setting value for the tenant. A missing key is
// not an error; it yields the empty value so callers treat it as off.
func (r *SettingRepository) GetSetting(ctx context.Context, tenantID int64, key string) (string, error) {
	var value string
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		SELECT value FROM settings
		WHERE tenant_id = $1 AND key = $2`,
		tenantID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}
