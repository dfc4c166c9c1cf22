package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiperdesk/backend/internal/core/ports"
)

func TestSettingRepository_GetSetting(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingRepository(testPool)

	setSetting(t, ctx, 1, ports.SettingUserRating, ports.SettingEnabled)

	value, err := repo.GetSetting(ctx, 1, ports.SettingUserRating)
	require.NoError(t, err)
	assert.Equal(t, ports.SettingEnabled, value)
}

func TestSettingRepository_MissingKeyIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingRepository(testPool)

	value, err := repo.GetSetting(ctx, 1, "noSuchKey")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestSettingRepository_ScopedToTenant(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingRepository(testPool)

	setSetting(t, ctx, 5, ports.SettingSendGreetingAccepted, ports.SettingEnabled)

	value, err := repo.GetSetting(ctx, 6, ports.SettingSendGreetingAccepted)
	require.NoError(t, err)
	assert.Empty(t, value)
}
