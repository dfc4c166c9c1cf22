package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hiperdesk/backend/internal/core/domain"
)

// Seed helpers. Each inserts one row and returns its id; tests build the
// graph they need (contact -> channel -> ticket) from these.

func seedContact(t *testing.T, ctx context.Context, tenantID int64, name string, isGroup bool) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(ctx, `
		INSERT INTO contacts (tenant_id, name, is_group)
		VALUES ($1, $2, $3) RETURNING id`,
		tenantID, name, isGroup,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedQueue(t *testing.T, ctx context.Context, tenantID int64, name string) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(ctx, `
		INSERT INTO queues (tenant_id, name)
		VALUES ($1, $2) RETURNING id`,
		tenantID, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedAgent(t *testing.T, ctx context.Context, tenantID int64, name string) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(ctx, `
		INSERT INTO agents (tenant_id, name)
		VALUES ($1, $2) RETURNING id`,
		tenantID, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedChannel(t *testing.T, ctx context.Context, tenantID int64, name, completionMsg, ratingMsg string) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(ctx, `
		INSERT INTO channels (tenant_id, name, completion_message, rating_message)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		tenantID, name, completionMsg, ratingMsg,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedTicket(t *testing.T, ctx context.Context, tenantID, contactID, channelID int64, status domain.TicketStatus, agentID *int64) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(ctx, `
		INSERT INTO tickets (tenant_id, contact_id, channel_id, status, agent_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		tenantID, contactID, channelID, string(status), agentID,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func setSetting(t *testing.T, ctx context.Context, tenantID int64, key, value string) {
	t.Helper()
	_, err := testPool.Exec(ctx, `
		INSERT INTO settings (tenant_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, key) DO UPDATE SET value = EXCLUDED.value`,
		tenantID, key, value,
	)
	require.NoError(t, err)
}

func agentRef(id int64) *int64 { return &id }
