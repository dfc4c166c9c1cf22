package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiperdesk/backend/internal/core/domain"
	apperrors "github.com/hiperdesk/backend/internal/core/errors"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// DirectoryRepository resolves queue, agent and channel records. These are
// read-only lookups; the lifecycle engine never mutates them.
type DirectoryRepository struct {
	pool *pgxpool.Pool
}

var (
	_ ports.QueueDirectory   = (*DirectoryRepository)(nil)
	_ ports.AgentDirectory   = (*DirectoryRepository)(nil)
	_ ports.ChannelDirectory = (*DirectoryRepository)(nil)
)

// NewDirectoryRepository creates a new directory repository.
func NewDirectoryRepository(pool *pgxpool.Pool) *DirectoryRepository {
	return &DirectoryRepository{pool: pool}
}

// GetQueue resolves a queue by id within the tenant.
func (r *DirectoryRepository) GetQueue(ctx context.Context, tenantID, queueID int64) (*domain.QueueInfo, error) {
	var q domain.QueueInfo
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name FROM queues
		WHERE id = $1 AND tenant_id = $2`,
		queueID, tenantID,
	).Scan(&q.ID, &q.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrQueueNotFound
		}
		return nil, err
	}
	return &q, nil
}

// GetAgent resolves an agent by id within the tenant.
func (r *DirectoryRepository) GetAgent(ctx context.Context, tenantID, agentID int64) (*domain.AgentInfo, error) {
	var a domain.AgentInfo
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name FROM agents
		WHERE id = $1 AND tenant_id = $2`,
		agentID, tenantID,
	).Scan(&a.ID, &a.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAgentNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetChannel resolves a transport channel by id within the tenant.
func (r *DirectoryRepository) GetChannel(ctx context.Context, tenantID, channelID int64) (*domain.Channel, error) {
	var c domain.Channel
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		SELECT id, tenant_id, name, completion_message, rating_message
		FROM channels
		WHERE id = $1 AND tenant_id = $2`,
		channelID, tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.CompletionMessage, &c.RatingMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrChannelNotFound
		}
		return nil, err
	}
	return &c, nil
}
