package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiperdesk/backend/internal/core/domain"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// TrackingRepository persists per-episode lifecycle timestamps.
type TrackingRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TrackingRepository = (*TrackingRepository)(nil)

// NewTrackingRepository creates a new tracking repository.
func NewTrackingRepository(pool *pgxpool.Pool) *TrackingRepository {
	return &TrackingRepository{pool: pool}
}

// FindOrCreate returns the ticket's open tracking record, creating one
// when none exists or the previous episode already finished.
func (r *TrackingRepository) FindOrCreate(ctx context.Context, tenantID, ticketID, channelID int64) (*domain.TicketTracking, error) {
	db := GetDBTX(ctx, r.pool)

	row := db.QueryRow(ctx, `
		SELECT id, tenant_id, ticket_id, channel_id, agent_id,
		       queued_at, started_at, finished_at, rating_at, rated
		FROM ticket_trackings
		WHERE ticket_id = $1 AND tenant_id = $2 AND finished_at IS NULL
		ORDER BY id DESC
		LIMIT 1`,
		ticketID, tenantID,
	)

	tracking, err := scanTracking(row)
	if err == nil {
		return tracking, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	row = db.QueryRow(ctx, `
		INSERT INTO ticket_trackings (tenant_id, ticket_id, channel_id)
		VALUES ($1, $2, $3)
		RETURNING id, tenant_id, ticket_id, channel_id, agent_id,
		          queued_at, started_at, finished_at, rating_at, rated`,
		tenantID, ticketID, channelID,
	)
	return scanTracking(row)
}

// Save writes the mutable episode fields back.
func (r *TrackingRepository) Save(ctx context.Context, tracking *domain.TicketTracking) error {
	_, err := GetDBTX(ctx, r.pool).Exec(ctx, `
		UPDATE ticket_trackings SET
			channel_id = $1,
			agent_id = $2,
			queued_at = $3,
			started_at = $4,
			finished_at = $5,
			rating_at = $6,
			rated = $7,
			updated_at = now()
		WHERE id = $8 AND tenant_id = $9`,
		tracking.ChannelID,
		tracking.AgentID,
		tracking.QueuedAt,
		tracking.StartedAt,
		tracking.FinishedAt,
		tracking.RatingAt,
		tracking.Rated,
		tracking.ID,
		tracking.TenantID,
	)
	return err
}

func scanTracking(row pgx.Row) (*domain.TicketTracking, error) {
	var tt domain.TicketTracking
	err := row.Scan(
		&tt.ID, &tt.TenantID, &tt.TicketID, &tt.ChannelID, &tt.AgentID,
		&tt.QueuedAt, &tt.StartedAt, &tt.FinishedAt, &tt.RatingAt, &tt.Rated,
	)
	if err != nil {
		return nil, err
	}
	return &tt, nil
}
