package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiperdesk/backend/internal/core/domain"
	apperrors "github.com/hiperdesk/backend/internal/core/errors"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// MessageRepository covers the conversation-history concerns of the
// lifecycle engine: registering dispatched automated messages, marking
// inbound messages read, and the one-live-ticket-per-contact check.
type MessageRepository struct {
	pool *pgxpool.Pool
}

var (
	_ ports.HistoryRegistrar = (*MessageRepository)(nil)
	_ ports.ReadMarker       = (*MessageRepository)(nil)
	_ ports.ConflictChecker  = (*MessageRepository)(nil)
)

// NewMessageRepository creates a new message repository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// RegisterOutboundMessage records a dispatched automated message in the
// ticket's conversation history.
func (r *MessageRepository) RegisterOutboundMessage(ctx context.Context, msg *domain.SentMessage, ticket *domain.Ticket) error {
	_, err := GetDBTX(ctx, r.pool).Exec(ctx, `
		INSERT INTO messages (
			tenant_id, ticket_id, contact_id, channel_id,
			external_id, body, from_me, read, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, TRUE, TRUE, $7)`,
		ticket.TenantID,
		ticket.ID,
		ticket.Contact.ID,
		msg.ChannelID,
		msg.ExternalID,
		msg.Body,
		msg.SentAt,
	)
	return err
}

// MarkAllMessagesRead marks every inbound message of the ticket as read
// and clears the ticket's unread counter.
func (r *MessageRepository) MarkAllMessagesRead(ctx context.Context, ticket *domain.Ticket) error {
	db := GetDBTX(ctx, r.pool)

	if _, err := db.Exec(ctx, `
		UPDATE messages SET read = TRUE
		WHERE ticket_id = $1 AND tenant_id = $2 AND read = FALSE`,
		ticket.ID, ticket.TenantID,
	); err != nil {
		return err
	}

	_, err := db.Exec(ctx, `
		UPDATE tickets SET unread_messages = 0
		WHERE id = $1 AND tenant_id = $2`,
		ticket.ID, ticket.TenantID,
	)
	return err
}

// EnsureNoOtherOpenTicket rejects the transition when the contact already
// has another live (pending or open) ticket on the same channel.
func (r *MessageRepository) EnsureNoOtherOpenTicket(ctx context.Context, tenantID, contactID, channelID, ticketID int64) error {
	var exists bool
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tickets
			WHERE tenant_id = $1
			  AND contact_id = $2
			  AND channel_id = $3
			  AND id <> $4
			  AND status IN ('pending', 'open')
		)`,
		tenantID, contactID, channelID, ticketID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflictError(apperrors.ErrContactHasOpenTicket,
			"Contact already has an open ticket on this channel")
	}
	return nil
}
