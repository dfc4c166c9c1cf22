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

// TicketRepository is the secondary adapter for ticket persistence.
type TicketRepository struct {
	pool *pgxpool.Pool
}

// Ensure TicketRepository implements the ports.TicketRepository interface.
var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `
	t.id, t.tenant_id, t.status, t.queue_id, t.agent_id, t.channel_id,
	t.chatbot, t.queue_option_id, t.is_group, t.last_message,
	t.prompt_id, t.integration_id, t.use_integration, t.bot_active, t.bot_session_id,
	t.created_at, t.updated_at,
	c.id, c.name, c.is_group, c.disable_bot`

// GetByID retrieves a single ticket with its contact snapshot, scoped to
// the tenant.
func (r *TicketRepository) GetByID(ctx context.Context, tenantID, ticketID int64) (*domain.Ticket, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		SELECT`+ticketColumns+`
		FROM tickets t
		JOIN contacts c ON c.id = t.contact_id
		WHERE t.id = $1 AND t.tenant_id = $2`,
		ticketID, tenantID,
	)

	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// ApplyTransition commits the transition fields with a compare-and-swap on
// the previously observed (status, agent) pair. Zero updated rows means a
// concurrent request won the race.
func (r *TicketRepository) ApplyTransition(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus, expectedAgentID *int64) error {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, `
		UPDATE tickets SET
			status = $1,
			queue_id = $2,
			agent_id = $3,
			channel_id = $4,
			chatbot = $5,
			queue_option_id = $6,
			last_message = $7,
			prompt_id = $8,
			integration_id = $9,
			use_integration = $10,
			bot_active = $11,
			bot_session_id = $12,
			updated_at = now()
		WHERE id = $13 AND tenant_id = $14
		  AND status = $15
		  AND agent_id IS NOT DISTINCT FROM $16`,
		string(ticket.Status),
		ticket.QueueID,
		ticket.AgentID,
		ticket.ChannelID,
		ticket.Chatbot,
		ticket.QueueOptionID,
		ticket.LastMessage,
		ticket.Automation.PromptID,
		ticket.Automation.IntegrationID,
		ticket.Automation.UseIntegration,
		ticket.Automation.BotActive,
		ticket.Automation.BotSessionID,
		ticket.ID,
		ticket.TenantID,
		string(expectedStatus),
		expectedAgentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTicketModified
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.TenantID, &t.Status, &t.QueueID, &t.AgentID, &t.ChannelID,
		&t.Chatbot, &t.QueueOptionID, &t.IsGroup, &t.LastMessage,
		&t.Automation.PromptID, &t.Automation.IntegrationID, &t.Automation.UseIntegration,
		&t.Automation.BotActive, &t.Automation.BotSessionID,
		&t.CreatedAt, &t.UpdatedAt,
		&t.Contact.ID, &t.Contact.Name, &t.Contact.IsGroup, &t.Contact.DisableBot,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
