package services

import (
	"log/slog"

	"github.com/hiperdesk/backend/internal/core/domain"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// NotificationFanout multicasts ticket deltas to every real-time topic a
// transition touches. When a transition both removes a ticket from its
// old views and updates it in the new ones, the removal is always
// published strictly first so no subscriber renders the ticket in two
// conflicting status views.
type NotificationFanout struct {
	broadcasters []ports.Broadcaster
	logger       *slog.Logger
}

// NewNotificationFanout creates the fanout. Events are published to each
// broadcaster in order; typically the in-process hub plus an optional
// cross-node bridge.
func NewNotificationFanout(logger *slog.Logger, broadcasters ...ports.Broadcaster) *NotificationFanout {
	return &NotificationFanout{
		broadcasters: broadcasters,
		logger:       logger.With("component", "notification_fanout"),
	}
}

// PublishRemoval tells the old views to drop the ticket. The queue topic
// is addressed with the ticket's current (already committed) queue, which
// is how list views key their subscriptions.
func (f *NotificationFanout) PublishRemoval(ticket *domain.Ticket, oldStatus domain.TicketStatus, oldAgentID *int64) {
	topics := []string{
		domain.TenantStatusTopic(ticket.TenantID, oldStatus),
	}
	if ticket.QueueID != nil {
		topics = append(topics, domain.QueueStatusTopic(*ticket.QueueID, oldStatus))
	}
	if oldAgentID != nil {
		topics = append(topics, domain.AgentTopic(*oldAgentID))
	}

	f.publish(domain.TicketEvent{
		TenantID: ticket.TenantID,
		Action:   domain.ActionDelete,
		TicketID: ticket.ID,
	}, topics)
}

// PublishRatingRemoval drops the ticket from the open views after the
// rating short-circuit: the ticket stays in its prior status but must
// leave the agent's working set until the contact replies.
func (f *NotificationFanout) PublishRatingRemoval(ticket *domain.Ticket) {
	topics := []string{
		domain.TenantStatusTopic(ticket.TenantID, domain.StatusOpen),
	}
	if ticket.QueueID != nil {
		topics = append(topics, domain.QueueStatusTopic(*ticket.QueueID, domain.StatusOpen))
	}
	topics = append(topics, domain.TicketTopic(ticket.ID))

	f.publish(domain.TicketEvent{
		TenantID: ticket.TenantID,
		Action:   domain.ActionDelete,
		TicketID: ticket.ID,
	}, topics)
}

// PublishUpdate pushes the committed ticket to every view that renders
// its new state, plus both the old and the new agent's personal feeds.
func (f *NotificationFanout) PublishUpdate(ticket *domain.Ticket, oldAgentID *int64) {
	topics := []string{
		domain.TenantStatusTopic(ticket.TenantID, ticket.Status),
		domain.TenantNotificationTopic(ticket.TenantID),
	}
	if ticket.QueueID != nil {
		topics = append(topics,
			domain.QueueStatusTopic(*ticket.QueueID, ticket.Status),
			domain.QueueNotificationTopic(*ticket.QueueID),
		)
	}
	topics = append(topics, domain.TicketTopic(ticket.ID))
	if ticket.AgentID != nil {
		topics = append(topics, domain.AgentTopic(*ticket.AgentID))
	}
	if oldAgentID != nil && (ticket.AgentID == nil || *oldAgentID != *ticket.AgentID) {
		topics = append(topics, domain.AgentTopic(*oldAgentID))
	}

	f.publish(domain.TicketEvent{
		TenantID: ticket.TenantID,
		Action:   domain.ActionUpdate,
		TicketID: ticket.ID,
		Ticket:   ticket,
	}, topics)
}

func (f *NotificationFanout) publish(event domain.TicketEvent, topics []string) {
	for _, b := range f.broadcasters {
		if err := b.Publish(event, topics); err != nil {
			f.logger.Warn("broadcast failed",
				"action", event.Action,
				"ticket_id", event.TicketID,
				"error", err,
			)
		}
	}
}
