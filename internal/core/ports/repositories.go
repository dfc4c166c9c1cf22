package ports

import (
	"context"

	"github.com/hiperdesk/backend/internal/core/domain"
)

// TicketRepository is the persistence port for tickets.
type TicketRepository interface {
	// GetByID loads a ticket with its contact snapshot and automation
	// session, scoped to the tenant.
	GetByID(ctx context.Context, tenantID, ticketID int64) (*domain.Ticket, error)

	// ApplyTransition commits the ticket's mutable transition fields
	// (status, queue, agent, channel, chatbot, queue option, last message,
	// automation session) conditionally: the row must still carry
	// expectedStatus and expectedAgentID, otherwise no row is updated and
	// apperrors.ErrTicketModified is returned. This is the compare-and-swap
	// that makes the claim check safe without a row lock.
	ApplyTransition(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus, expectedAgentID *int64) error
}

// Transactor runs a function with every repository call made through the
// callback's context bound to a single database transaction. An error
// from the callback rolls the transaction back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TrackingRepository is the persistence port for ticket tracking records.
type TrackingRepository interface {
	// FindOrCreate returns the open tracking record for the ticket,
	// creating one when the previous episode has finished or none exists.
	FindOrCreate(ctx context.Context, tenantID, ticketID, channelID int64) (*domain.TicketTracking, error)

	Save(ctx context.Context, tracking *domain.TicketTracking) error
}

// SettingStore reads per-tenant configuration. A missing key yields an
// empty value and no error.
type SettingStore interface {
	GetSetting(ctx context.Context, tenantID int64, key string) (string, error)
}

// Tenant setting keys consumed by the lifecycle engine.
const (
	SettingUserRating              = "userRating"
	SettingSendTransferMsg         = "sendMsgTransfTicket"
	SettingTransferMsgTemplate     = "sendMsgTransfTicketMessage"
	SettingSendGreetingAccepted    = "sendGreetingAccepted"
	SettingGreetingAcceptedMessage = "sendGreetingAcceptedMessage"
)

// SettingEnabled is the value that switches a boolean setting on.
const SettingEnabled = "enabled"

// QueueDirectory resolves queue display names.
type QueueDirectory interface {
	GetQueue(ctx context.Context, tenantID, queueID int64) (*domain.QueueInfo, error)
}

// AgentDirectory resolves agent display names.
type AgentDirectory interface {
	GetAgent(ctx context.Context, tenantID, agentID int64) (*domain.AgentInfo, error)
}

// ChannelDirectory resolves transport channel records, including the
// per-channel completion and rating message templates.
type ChannelDirectory interface {
	GetChannel(ctx context.Context, tenantID, channelID int64) (*domain.Channel, error)
}

// MessageTransport dispatches an automated message to the ticket's
// contact over the ticket's transport channel.
type MessageTransport interface {
	SendMessage(ctx context.Context, ticket *domain.Ticket, body string) (*domain.SentMessage, error)
}

// HistoryRegistrar records a dispatched automated message into the
// ticket's conversation history.
type HistoryRegistrar interface {
	RegisterOutboundMessage(ctx context.Context, msg *domain.SentMessage, ticket *domain.Ticket) error
}

// ConflictChecker guards against a contact holding two live tickets on
// the same transport channel.
type ConflictChecker interface {
	EnsureNoOtherOpenTicket(ctx context.Context, tenantID, contactID, channelID, ticketID int64) error
}

// ReadMarker marks all of a ticket's inbound messages as read.
type ReadMarker interface {
	MarkAllMessagesRead(ctx context.Context, ticket *domain.Ticket) error
}

// Broadcaster delivers a ticket event to every subscriber of the given
// topics. Delivery is fire-and-forget; implementations must preserve the
// order in which Publish is called.
type Broadcaster interface {
	Publish(event domain.TicketEvent, topics []string) error
}

// ErrorReporter is the sink for collaborator failures that must not fail
// the transition.
type ErrorReporter interface {
	Report(ctx context.Context, err error)
}
