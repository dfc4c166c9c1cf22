package ports

import (
	"context"

	"github.com/hiperdesk/backend/internal/core/domain"
)

// TransitionParams is the input to a ticket lifecycle transition.
type TransitionParams struct {
	TenantID int64
	TicketID int64

	Status        domain.TicketStatus
	QueueID       *int64
	AgentID       *int64
	ChannelID     *int64
	Chatbot       bool
	QueueOptionID *int64
	// LastMessage overwrites the stored snippet only when non-nil.
	LastMessage *string
}

// TransitionResult reports the outcome of a transition. OldStatus and
// OldAgentID let the caller shape its response; they are not re-derived
// from the ticket because the rating short-circuit returns the ticket in
// its prior state.
type TransitionResult struct {
	Ticket     *domain.Ticket
	OldStatus  domain.TicketStatus
	OldAgentID *int64
}

// TransitionService is the single operation this core exposes.
type TransitionService interface {
	Transition(ctx context.Context, params TransitionParams) (*TransitionResult, error)
}
