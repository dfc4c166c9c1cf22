package services

import (
	"context"

	"github.com/hiperdesk/backend/internal/core/domain"
	apperrors "github.com/hiperdesk/backend/internal/core/errors"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// ClaimGuard arbitrates concurrent claim attempts on an open ticket. It
// is a logical check on the observed (status, agent) pair; the repository
// re-asserts the same pair at commit time as a compare-and-swap, so a
// race between the check and the write still cannot produce a lost
// update.
type ClaimGuard struct {
	agents ports.AgentDirectory
}

// NewClaimGuard creates a claim guard backed by the agent directory.
func NewClaimGuard(agents ports.AgentDirectory) *ClaimGuard {
	return &ClaimGuard{agents: agents}
}

// Check rejects a transition iff it targets status open with a requested
// agent while the ticket is already open and held by a different agent.
// On rejection it returns a TicketClaimedError naming the current holder.
// It has no side effects.
func (g *ClaimGuard) Check(ctx context.Context, ticket *domain.Ticket, requestedStatus domain.TicketStatus, requestedAgentID *int64) error {
	if requestedStatus != domain.StatusOpen || requestedAgentID == nil {
		return nil
	}
	if ticket.Status != domain.StatusOpen || ticket.AgentID == nil {
		return nil
	}
	if *ticket.AgentID == *requestedAgentID {
		return nil
	}

	holder := &apperrors.TicketClaimedError{AgentID: *ticket.AgentID, AgentName: "Atendente"}
	if agent, err := g.agents.GetAgent(ctx, ticket.TenantID, *ticket.AgentID); err == nil {
		holder.AgentName = agent.Name
	}
	return holder
}
