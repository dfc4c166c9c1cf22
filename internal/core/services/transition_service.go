package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hiperdesk/backend/internal/core/domain"
	apperrors "github.com/hiperdesk/backend/internal/core/errors"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// TransitionService is the ticket state machine. It validates a
// requested transition, arbitrates the claim, commits the ticket fields,
// drives the tracking record and the messaging engine, and fans the
// delta out to real-time subscribers.
//
// Side effects (automated messages, notifications) are best-effort: a
// collaborator failure is reported to the error sink and the transition
// continues. Only persistence failures on the ticket or tracking record
// abort the operation.
type TransitionService struct {
	tickets    ports.TicketRepository
	trackings  ports.TrackingRepository
	transactor ports.Transactor
	guard      *ClaimGuard
	messaging *MessagingEngine
	fanout    *NotificationFanout
	conflicts ports.ConflictChecker
	reads     ports.ReadMarker
	reporter  ports.ErrorReporter
	logger    *slog.Logger
}

var _ ports.TransitionService = (*TransitionService)(nil)

// NewTransitionService wires the state machine.
func NewTransitionService(
	tickets ports.TicketRepository,
	trackings ports.TrackingRepository,
	transactor ports.Transactor,
	guard *ClaimGuard,
	messaging *MessagingEngine,
	fanout *NotificationFanout,
	conflicts ports.ConflictChecker,
	reads ports.ReadMarker,
	reporter ports.ErrorReporter,
	logger *slog.Logger,
) *TransitionService {
	return &TransitionService{
		tickets:    tickets,
		trackings:  trackings,
		transactor: transactor,
		guard:      guard,
		messaging:  messaging,
		fanout:     fanout,
		conflicts:  conflicts,
		reads:      reads,
		reporter:   reporter,
		logger:     logger.With("component", "transition_service"),
	}
}

// Transition runs one lifecycle transition end to end.
func (s *TransitionService) Transition(ctx context.Context, params ports.TransitionParams) (*ports.TransitionResult, error) {
	if !domain.ValidStatus(params.Status) {
		return nil, apperrors.NewBadRequestError(apperrors.ErrInvalidStatus,
			fmt.Sprintf("unknown ticket status %q", params.Status))
	}

	ticket, err := s.tickets.GetByID(ctx, params.TenantID, params.TicketID)
	if err != nil {
		return nil, err
	}

	tracking, err := s.trackings.FindOrCreate(ctx, ticket.TenantID, ticket.ID, ticket.ChannelID)
	if err != nil {
		return nil, err
	}

	if err := s.reads.MarkAllMessagesRead(ctx, ticket); err != nil {
		s.report(ctx, fmt.Errorf("mark messages read for ticket %d: %w", ticket.ID, err))
	}

	oldStatus := ticket.Status
	oldAgentID := copyID(ticket.AgentID)
	oldQueueID := copyID(ticket.QueueID)

	if err := s.guard.Check(ctx, ticket, params.Status, params.AgentID); err != nil {
		return nil, err
	}

	channelID := ticket.ChannelID
	channelChanged := false
	if params.ChannelID != nil && *params.ChannelID != ticket.ChannelID {
		channelID = *params.ChannelID
		channelChanged = true
	}

	chatbot := params.Chatbot
	queueOptionID := copyID(params.QueueOptionID)

	// Reopening a closed ticket or rebinding the transport channel must
	// not leave a stale chatbot position, and the contact may not end up
	// with two live tickets on one channel.
	if oldStatus == domain.StatusClosed || channelChanged {
		if err := s.conflicts.EnsureNoOtherOpenTicket(ctx, ticket.TenantID, ticket.Contact.ID, channelID, ticket.ID); err != nil {
			return nil, err
		}
		chatbot = false
		queueOptionID = nil
	}

	now := time.Now().UTC()

	if params.Status == domain.StatusClosed {
		shortCircuit, err := s.runClosingSequence(ctx, ticket, tracking, channelID, now)
		if err != nil {
			return nil, err
		}
		if shortCircuit {
			// The ticket intentionally keeps its prior status until the
			// contact answers the survey.
			return &ports.TransitionResult{
				Ticket:     ticket,
				OldStatus:  oldStatus,
				OldAgentID: oldAgentID,
			}, nil
		}
	}

	if params.QueueID != nil {
		tracking.QueuedAt = &now
	}

	// Sent before the commit so the previous queue/agent are still the
	// stored ones.
	if err := s.messaging.SendTransferNotice(ctx, ticket, oldQueueID, oldAgentID, params.QueueID, params.AgentID); err != nil {
		s.report(ctx, err)
	}

	ticket.Status = params.Status
	ticket.QueueID = copyID(params.QueueID)
	ticket.AgentID = copyID(params.AgentID)
	ticket.ChannelID = channelID
	ticket.Chatbot = chatbot
	ticket.QueueOptionID = queueOptionID
	if params.LastMessage != nil {
		ticket.LastMessage = *params.LastMessage
	}

	// The conditional commit, the reload and the tracking write land
	// atomically; losing the race rolls all three back.
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.tickets.ApplyTransition(txCtx, ticket, oldStatus, oldAgentID); err != nil {
			return err
		}

		// Reload to pick up server-computed fields.
		reloaded, err := s.tickets.GetByID(txCtx, params.TenantID, params.TicketID)
		if err != nil {
			return err
		}
		ticket = reloaded

		switch ticket.Status {
		case domain.StatusPending:
			tracking.ResetForPending(channelID, now)

		case domain.StatusOpen:
			tracking.StartEpisode(channelID, ticket.AgentID, now)
		}

		return s.trackings.Save(txCtx, tracking)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketModified) {
			return nil, apperrors.NewConflictError(err, "Ticket was modified by another request")
		}
		return nil, err
	}

	if ticket.Status == domain.StatusOpen {
		if err := s.messaging.SendGreeting(ctx, ticket, oldStatus); err != nil {
			s.report(ctx, err)
		}
	}

	if ticket.Status != oldStatus || !sameID(ticket.AgentID, oldAgentID) {
		s.fanout.PublishRemoval(ticket, oldStatus, oldAgentID)
	}
	s.fanout.PublishUpdate(ticket, oldAgentID)

	s.logger.Info("ticket transitioned",
		"ticket_id", ticket.ID,
		"tenant_id", ticket.TenantID,
		"old_status", oldStatus,
		"new_status", ticket.Status,
	)

	return &ports.TransitionResult{
		Ticket:     ticket,
		OldStatus:  oldStatus,
		OldAgentID: oldAgentID,
	}, nil
}

// runClosingSequence handles a transition into closed. It returns true
// when the rating survey was sent and the transition must short-circuit
// without committing the remaining field updates.
func (s *TransitionService) runClosingSequence(ctx context.Context, ticket *domain.Ticket, tracking *domain.TicketTracking, channelID int64, now time.Time) (bool, error) {
	wantsRating, err := s.messaging.ShouldRequestRating(ctx, ticket, tracking)
	if err != nil {
		s.report(ctx, err)
		wantsRating = false
	}

	if wantsRating {
		if err := s.messaging.SendRatingSurvey(ctx, ticket); err != nil {
			// The survey could not go out; close normally instead of
			// leaving the ticket stuck waiting for a reply.
			s.report(ctx, err)
		} else {
			tracking.RatingAt = &now
			if err := s.trackings.Save(ctx, tracking); err != nil {
				return false, err
			}
			s.fanout.PublishRatingRemoval(ticket)
			s.logger.Info("rating survey sent, close deferred",
				"ticket_id", ticket.ID,
				"tenant_id", ticket.TenantID,
			)
			return true, nil
		}
	}

	tracking.Finish(channelID, ticket.AgentID, now)

	if err := s.messaging.SendCompletion(ctx, ticket); err != nil {
		s.report(ctx, err)
	}

	// Handoff-to-automation state must not survive closure.
	ticket.Automation.Clear()

	return false, nil
}

func (s *TransitionService) report(ctx context.Context, err error) {
	s.reporter.Report(ctx, err)
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
