package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hiperdesk/backend/internal/core/domain"
	apperrors "github.com/hiperdesk/backend/internal/core/errors"
	"github.com/hiperdesk/backend/internal/core/mocks"
	"github.com/hiperdesk/backend/internal/core/services"
)

func TestClaimGuard_Check(t *testing.T) {
	tests := []struct {
		name            string
		ticketStatus    domain.TicketStatus
		ticketAgent     *int64
		requestedStatus domain.TicketStatus
		requestedAgent  *int64
		wantConflict    bool
	}{
		{
			name:            "different agent claims open ticket",
			ticketStatus:    domain.StatusOpen,
			ticketAgent:     int64Ptr(10),
			requestedStatus: domain.StatusOpen,
			requestedAgent:  int64Ptr(11),
			wantConflict:    true,
		},
		{
			name:            "same agent re-claims",
			ticketStatus:    domain.StatusOpen,
			ticketAgent:     int64Ptr(10),
			requestedStatus: domain.StatusOpen,
			requestedAgent:  int64Ptr(10),
		},
		{
			name:            "pending ticket is free to claim",
			ticketStatus:    domain.StatusPending,
			requestedStatus: domain.StatusOpen,
			requestedAgent:  int64Ptr(11),
		},
		{
			name:            "open but unassigned ticket is free to claim",
			ticketStatus:    domain.StatusOpen,
			requestedStatus: domain.StatusOpen,
			requestedAgent:  int64Ptr(11),
		},
		{
			name:            "closing never conflicts",
			ticketStatus:    domain.StatusOpen,
			ticketAgent:     int64Ptr(10),
			requestedStatus: domain.StatusClosed,
			requestedAgent:  int64Ptr(11),
		},
		{
			name:            "request without an agent never conflicts",
			ticketStatus:    domain.StatusOpen,
			ticketAgent:     int64Ptr(10),
			requestedStatus: domain.StatusOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agents := mocks.NewMockAgentDirectory()
			if tt.wantConflict {
				agents.On("GetAgent", mock.Anything, int64(1), *tt.ticketAgent).
					Return(&domain.AgentInfo{ID: *tt.ticketAgent, Name: "Carlos"}, nil)
			}

			guard := services.NewClaimGuard(agents)
			ticket := &domain.Ticket{
				ID:       42,
				TenantID: 1,
				Status:   tt.ticketStatus,
				AgentID:  tt.ticketAgent,
			}

			err := guard.Check(context.Background(), ticket, tt.requestedStatus, tt.requestedAgent)

			if !tt.wantConflict {
				assert.NoError(t, err)
				return
			}

			var claimed *apperrors.TicketClaimedError
			require.ErrorAs(t, err, &claimed)
			assert.Equal(t, *tt.ticketAgent, claimed.AgentID)
			assert.Equal(t, "Carlos", claimed.AgentName)
		})
	}
}

func TestClaimGuard_FallsBackWhenHolderLookupFails(t *testing.T) {
	agents := mocks.NewMockAgentDirectory()
	agents.On("GetAgent", mock.Anything, int64(1), int64(10)).
		Return(nil, errors.New("directory unavailable"))

	guard := services.NewClaimGuard(agents)
	ticket := &domain.Ticket{ID: 42, TenantID: 1, Status: domain.StatusOpen, AgentID: int64Ptr(10)}

	err := guard.Check(context.Background(), ticket, domain.StatusOpen, int64Ptr(11))

	var claimed *apperrors.TicketClaimedError
	require.ErrorAs(t, err, &claimed)
	assert.Equal(t, int64(10), claimed.AgentID)
	assert.Equal(t, "Atendente", claimed.AgentName)
}
