package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiperdesk/backend/internal/core/domain"
	apperrors "github.com/hiperdesk/backend/internal/core/errors"
)

func TestTicketRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	contactID := seedContact(t, ctx, 1, "Maria", false)
	channelID := seedChannel(t, ctx, 1, "principal", "", "")
	queueID := seedQueue(t, ctx, 1, "Suporte")
	agentID := seedAgent(t, ctx, 1, "Ana")
	ticketID := seedTicket(t, ctx, 1, contactID, channelID, domain.StatusOpen, agentRef(agentID))

	_, err := testPool.Exec(ctx, `UPDATE tickets SET queue_id = $1, last_message = 'oi' WHERE id = $2`, queueID, ticketID)
	require.NoError(t, err)

	ticket, err := repo.GetByID(ctx, 1, ticketID)
	require.NoError(t, err)

	assert.Equal(t, ticketID, ticket.ID)
	assert.Equal(t, domain.StatusOpen, ticket.Status)
	assert.Equal(t, queueID, *ticket.QueueID)
	assert.Equal(t, agentID, *ticket.AgentID)
	assert.Equal(t, "oi", ticket.LastMessage)
	assert.Equal(t, "Maria", ticket.Contact.Name)
	assert.False(t, ticket.Contact.IsGroup)
}

func TestTicketRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	_, err := repo.GetByID(ctx, 1, 999999)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketRepository_GetByID_WrongTenant(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	contactID := seedContact(t, ctx, 1, "Maria", false)
	channelID := seedChannel(t, ctx, 1, "principal", "", "")
	ticketID := seedTicket(t, ctx, 1, contactID, channelID, domain.StatusPending, nil)

	_, err := repo.GetByID(ctx, 2, ticketID)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketRepository_ApplyTransition(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	contactID := seedContact(t, ctx, 1, "Maria", false)
	channelID := seedChannel(t, ctx, 1, "principal", "", "")
	queueID := seedQueue(t, ctx, 1, "Suporte")
	agentID := seedAgent(t, ctx, 1, "Ana")
	ticketID := seedTicket(t, ctx, 1, contactID, channelID, domain.StatusPending, nil)

	ticket, err := repo.GetByID(ctx, 1, ticketID)
	require.NoError(t, err)

	ticket.Status = domain.StatusOpen
	ticket.QueueID = &queueID
	ticket.AgentID = &agentID
	ticket.LastMessage = "claimed"

	require.NoError(t, repo.ApplyTransition(ctx, ticket, domain.StatusPending, nil))

	stored, err := repo.GetByID(ctx, 1, ticketID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, stored.Status)
	assert.Equal(t, agentID, *stored.AgentID)
	assert.Equal(t, "claimed", stored.LastMessage)
	assert.NotNil(t, stored.UpdatedAt)
}

func TestTicketRepository_ApplyTransition_ConcurrentClaimLoses(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	contactID := seedContact(t, ctx, 1, "Maria", false)
	channelID := seedChannel(t, ctx, 1, "principal", "", "")
	agentA := seedAgent(t, ctx, 1, "Ana")
	agentB := seedAgent(t, ctx, 1, "Beatriz")
	ticketID := seedTicket(t, ctx, 1, contactID, channelID, domain.StatusPending, nil)

	// Both agents observed the ticket as (pending, unassigned).
	ticketA, err := repo.GetByID(ctx, 1, ticketID)
	require.NoError(t, err)
	ticketB, err := repo.GetByID(ctx, 1, ticketID)
	require.NoError(t, err)

	ticketA.Status = domain.StatusOpen
	ticketA.AgentID = &agentA
	require.NoError(t, repo.ApplyTransition(ctx, ticketA, domain.StatusPending, nil))

	// The second claim must fail: the row no longer matches what B saw.
	ticketB.Status = domain.StatusOpen
	ticketB.AgentID = &agentB
	err = repo.ApplyTransition(ctx, ticketB, domain.StatusPending, nil)
	assert.ErrorIs(t, err, apperrors.ErrTicketModified)

	stored, err := repo.GetByID(ctx, 1, ticketID)
	require.NoError(t, err)
	assert.Equal(t, agentA, *stored.AgentID)
}

func TestTicketRepository_ApplyTransition_PersistsAutomationClear(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	contactID := seedContact(t, ctx, 1, "Maria", false)
	channelID := seedChannel(t, ctx, 1, "principal", "", "")
	agentID := seedAgent(t, ctx, 1, "Ana")
	ticketID := seedTicket(t, ctx, 1, contactID, channelID, domain.StatusOpen, agentRef(agentID))

	_, err := testPool.Exec(ctx, `
		UPDATE tickets SET use_integration = TRUE, bot_active = TRUE, prompt_id = 7
		WHERE id = $1`, ticketID)
	require.NoError(t, err)

	ticket, err := repo.GetByID(ctx, 1, ticketID)
	require.NoError(t, err)
	require.True(t, ticket.Automation.UseIntegration)

	ticket.Status = domain.StatusClosed
	ticket.Automation.Clear()
	require.NoError(t, repo.ApplyTransition(ctx, ticket, domain.StatusOpen, &agentID))

	stored, err := repo.GetByID(ctx, 1, ticketID)
	require.NoError(t, err)
	assert.False(t, stored.Automation.UseIntegration)
	assert.False(t, stored.Automation.BotActive)
	assert.Nil(t, stored.Automation.PromptID)
}
