package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiperdesk/backend/internal/core/domain"
)

func TestTrackingRepository_FindOrCreate_CreatesAndReuses(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingRepository(testPool)

	contactID := seedContact(t, ctx, 1, "Maria", false)
	channelID := seedChannel(t, ctx, 1, "principal", "", "")
	ticketID := seedTicket(t, ctx, 1, contactID, channelID, domain.StatusPending, nil)

	first, err := repo.FindOrCreate(ctx, 1, ticketID, channelID)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Nil(t, first.FinishedAt)

	// The open episode is reused, not duplicated.
	again, err := repo.FindOrCreate(ctx, 1, ticketID, channelID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestTrackingRepository_FindOrCreate_NewEpisodeAfterFinish(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingRepository(testPool)

	contactID := seedContact(t, ctx, 1, "Maria", false)
	channelID := seedChannel(t, ctx, 1, "principal", "", "")
	agentID := seedAgent(t, ctx, 1, "Ana")
	ticketID := seedTicket(t, ctx, 1, contactID, channelID, domain.StatusOpen, agentRef(agentID))

	first, err := repo.FindOrCreate(ctx, 1, ticketID, channelID)
	require.NoError(t, err)

	first.Finish(channelID, &agentID, time.Now().UTC())
	require.NoError(t, repo.Save(ctx, first))

	second, err := repo.FindOrCreate(ctx, 1, ticketID, channelID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Nil(t, second.FinishedAt)
}

func TestTrackingRepository_Save_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingRepository(testPool)

	contactID := seedContact(t, ctx, 1, "Maria", false)
	channelID := seedChannel(t, ctx, 1, "principal", "", "")
	agentID := seedAgent(t, ctx, 1, "Ana")
	ticketID := seedTicket(t, ctx, 1, contactID, channelID, domain.StatusOpen, agentRef(agentID))

	tracking, err := repo.FindOrCreate(ctx, 1, ticketID, channelID)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tracking.StartEpisode(channelID, &agentID, now)
	tracking.QueuedAt = &now
	tracking.RatingAt = &now
	tracking.Rated = true
	require.NoError(t, repo.Save(ctx, tracking))

	stored, err := repo.FindOrCreate(ctx, 1, ticketID, channelID)
	require.NoError(t, err)
	assert.Equal(t, tracking.ID, stored.ID)
	assert.Equal(t, agentID, *stored.AgentID)
	assert.WithinDuration(t, now, *stored.StartedAt, time.Second)
	assert.WithinDuration(t, now, *stored.RatingAt, time.Second)
	assert.True(t, stored.Rated)
}
