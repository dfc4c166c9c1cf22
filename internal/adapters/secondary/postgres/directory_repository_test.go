package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hiperdesk/backend/internal/core/errors"
)

func TestDirectoryRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	repo := NewDirectoryRepository(testPool)

	queueID := seedQueue(t, ctx, 1, "Financeiro")
	agentID := seedAgent(t, ctx, 1, "Beatriz")
	channelID := seedChannel(t, ctx, 1, "principal", "Até logo!", "Conte como fomos:")

	queue, err := repo.GetQueue(ctx, 1, queueID)
	require.NoError(t, err)
	assert.Equal(t, "Financeiro", queue.Name)

	agent, err := repo.GetAgent(ctx, 1, agentID)
	require.NoError(t, err)
	assert.Equal(t, "Beatriz", agent.Name)

	channel, err := repo.GetChannel(ctx, 1, channelID)
	require.NoError(t, err)
	assert.Equal(t, "Até logo!", channel.CompletionMessage)
	assert.Equal(t, "Conte como fomos:", channel.RatingMessage)
}

func TestDirectoryRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewDirectoryRepository(testPool)

	_, err := repo.GetQueue(ctx, 1, 999999)
	assert.ErrorIs(t, err, apperrors.ErrQueueNotFound)

	_, err = repo.GetAgent(ctx, 1, 999999)
	assert.ErrorIs(t, err, apperrors.ErrAgentNotFound)

	_, err = repo.GetChannel(ctx, 1, 999999)
	assert.ErrorIs(t, err, apperrors.ErrChannelNotFound)
}
