package redisbridge

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiperdesk/backend/internal/core/domain"
)

type recordingBroadcaster struct {
	events []domain.TicketEvent
	topics [][]string
}

func (r *recordingBroadcaster) Publish(event domain.TicketEvent, topics []string) error {
	r.events = append(r.events, event)
	r.topics = append(r.topics, topics)
	return nil
}

func TestBridge_ReplaySkipsOwnEvents(t *testing.T) {
	local := &recordingBroadcaster{}
	bridge := &Bridge{
		local:    local,
		originID: "node-a",
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	own, err := json.Marshal(envelope{
		OriginID: "node-a",
		Event:    domain.TicketEvent{TenantID: 1, Action: domain.ActionUpdate, TicketID: 42},
		Topics:   []string{"tenant-1-open"},
	})
	require.NoError(t, err)
	bridge.replay(string(own))
	assert.Empty(t, local.events)

	remote, err := json.Marshal(envelope{
		OriginID: "node-b",
		Event:    domain.TicketEvent{TenantID: 1, Action: domain.ActionDelete, TicketID: 42},
		Topics:   []string{"tenant-1-open", "ticket-42"},
	})
	require.NoError(t, err)
	bridge.replay(string(remote))

	require.Len(t, local.events, 1)
	assert.Equal(t, domain.ActionDelete, local.events[0].Action)
	assert.Equal(t, []string{"tenant-1-open", "ticket-42"}, local.topics[0])
}

func TestBridge_ReplayDropsMalformedPayload(t *testing.T) {
	local := &recordingBroadcaster{}
	bridge := &Bridge{
		local:    local,
		originID: "node-a",
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	bridge.replay("not json")
	assert.Empty(t, local.events)
}
