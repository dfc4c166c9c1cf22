package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiperdesk/backend/internal/core/domain"
	"github.com/hiperdesk/backend/internal/core/services"
)

func fanoutTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:       42,
		TenantID: 1,
		Status:   domain.StatusOpen,
		QueueID:  int64Ptr(3),
		AgentID:  int64Ptr(11),
	}
}

func TestPublishUpdate_Topics(t *testing.T) {
	rec := &recordingBroadcaster{}
	fanout := services.NewNotificationFanout(discardLogger(), rec)

	fanout.PublishUpdate(fanoutTicket(), int64Ptr(10))

	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.Equal(t, domain.ActionUpdate, event.Action)
	assert.Equal(t, int64(42), event.TicketID)
	require.NotNil(t, event.Ticket)

	topics := rec.topics[0]
	assert.ElementsMatch(t, []string{
		"tenant-1-open",
		"tenant-1-notification",
		"queue-3-open",
		"queue-3-notification",
		"ticket-42",
		"agent-11",
		"agent-10",
	}, topics)
}

func TestPublishUpdate_SameAgentNotDuplicated(t *testing.T) {
	rec := &recordingBroadcaster{}
	fanout := services.NewNotificationFanout(discardLogger(), rec)

	fanout.PublishUpdate(fanoutTicket(), int64Ptr(11))

	require.Len(t, rec.events, 1)
	count := 0
	for _, topic := range rec.topics[0] {
		if topic == "agent-11" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestPublishRemoval_UsesOldViews(t *testing.T) {
	rec := &recordingBroadcaster{}
	fanout := services.NewNotificationFanout(discardLogger(), rec)

	ticket := fanoutTicket()
	ticket.Status = domain.StatusPending
	fanout.PublishRemoval(ticket, domain.StatusOpen, int64Ptr(10))

	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.Equal(t, domain.ActionDelete, event.Action)
	assert.Nil(t, event.Ticket)

	assert.ElementsMatch(t, []string{
		"tenant-1-open",
		"queue-3-open",
		"agent-10",
	}, rec.topics[0])
}

func TestPublishRatingRemoval_IncludesTicketTopic(t *testing.T) {
	rec := &recordingBroadcaster{}
	fanout := services.NewNotificationFanout(discardLogger(), rec)

	fanout.PublishRatingRemoval(fanoutTicket())

	require.Len(t, rec.events, 1)
	assert.Equal(t, domain.ActionDelete, rec.events[0].Action)
	assert.ElementsMatch(t, []string{
		"tenant-1-open",
		"queue-3-open",
		"ticket-42",
	}, rec.topics[0])
}

// failingBroadcaster always errors; publishing must still reach the
// remaining broadcasters.
type failingBroadcaster struct{}

func (failingBroadcaster) Publish(domain.TicketEvent, []string) error {
	return errors.New("bridge down")
}

func TestPublish_BroadcasterFailureDoesNotStopOthers(t *testing.T) {
	rec := &recordingBroadcaster{}
	fanout := services.NewNotificationFanout(discardLogger(), failingBroadcaster{}, rec)

	fanout.PublishUpdate(fanoutTicket(), nil)

	assert.Len(t, rec.events, 1)
}
