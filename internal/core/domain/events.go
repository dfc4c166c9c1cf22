package domain

import "strconv"

// EventAction tags a real-time ticket event.
type EventAction string

const (
	// ActionUpdate carries the full ticket so subscribers refresh their view.
	ActionUpdate EventAction = "update"
	// ActionDelete carries only the ticket id so subscribers drop it from
	// the view it no longer belongs to.
	ActionDelete EventAction = "delete"
)

// TicketEvent is the payload fanned out to real-time subscribers.
type TicketEvent struct {
	TenantID int64       `json:"tenantId"`
	Action   EventAction `json:"action"`
	TicketID int64       `json:"ticketId"`
	Ticket   *Ticket     `json:"ticket,omitempty"`
}

// Topic names. A single event is multicast to several topics; clients
// subscribe to the views they render.

// TenantStatusTopic groups tickets of one tenant in one status view.
func TenantStatusTopic(tenantID int64, status TicketStatus) string {
	return "tenant-" + strconv.FormatInt(tenantID, 10) + "-" + string(status)
}

// TenantNotificationTopic is the tenant-wide notification feed.
func TenantNotificationTopic(tenantID int64) string {
	return "tenant-" + strconv.FormatInt(tenantID, 10) + "-notification"
}

// QueueStatusTopic groups tickets of one queue in one status view.
func QueueStatusTopic(queueID int64, status TicketStatus) string {
	return "queue-" + strconv.FormatInt(queueID, 10) + "-" + string(status)
}

// QueueNotificationTopic is the per-queue notification feed.
func QueueNotificationTopic(queueID int64) string {
	return "queue-" + strconv.FormatInt(queueID, 10) + "-notification"
}

// TicketTopic is the single-ticket conversation view.
func TicketTopic(ticketID int64) string {
	return "ticket-" + strconv.FormatInt(ticketID, 10)
}

// AgentTopic is the per-agent view of tickets assigned to them.
func AgentTopic(agentID int64) string {
	return "agent-" + strconv.FormatInt(agentID, 10)
}
