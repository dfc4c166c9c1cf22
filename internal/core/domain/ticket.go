package domain

import (
	"time"
)

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	StatusPending TicketStatus = "pending"
	StatusOpen    TicketStatus = "open"
	StatusClosed  TicketStatus = "closed"
	StatusGroup   TicketStatus = "group"
)

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case StatusPending, StatusOpen, StatusClosed, StatusGroup:
		return true
	}
	return false
}

// ContactSnapshot carries the contact fields the lifecycle engine reads.
// It is denormalized onto the ticket when loaded.
type ContactSnapshot struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IsGroup    bool   `json:"isGroup"`
	DisableBot bool   `json:"disableBot"`
}

// AutomationSession groups the bot-handoff state that must not survive
// ticket closure or a transport channel change.
type AutomationSession struct {
	PromptID       *int64  `json:"promptId,omitempty"`
	IntegrationID  *int64  `json:"integrationId,omitempty"`
	UseIntegration bool    `json:"useIntegration"`
	BotActive      bool    `json:"botActive"`
	BotSessionID   *string `json:"botSessionId,omitempty"`
}

// Clear resets the whole automation session.
func (a *AutomationSession) Clear() {
	a.PromptID = nil
	a.IntegrationID = nil
	a.UseIntegration = false
	a.BotActive = false
	a.BotSessionID = nil
}

// Ticket is one support conversation routed through queues and agents.
type Ticket struct {
	ID            int64             `json:"id"`
	TenantID      int64             `json:"tenantId"`
	Status        TicketStatus      `json:"status"`
	QueueID       *int64            `json:"queueId"`
	AgentID       *int64            `json:"agentId"`
	ChannelID     int64             `json:"channelId"`
	Chatbot       bool              `json:"chatbot"`
	QueueOptionID *int64            `json:"queueOptionId"`
	IsGroup       bool              `json:"isGroup"`
	LastMessage   string            `json:"lastMessage"`
	Contact       ContactSnapshot   `json:"contact"`
	Automation    AutomationSession `json:"automation"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     *time.Time        `json:"updatedAt,omitempty"`
}

// IsAssignedTo reports whether the given agent currently holds the ticket.
func (t *Ticket) IsAssignedTo(agentID int64) bool {
	return t.AgentID != nil && *t.AgentID == agentID
}

// GroupConversation reports whether either the ticket or its contact is a
// group chat. Group conversations never receive automated messages.
func (t *Ticket) GroupConversation() bool {
	return t.IsGroup || t.Contact.IsGroup
}

// Channel is a transport channel directory record (a connected chat
// account). Read-only to the lifecycle engine.
type Channel struct {
	ID                int64
	TenantID          int64
	Name              string
	CompletionMessage string
	RatingMessage     string
}

// QueueInfo is a queue directory record.
type QueueInfo struct {
	ID   int64
	Name string
}

// AgentInfo is an agent directory record.
type AgentInfo struct {
	ID   int64
	Name string
}

// SentMessage is the handle returned by the transport for a dispatched
// automated message.
type SentMessage struct {
	ExternalID string
	Body       string
	ChannelID  int64
	SentAt     time.Time
}
