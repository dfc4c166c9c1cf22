package domain

import "time"

// TicketTracking is the timestamped record of one service episode of a
// ticket: queued, started, finished, rating requested. One record exists
// per open episode; it is found or created at the start of every
// transition and reset when the ticket re-enters the pending/open cycle.
type TicketTracking struct {
	ID        int64
	TenantID  int64
	TicketID  int64
	ChannelID int64
	AgentID   *int64
	QueuedAt  *time.Time
	StartedAt *time.Time
	FinishedAt *time.Time
	RatingAt  *time.Time
	Rated     bool
}

// RatingRequested reports whether a rating survey has already been sent
// in this episode.
func (tt *TicketTracking) RatingRequested() bool {
	return tt.RatingAt != nil
}

// ResetForPending clears the episode back to the queued-only state.
func (tt *TicketTracking) ResetForPending(channelID int64, now time.Time) {
	tt.ChannelID = channelID
	tt.QueuedAt = &now
	tt.StartedAt = nil
	tt.AgentID = nil
}

// StartEpisode stamps the episode as started by the given agent. Calling
// it again on an already-open episode re-stamps startedAt; that is the
// intended idempotent behavior.
func (tt *TicketTracking) StartEpisode(channelID int64, agentID *int64, now time.Time) {
	tt.ChannelID = channelID
	tt.StartedAt = &now
	tt.RatingAt = nil
	tt.Rated = false
	tt.AgentID = agentID
}

// Finish stamps the episode as finished.
func (tt *TicketTracking) Finish(channelID int64, agentID *int64, now time.Time) {
	tt.ChannelID = channelID
	tt.AgentID = agentID
	tt.FinishedAt = &now
}
