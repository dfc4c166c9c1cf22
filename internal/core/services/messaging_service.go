package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hiperdesk/backend/internal/core/domain"
	"github.com/hiperdesk/backend/internal/core/ports"
	"github.com/hiperdesk/backend/internal/core/template"
)

// Built-in fallbacks used when a tenant has not configured a template.
const (
	defaultTransferTemplate = "{{ms}} {{name}}, seu atendimento foi transferido. Departamento: {{queue}}. Atendente: {{agent}}."
	defaultGreetingTemplate = "{{ms}} {{name}}, meu nome é {{agent}} e vou prosseguir com seu atendimento!"
)

// ratingSurveyBody is the fixed 1-5 scale appended to the channel's
// rating preamble. The numeric reply is parsed by the inbound pipeline.
const ratingSurveyBody = "Digite de 1 a 5 para qualificar nosso atendimento:\n\n" +
	"*1* - 😞 _Péssimo_\n" +
	"*2* - 😕 _Ruim_\n" +
	"*3* - 😐 _Neutro_\n" +
	"*4* - 🙂 _Bom_\n" +
	"*5* - 😊 _Ótimo_"

// outboundMarker prefixes automated completion messages so the inbound
// pipeline can tell them apart from agent-typed text.
const outboundMarker = "‎"

// MessagingEngine decides which automated message to send for a
// lifecycle transition, renders it from per-tenant configuration and
// dispatches it through the transport. Every sent message is registered
// with the conversation history.
type MessagingEngine struct {
	settings ports.SettingStore
	channels ports.ChannelDirectory
	queues   ports.QueueDirectory
	agents   ports.AgentDirectory
	transport ports.MessageTransport
	history  ports.HistoryRegistrar
	renderer *template.Renderer
	logger   *slog.Logger
}

// NewMessagingEngine wires the trigger engine.
func NewMessagingEngine(
	settings ports.SettingStore,
	channels ports.ChannelDirectory,
	queues ports.QueueDirectory,
	agents ports.AgentDirectory,
	transport ports.MessageTransport,
	history ports.HistoryRegistrar,
	renderer *template.Renderer,
	logger *slog.Logger,
) *MessagingEngine {
	return &MessagingEngine{
		settings:  settings,
		channels:  channels,
		queues:    queues,
		agents:    agents,
		transport: transport,
		history:   history,
		renderer:  renderer,
		logger:    logger.With("component", "messaging_engine"),
	}
}

// ShouldRequestRating reports whether closing the ticket must send the
// rating survey instead of completing: rating enabled for the tenant, a
// direct (non-group) conversation with the bot allowed, the ticket not
// sitting in pending, no survey sent yet this episode, and an agent
// actually served it.
func (e *MessagingEngine) ShouldRequestRating(ctx context.Context, ticket *domain.Ticket, tracking *domain.TicketTracking) (bool, error) {
	if ticket.GroupConversation() || ticket.Contact.DisableBot {
		return false, nil
	}
	if ticket.Status == domain.StatusPending {
		return false, nil
	}
	if tracking.RatingRequested() || tracking.AgentID == nil {
		return false, nil
	}

	enabled, err := e.settings.GetSetting(ctx, ticket.TenantID, ports.SettingUserRating)
	if err != nil {
		return false, fmt.Errorf("load rating setting: %w", err)
	}
	return enabled == ports.SettingEnabled, nil
}

// SendRatingSurvey dispatches the rating survey, prefixed with the
// channel's configured preamble when present.
func (e *MessagingEngine) SendRatingSurvey(ctx context.Context, ticket *domain.Ticket) error {
	body := ratingSurveyBody
	if channel, err := e.channels.GetChannel(ctx, ticket.TenantID, ticket.ChannelID); err == nil && channel.RatingMessage != "" {
		body = channel.RatingMessage + "\n\n" + ratingSurveyBody
	}
	return e.dispatch(ctx, ticket, body, "rating_survey")
}

// SendCompletion dispatches the channel's completion message, when one is
// configured and the conversation accepts automated text.
func (e *MessagingEngine) SendCompletion(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.GroupConversation() || ticket.Contact.DisableBot {
		return nil
	}

	channel, err := e.channels.GetChannel(ctx, ticket.TenantID, ticket.ChannelID)
	if err != nil {
		return fmt.Errorf("load channel %d: %w", ticket.ChannelID, err)
	}
	if strings.TrimSpace(channel.CompletionMessage) == "" {
		return nil
	}

	return e.dispatch(ctx, ticket, outboundMarker+channel.CompletionMessage, "completion")
}

// SendTransferNotice dispatches the transfer notice when the tenant has
// it enabled and the queue or the agent actually changed between two
// non-null values. Old values are the ticket's state before the commit.
func (e *MessagingEngine) SendTransferNotice(ctx context.Context, ticket *domain.Ticket, oldQueueID, oldAgentID, newQueueID, newAgentID *int64) error {
	if ticket.GroupConversation() {
		return nil
	}

	queueChanged := oldQueueID != nil && newQueueID != nil && *oldQueueID != *newQueueID
	agentChanged := oldAgentID != nil && newAgentID != nil && *oldAgentID != *newAgentID
	if !queueChanged && !agentChanged {
		return nil
	}

	enabled, err := e.settings.GetSetting(ctx, ticket.TenantID, ports.SettingSendTransferMsg)
	if err != nil {
		return fmt.Errorf("load transfer setting: %w", err)
	}
	if enabled != ports.SettingEnabled {
		return nil
	}

	tpl, err := e.settings.GetSetting(ctx, ticket.TenantID, ports.SettingTransferMsgTemplate)
	if err != nil {
		return fmt.Errorf("load transfer template: %w", err)
	}
	if strings.TrimSpace(tpl) == "" {
		tpl = defaultTransferTemplate
	}

	data := template.Data{
		ContactName:   ticket.Contact.Name,
		Queue:         e.queueName(ctx, ticket.TenantID, newQueueID),
		Agent:         e.agentName(ctx, ticket.TenantID, newAgentID),
		PreviousQueue: e.queueName(ctx, ticket.TenantID, oldQueueID),
		PreviousAgent: e.agentName(ctx, ticket.TenantID, oldAgentID),
	}

	body := e.renderer.Render(tpl, data)
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return e.dispatch(ctx, ticket, body, "transfer_notice")
}

// SendGreeting dispatches the accepted-greeting on a fresh claim into
// open. Re-claims (the ticket was already open) never greet again.
func (e *MessagingEngine) SendGreeting(ctx context.Context, ticket *domain.Ticket, oldStatus domain.TicketStatus) error {
	if oldStatus == domain.StatusOpen {
		return nil
	}
	if ticket.GroupConversation() || ticket.Contact.DisableBot {
		return nil
	}

	enabled, err := e.settings.GetSetting(ctx, ticket.TenantID, ports.SettingSendGreetingAccepted)
	if err != nil {
		return fmt.Errorf("load greeting setting: %w", err)
	}
	if enabled != ports.SettingEnabled {
		return nil
	}

	tpl, err := e.settings.GetSetting(ctx, ticket.TenantID, ports.SettingGreetingAcceptedMessage)
	if err != nil {
		return fmt.Errorf("load greeting template: %w", err)
	}
	if strings.TrimSpace(tpl) == "" {
		tpl = defaultGreetingTemplate
	}

	data := template.Data{
		ContactName: ticket.Contact.Name,
		Queue:       e.queueName(ctx, ticket.TenantID, ticket.QueueID),
		Agent:       e.agentName(ctx, ticket.TenantID, ticket.AgentID),
	}

	body := e.renderer.Render(tpl, data)
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return e.dispatch(ctx, ticket, body, "greeting")
}

// dispatch sends the body and registers the resulting message with the
// conversation history. A history failure is logged but does not undo the
// already-dispatched message.
func (e *MessagingEngine) dispatch(ctx context.Context, ticket *domain.Ticket, body, kind string) error {
	msg, err := e.transport.SendMessage(ctx, ticket, body)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", kind, err)
	}

	if err := e.history.RegisterOutboundMessage(ctx, msg, ticket); err != nil {
		e.logger.Warn("failed to register outbound message",
			"ticket_id", ticket.ID,
			"kind", kind,
			"error", err,
		)
	}

	e.logger.Info("automated message sent",
		"ticket_id", ticket.ID,
		"tenant_id", ticket.TenantID,
		"kind", kind,
	)
	return nil
}

func (e *MessagingEngine) queueName(ctx context.Context, tenantID int64, queueID *int64) string {
	if queueID == nil {
		return ""
	}
	queue, err := e.queues.GetQueue(ctx, tenantID, *queueID)
	if err != nil {
		return ""
	}
	return queue.Name
}

func (e *MessagingEngine) agentName(ctx context.Context, tenantID int64, agentID *int64) string {
	if agentID == nil {
		return ""
	}
	agent, err := e.agents.GetAgent(ctx, tenantID, *agentID)
	if err != nil {
		return ""
	}
	return agent.Name
}
