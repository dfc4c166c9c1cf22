package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	mw "github.com/hiperdesk/backend/internal/adapters/primary/http/middleware"
	"github.com/hiperdesk/backend/internal/adapters/primary/validation"
	"github.com/hiperdesk/backend/internal/core/domain"
	apperrors "github.com/hiperdesk/backend/internal/core/errors"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// TicketHandler exposes the ticket lifecycle over HTTP.
type TicketHandler struct {
	transitions  ports.TransitionService
	tickets      ports.TicketRepository
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(
	transitions ports.TransitionService,
	tickets ports.TicketRepository,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		transitions:  transitions,
		tickets:      tickets,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "ticket"),
	}
}

// RegisterRoutes registers ticket routes on the router
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tickets", func(r chi.Router) {
		r.Get("/{ticketID}", h.HandleGetTicket)
		r.Put("/{ticketID}", h.HandleTransition)
	})
}

// TransitionRequest is the body of PUT /tickets/{ticketID}.
type TransitionRequest struct {
	Status        string  `json:"status"`
	QueueID       *int64  `json:"queueId"`
	AgentID       *int64  `json:"agentId"`
	ChannelID     *int64  `json:"channelId"`
	Chatbot       bool    `json:"chatbot"`
	QueueOptionID *int64  `json:"queueOptionId"`
	LastMessage   *string `json:"lastMessage"`
}

// TransitionResponse mirrors what real-time subscribers receive, plus the
// pre-transition values the caller's UI needs to reconcile its lists.
type TransitionResponse struct {
	Ticket     *domain.Ticket      `json:"ticket"`
	OldStatus  domain.TicketStatus `json:"oldStatus"`
	OldAgentID *int64              `json:"oldAgentId"`
}

// HandleTransition handles PUT /tickets/{ticketID}
func (h *TicketHandler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	ticketID, err := parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[TransitionRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	v := validation.NewValidator()
	v.Required("status", req.Status)
	v.OneOf("status", req.Status, []string{
		string(domain.StatusPending),
		string(domain.StatusOpen),
		string(domain.StatusClosed),
		string(domain.StatusGroup),
	})
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	result, err := h.transitions.Transition(r.Context(), ports.TransitionParams{
		TenantID:      claims.TenantID,
		TicketID:      ticketID,
		Status:        domain.TicketStatus(req.Status),
		QueueID:       req.QueueID,
		AgentID:       req.AgentID,
		ChannelID:     req.ChannelID,
		Chatbot:       req.Chatbot,
		QueueOptionID: req.QueueOptionID,
		LastMessage:   req.LastMessage,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, TransitionResponse{
		Ticket:     result.Ticket,
		OldStatus:  result.OldStatus,
		OldAgentID: result.OldAgentID,
	})
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	ticketID, err := parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.tickets.GetByID(r.Context(), claims.TenantID, ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, ticket)
}

func parseTicketID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "ticketID")
	ticketID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ticketID <= 0 {
		return 0, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Invalid ticket ID")
	}
	return ticketID, nil
}
