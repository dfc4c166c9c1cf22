package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mw "github.com/hiperdesk/backend/internal/adapters/primary/http/middleware"
	"github.com/hiperdesk/backend/internal/auth"
	"github.com/hiperdesk/backend/internal/core/domain"
	apperrors "github.com/hiperdesk/backend/internal/core/errors"
	"github.com/hiperdesk/backend/internal/core/mocks"
	"github.com/hiperdesk/backend/internal/core/ports"
)

func testRouter(transitions ports.TransitionService, tickets ports.TicketRepository) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewTicketHandler(transitions, tickets, NewErrorHandler(logger), logger)

	r := chi.NewRouter()
	// Stand-in for the JWT middleware: a fixed authenticated agent.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), mw.ClaimsKey, &auth.Claims{AgentID: 10, TenantID: 1})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.RegisterRoutes(r)
	return r
}

func ptrInt64(v int64) *int64 { return &v }

func TestHandleTransition_Success(t *testing.T) {
	transitions := mocks.NewMockTransitionService()
	tickets := mocks.NewMockTicketRepository()

	result := &ports.TransitionResult{
		Ticket: &domain.Ticket{
			ID:       42,
			TenantID: 1,
			Status:   domain.StatusOpen,
			AgentID:  ptrInt64(10),
		},
		OldStatus: domain.StatusPending,
	}
	transitions.On("Transition", mock.Anything, mock.MatchedBy(func(p ports.TransitionParams) bool {
		return p.TenantID == 1 && p.TicketID == 42 &&
			p.Status == domain.StatusOpen &&
			p.AgentID != nil && *p.AgentID == 10
	})).Return(result, nil)

	body, _ := json.Marshal(map[string]any{
		"status":  "open",
		"agentId": 10,
		"queueId": 3,
	})
	req := httptest.NewRequest(http.MethodPut, "/tickets/42", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	testRouter(transitions, tickets).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TransitionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.Ticket.ID)
	assert.Equal(t, domain.StatusOpen, resp.Ticket.Status)
	assert.Equal(t, domain.StatusPending, resp.OldStatus)
}

func TestHandleTransition_ClaimConflict(t *testing.T) {
	transitions := mocks.NewMockTransitionService()
	tickets := mocks.NewMockTicketRepository()

	transitions.On("Transition", mock.Anything, mock.Anything).
		Return(nil, &apperrors.TicketClaimedError{AgentID: 11, AgentName: "Beatriz"})

	body, _ := json.Marshal(map[string]any{"status": "open", "agentId": 10})
	req := httptest.NewRequest(http.MethodPut, "/tickets/42", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	testRouter(transitions, tickets).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TICKET_ALREADY_OPEN", resp.Code)
	assert.Equal(t, float64(11), resp.Details["agentId"])
	assert.Equal(t, "Beatriz", resp.Details["agentName"])
}

func TestHandleTransition_InvalidStatus(t *testing.T) {
	transitions := mocks.NewMockTransitionService()
	tickets := mocks.NewMockTicketRepository()

	body, _ := json.Marshal(map[string]any{"status": "archived"})
	req := httptest.NewRequest(http.MethodPut, "/tickets/42", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	testRouter(transitions, tickets).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	transitions.AssertNotCalled(t, "Transition")
}

func TestHandleTransition_BadTicketID(t *testing.T) {
	transitions := mocks.NewMockTransitionService()
	tickets := mocks.NewMockTicketRepository()

	body, _ := json.Marshal(map[string]any{"status": "open"})
	req := httptest.NewRequest(http.MethodPut, "/tickets/abc", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	testRouter(transitions, tickets).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetTicket(t *testing.T) {
	transitions := mocks.NewMockTransitionService()
	tickets := mocks.NewMockTicketRepository()

	tickets.On("GetByID", mock.Anything, int64(1), int64(42)).
		Return(&domain.Ticket{ID: 42, TenantID: 1, Status: domain.StatusPending}, nil)

	req := httptest.NewRequest(http.MethodGet, "/tickets/42", nil)
	rec := httptest.NewRecorder()
	testRouter(transitions, tickets).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var ticket domain.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	assert.Equal(t, int64(42), ticket.ID)
}

func TestHandleGetTicket_NotFound(t *testing.T) {
	transitions := mocks.NewMockTransitionService()
	tickets := mocks.NewMockTicketRepository()

	tickets.On("GetByID", mock.Anything, int64(1), int64(42)).
		Return(nil, apperrors.ErrTicketNotFound)

	req := httptest.NewRequest(http.MethodGet, "/tickets/42", nil)
	rec := httptest.NewRecorder()
	testRouter(transitions, tickets).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TICKET_NOT_FOUND", resp.Code)
}
