package waweb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hiperdesk/backend/internal/config"
	"github.com/hiperdesk/backend/internal/core/domain"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// Client dispatches automated messages through the chat gateway's HTTP
// API. The gateway owns the actual device sessions; this adapter only
// posts text on behalf of a ticket's channel.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.MessageTransport = (*Client)(nil)

// NewClient creates a gateway client from configuration.
func NewClient(cfg config.GatewayConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With("component", "waweb_client"),
	}
}

type sendRequest struct {
	ChannelID int64  `json:"channelId"`
	ContactID int64  `json:"contactId"`
	Body      string `json:"body"`
}

type sendResponse struct {
	MessageID string    `json:"messageId"`
	SentAt    time.Time `json:"sentAt"`
}

// SendMessage posts the body to the gateway on the ticket's channel and
// returns the dispatch handle used for history registration.
func (c *Client) SendMessage(ctx context.Context, ticket *domain.Ticket, body string) (*domain.SentMessage, error) {
	payload, err := json.Marshal(sendRequest{
		ChannelID: ticket.ChannelID,
		ContactID: ticket.Contact.ID,
		Body:      body,
	})
	if err != nil {
		return nil, fmt.Errorf("encode send request: %w", err)
	}

	url := fmt.Sprintf("%s/api/messages/send", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway send: unexpected status %d: %s", resp.StatusCode, snippet)
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode send response: %w", err)
	}

	externalID := out.MessageID
	if externalID == "" {
		// The gateway did not echo an id; synthesize one so the history
		// row still has a stable key.
		externalID = uuid.New().String()
	}
	sentAt := out.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}

	c.logger.Debug("message dispatched",
		"ticket_id", ticket.ID,
		"channel_id", ticket.ChannelID,
		"external_id", externalID,
	)

	return &domain.SentMessage{
		ExternalID: externalID,
		Body:       body,
		ChannelID:  ticket.ChannelID,
		SentAt:     sentAt,
	}, nil
}
