package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hiperdesk/backend/internal/core/domain"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) GetByID(ctx context.Context, tenantID, ticketID int64) (*domain.Ticket, error) {
	args := m.Called(ctx, tenantID, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ApplyTransition(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus, expectedAgentID *int64) error {
	args := m.Called(ctx, ticket, expectedStatus, expectedAgentID)
	return args.Error(0)
}

// MockTransactor is a mock implementation of ports.Transactor. Unless an
// expectation returns an error up front, the callback runs against the
// caller's context, so repository mocks see the calls as usual.
type MockTransactor struct {
	mock.Mock
}

func NewMockTransactor() *MockTransactor {
	return &MockTransactor{}
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockTrackingRepository is a mock implementation of ports.TrackingRepository
type MockTrackingRepository struct {
	mock.Mock
}

func NewMockTrackingRepository() *MockTrackingRepository {
	return &MockTrackingRepository{}
}

func (m *MockTrackingRepository) FindOrCreate(ctx context.Context, tenantID, ticketID, channelID int64) (*domain.TicketTracking, error) {
	args := m.Called(ctx, tenantID, ticketID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketTracking), args.Error(1)
}

func (m *MockTrackingRepository) Save(ctx context.Context, tracking *domain.TicketTracking) error {
	args := m.Called(ctx, tracking)
	return args.Error(0)
}

// MockSettingStore is a mock implementation of ports.SettingStore
type MockSettingStore struct {
	mock.Mock
}

func NewMockSettingStore() *MockSettingStore {
	return &MockSettingStore{}
}

func (m *MockSettingStore) GetSetting(ctx context.Context, tenantID int64, key string) (string, error) {
	args := m.Called(ctx, tenantID, key)
	return args.String(0), args.Error(1)
}

// MockQueueDirectory is a mock implementation of ports.QueueDirectory
type MockQueueDirectory struct {
	mock.Mock
}

func NewMockQueueDirectory() *MockQueueDirectory {
	return &MockQueueDirectory{}
}

func (m *MockQueueDirectory) GetQueue(ctx context.Context, tenantID, queueID int64) (*domain.QueueInfo, error) {
	args := m.Called(ctx, tenantID, queueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueInfo), args.Error(1)
}

// MockAgentDirectory is a mock implementation of ports.AgentDirectory
type MockAgentDirectory struct {
	mock.Mock
}

func NewMockAgentDirectory() *MockAgentDirectory {
	return &MockAgentDirectory{}
}

func (m *MockAgentDirectory) GetAgent(ctx context.Context, tenantID, agentID int64) (*domain.AgentInfo, error) {
	args := m.Called(ctx, tenantID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentInfo), args.Error(1)
}

// MockChannelDirectory is a mock implementation of ports.ChannelDirectory
type MockChannelDirectory struct {
	mock.Mock
}

func NewMockChannelDirectory() *MockChannelDirectory {
	return &MockChannelDirectory{}
}

func (m *MockChannelDirectory) GetChannel(ctx context.Context, tenantID, channelID int64) (*domain.Channel, error) {
	args := m.Called(ctx, tenantID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Channel), args.Error(1)
}

// MockMessageTransport is a mock implementation of ports.MessageTransport
type MockMessageTransport struct {
	mock.Mock
}

func NewMockMessageTransport() *MockMessageTransport {
	return &MockMessageTransport{}
}

func (m *MockMessageTransport) SendMessage(ctx context.Context, ticket *domain.Ticket, body string) (*domain.SentMessage, error) {
	args := m.Called(ctx, ticket, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SentMessage), args.Error(1)
}

// MockHistoryRegistrar is a mock implementation of ports.HistoryRegistrar
type MockHistoryRegistrar struct {
	mock.Mock
}

func NewMockHistoryRegistrar() *MockHistoryRegistrar {
	return &MockHistoryRegistrar{}
}

func (m *MockHistoryRegistrar) RegisterOutboundMessage(ctx context.Context, msg *domain.SentMessage, ticket *domain.Ticket) error {
	args := m.Called(ctx, msg, ticket)
	return args.Error(0)
}

// MockConflictChecker is a mock implementation of ports.ConflictChecker
type MockConflictChecker struct {
	mock.Mock
}

func NewMockConflictChecker() *MockConflictChecker {
	return &MockConflictChecker{}
}

func (m *MockConflictChecker) EnsureNoOtherOpenTicket(ctx context.Context, tenantID, contactID, channelID, ticketID int64) error {
	args := m.Called(ctx, tenantID, contactID, channelID, ticketID)
	return args.Error(0)
}

// MockReadMarker is a mock implementation of ports.ReadMarker
type MockReadMarker struct {
	mock.Mock
}

func NewMockReadMarker() *MockReadMarker {
	return &MockReadMarker{}
}

func (m *MockReadMarker) MarkAllMessagesRead(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

// MockBroadcaster is a mock implementation of ports.Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (m *MockBroadcaster) Publish(event domain.TicketEvent, topics []string) error {
	args := m.Called(event, topics)
	return args.Error(0)
}

// MockErrorReporter is a mock implementation of ports.ErrorReporter
type MockErrorReporter struct {
	mock.Mock
}

func NewMockErrorReporter() *MockErrorReporter {
	return &MockErrorReporter{}
}

func (m *MockErrorReporter) Report(ctx context.Context, err error) {
	m.Called(ctx, err)
}

// MockTransitionService is a mock implementation of ports.TransitionService
type MockTransitionService struct {
	mock.Mock
}

func NewMockTransitionService() *MockTransitionService {
	return &MockTransitionService{}
}

func (m *MockTransitionService) Transition(ctx context.Context, params ports.TransitionParams) (*ports.TransitionResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.TransitionResult), args.Error(1)
}
