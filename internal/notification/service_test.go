package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/dispatch-service/internal/config"
	"github.com/spec-kit/dispatch-service/internal/directory"
	"github.com/spec-kit/dispatch-service/internal/domain"
	"github.com/spec-kit/dispatch-service/internal/notification"
	"github.com/spec-kit/dispatch-service/internal/observability"
)

type fakeTransport struct {
	sent []notification.Message
	err  error
}

func (f *fakeTransport) Send(ctx context.Context, msg notification.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg-1", nil
}

func testEngineers() []domain.Engineer {
	return []domain.Engineer{
		{ID: 1, Name: "Andika Prasetya", Unit: "Database Admin Specialist", Email: "andika.prasetya@example.com"},
		{ID: 2, Name: "Rina Oktaviani", Unit: "Database Admin Specialist", Email: ""},
		{ID: 3, Name: "Wahyu Hidayat", Unit: "Helpdesk Officer", Email: "not-an-email"},
	}
}

func newService(transport notification.Transport, cfg config.NotificationConfig) *notification.Service {
	dir := directory.NewMemoryDirectory(testEngineers())
	return notification.NewService(transport, dir, zap.NewNop(), observability.NewMetrics(), cfg)
}

func testRequest() *domain.Request {
	return &domain.Request{
		ID:           "req_1",
		ServiceID:    "database",
		ServiceTitle: "Database Issue",
		Description:  "Replication lag on the reporting cluster",
		Requestor:    "Budi",
		Urgency:      domain.UrgencyHigh,
		Status:       domain.RequestStatusAssigned,
	}
}

func TestNotifyOneSuccess(t *testing.T) {
	transport := &fakeTransport{}
	svc := newService(transport, config.NotificationConfig{FromName: "ITOD", FromAddress: "noreply@example.com"})

	engineer := testEngineers()[0]
	outcome := svc.NotifyOne(context.Background(), testRequest(), &engineer, &domain.AIAnalysis{AssignmentScore: 0.9})

	assert.True(t, outcome.Success)
	assert.Equal(t, "msg-1", outcome.MessageID)
	assert.Equal(t, "andika.prasetya@example.com", outcome.Recipient)

	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Equal(t, "andika.prasetya@example.com", msg.To)
	assert.Contains(t, msg.Subject, "req_1")
	assert.Contains(t, msg.Text, "Andika Prasetya")
	assert.Equal(t, "high", msg.Priority)
}

func TestNotifyOneNoRecipient(t *testing.T) {
	transport := &fakeTransport{}
	svc := newService(transport, config.NotificationConfig{})

	engineer := testEngineers()[1]
	outcome := svc.NotifyOne(context.Background(), testRequest(), &engineer, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, notification.FailureNoRecipient, outcome.FailureKind)
	assert.Empty(t, transport.sent)
}

func TestNotifyOneInvalidRecipient(t *testing.T) {
	transport := &fakeTransport{}
	svc := newService(transport, config.NotificationConfig{})

	engineer := testEngineers()[2]
	outcome := svc.NotifyOne(context.Background(), testRequest(), &engineer, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, notification.FailureInvalidRecipient, outcome.FailureKind)
	assert.Empty(t, transport.sent)
}

func TestNotifyOneTransportFailure(t *testing.T) {
	transport := &fakeTransport{err: errors.New("connection refused")}
	svc := newService(transport, config.NotificationConfig{})

	engineer := testEngineers()[0]
	outcome := svc.NotifyOne(context.Background(), testRequest(), &engineer, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, notification.FailureTransport, outcome.FailureKind)
	assert.Equal(t, "connection refused", outcome.Error)
}

func TestNotifyOneTestModeRedirect(t *testing.T) {
	transport := &fakeTransport{}
	svc := newService(transport, config.NotificationConfig{
		TestMode:      true,
		TestRecipient: "sandbox@example.com",
	})

	engineer := testEngineers()[0]
	outcome := svc.NotifyOne(context.Background(), testRequest(), &engineer, nil)

	assert.True(t, outcome.Success)
	assert.Equal(t, "sandbox@example.com", outcome.Recipient)
	assert.Equal(t, "andika.prasetya@example.com", outcome.OriginalRecipient)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "sandbox@example.com", transport.sent[0].To)
}

func TestNotifyBatchSkipsUnresolvable(t *testing.T) {
	transport := &fakeTransport{}
	svc := newService(transport, config.NotificationConfig{})

	request := testRequest()
	items := []notification.BatchItem{
		{RequestID: "req_1", EngineerID: "1"},
		{RequestID: "req_missing", EngineerID: "1"},
		{RequestID: "req_1", EngineerID: "unknown engineer"},
	}
	outcomes := svc.NotifyBatch(context.Background(), items, map[string]*domain.Request{"req_1": request})

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success)
	assert.Equal(t, "1", outcomes[0].EngineerID)
}

func TestNotifyBatchHonorsCancellation(t *testing.T) {
	transport := &fakeTransport{}
	svc := newService(transport, config.NotificationConfig{BatchDelayMillis: 5000})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	request := testRequest()
	items := []notification.BatchItem{
		{RequestID: "req_1", EngineerID: "1"},
		{RequestID: "req_1", EngineerID: "3"},
	}
	outcomes := svc.NotifyBatch(ctx, items, map[string]*domain.Request{"req_1": request})

	// the first send happens before any pacing delay; the second is cut off
	assert.Len(t, outcomes, 1)
}
