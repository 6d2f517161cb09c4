package service

import (
	"context"
	"errors"
	"testing"

	"bookstore/notification-service/internal/app/notification/entity"
	"bookstore/notification-service/internal/app/notification/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testMaxAttempts = 5

func newNotificationService() (*NotificationService, *mocks.MockNotificationRepository, *mocks.MockEmailSender) {
	repo := new(mocks.MockNotificationRepository)
	sender := new(mocks.MockEmailSender)
	svc := NewNotificationService(repo, sender, testMaxAttempts)
	return svc, repo, sender
}

func discountEvent() *entity.NotificationEvent {
	return &entity.NotificationEvent{
		EventType: entity.EventDiscountApplied,
		Email:     "alice@example.com",
		Name:      "Alice",
		BookTitle: "Dune",
		NewPrice:  17.99,
	}
}

func TestProcessEvent_SentOnFirstAttempt(t *testing.T) {
	svc, repo, sender := newNotificationService()
	ctx := context.Background()

	var persisted *entity.Notification
	sender.On("Send", "alice@example.com", "Price drop: Dune", mock.Anything).Return(nil)
	repo.On("Create", ctx, mock.AnythingOfType("*entity.Notification")).Return(nil).Run(func(args mock.Arguments) {
		persisted = args.Get(1).(*entity.Notification)
	})

	err := svc.ProcessEvent(ctx, discountEvent())

	assert.NoError(t, err)
	assert.Equal(t, entity.NotificationStatusSent, persisted.Status)
	assert.Zero(t, persisted.Attempts)
	assert.Empty(t, persisted.LastError)
}

func TestProcessEvent_SendFailureQueuesForRetry(t *testing.T) {
	svc, repo, sender := newNotificationService()
	ctx := context.Background()

	var persisted *entity.Notification
	sender.On("Send", "alice@example.com", mock.Anything, mock.Anything).Return(errors.New("smtp timeout"))
	repo.On("Create", ctx, mock.AnythingOfType("*entity.Notification")).Return(nil).Run(func(args mock.Arguments) {
		persisted = args.Get(1).(*entity.Notification)
	})

	err := svc.ProcessEvent(ctx, discountEvent())

	assert.NoError(t, err)
	assert.Equal(t, entity.NotificationStatusPending, persisted.Status)
	assert.Equal(t, 1, persisted.Attempts)
	assert.Equal(t, "smtp timeout", persisted.LastError)
}

func TestProcessEvent_PersistFailure(t *testing.T) {
	svc, repo, sender := newNotificationService()
	ctx := context.Background()

	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("Create", ctx, mock.Anything).Return(errors.New("mongo down"))

	err := svc.ProcessEvent(ctx, discountEvent())

	assert.Error(t, err)
}

func TestProcessEvent_UnknownEventType(t *testing.T) {
	svc, repo, sender := newNotificationService()
	ctx := context.Background()

	err := svc.ProcessEvent(ctx, &entity.NotificationEvent{EventType: "SOMETHING_ELSE"})

	assert.Error(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestRetryPending_MixedOutcomes(t *testing.T) {
	svc, repo, sender := newNotificationService()
	ctx := context.Background()

	okID := primitive.NewObjectID()
	failID := primitive.NewObjectID()
	pending := []entity.Notification{
		{ID: okID, EventType: entity.EventDiscountApplied, Email: "ok@example.com", Subject: "s1", Body: "b1", Status: entity.NotificationStatusPending, Attempts: 1},
		{ID: failID, EventType: entity.EventRefundDecided, Email: "fail@example.com", Subject: "s2", Body: "b2", Status: entity.NotificationStatusPending, Attempts: 2},
	}

	repo.On("GetPending", ctx, 100).Return(pending, nil)
	sender.On("Send", "ok@example.com", "s1", "b1").Return(nil)
	sender.On("Send", "fail@example.com", "s2", "b2").Return(errors.New("still down"))
	repo.On("MarkSent", ctx, okID.Hex()).Return(nil)
	repo.On("RecordFailure", ctx, failID.Hex(), "still down").Return(nil)

	err := svc.RetryPending(ctx)

	assert.NoError(t, err)
	repo.AssertCalled(t, "MarkSent", ctx, okID.Hex())
	repo.AssertCalled(t, "RecordFailure", ctx, failID.Hex(), "still down")
}

func TestRetryPending_AbandonsAfterMaxAttempts(t *testing.T) {
	svc, repo, sender := newNotificationService()
	ctx := context.Background()

	// Следующая неудача станет последней попыткой
	id := primitive.NewObjectID()
	pending := []entity.Notification{
		{ID: id, EventType: entity.EventDiscountApplied, Email: "down@example.com", Subject: "s", Body: "b", Status: entity.NotificationStatusPending, Attempts: testMaxAttempts - 1},
	}

	repo.On("GetPending", ctx, 100).Return(pending, nil)
	sender.On("Send", "down@example.com", "s", "b").Return(errors.New("smtp down"))
	repo.On("MarkFailed", ctx, id.Hex(), "smtp down").Return(nil)

	err := svc.RetryPending(ctx)

	assert.NoError(t, err)
	repo.AssertCalled(t, "MarkFailed", ctx, id.Hex(), "smtp down")
	repo.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetryPending_ExhaustedNotificationIsNotResent(t *testing.T) {
	svc, repo, sender := newNotificationService()
	ctx := context.Background()

	// Письмо уже на пределе попыток: отправки быть не должно,
	// только перевод в терминальный статус
	id := primitive.NewObjectID()
	pending := []entity.Notification{
		{ID: id, EventType: entity.EventRefundDecided, Email: "down@example.com", Subject: "s", Body: "b", Status: entity.NotificationStatusPending, Attempts: testMaxAttempts + 10, LastError: "smtp down"},
	}

	repo.On("GetPending", ctx, 100).Return(pending, nil)
	repo.On("MarkFailed", ctx, id.Hex(), "smtp down").Return(nil)

	err := svc.RetryPending(ctx)

	assert.NoError(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertCalled(t, "MarkFailed", ctx, id.Hex(), "smtp down")
}

func TestRetryPending_NothingPending(t *testing.T) {
	svc, repo, sender := newNotificationService()
	ctx := context.Background()

	repo.On("GetPending", ctx, 100).Return([]entity.Notification{}, nil)

	err := svc.RetryPending(ctx)

	assert.NoError(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestComposeEmail_RefundDecided(t *testing.T) {
	subject, body, err := composeEmail(&entity.NotificationEvent{
		EventType: entity.EventRefundDecided,
		Name:      "Alice",
		OrderID:   42,
		Status:    "approved",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Refund request update for order #42", subject)
	assert.Contains(t, body, "approved")
	assert.Contains(t, body, "#42")
}

func TestComposeEmail_DiscountApplied(t *testing.T) {
	subject, body, err := composeEmail(discountEvent())

	assert.NoError(t, err)
	assert.Equal(t, "Price drop: Dune", subject)
	assert.Contains(t, body, "Dune")
	assert.Contains(t, body, "17.99")
}
