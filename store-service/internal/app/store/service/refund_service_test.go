package service

import (
	"context"
	"encoding/json"
	"testing"

	"bookstore/store-service/internal/app/store/entity"
	"bookstore/store-service/internal/app/store/infrastructure"
	"bookstore/store-service/internal/app/store/repository"
	"bookstore/store-service/internal/app/store/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRefundService() (*RefundService, *mocks.MockRefundRepository, *mocks.MockOrderRepository, *mocks.MockMessagePublisher, *mocks.MockAuthServiceClient) {
	refundRepo := new(mocks.MockRefundRepository)
	orderRepo := new(mocks.MockOrderRepository)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	authClient := new(mocks.MockAuthServiceClient)
	svc := NewRefundService(refundRepo, orderRepo, publisher, authClient)
	return svc, refundRepo, orderRepo, publisher, authClient
}

func TestRefundCreate_Success(t *testing.T) {
	svc, refundRepo, orderRepo, _, _ := newRefundService()
	ctx := context.Background()

	orderRepo.On("GetByOrderID", ctx, int64(42)).Return(&entity.Order{
		OrderID: 42, UserID: "user-1", Status: entity.OrderStatusDelivered,
	}, nil)
	refundRepo.On("GetByOrderAndUser", ctx, int64(42), "user-1").Return(nil, repository.ErrRefundNotFound)
	refundRepo.On("Create", ctx, mock.AnythingOfType("*entity.RefundRequest")).Return(nil).Run(func(args mock.Arguments) {
		refund := args.Get(1).(*entity.RefundRequest)
		refund.ID = primitive.NewObjectID()
	})
	orderRepo.On("UpdateStatus", ctx, int64(42), entity.OrderStatusRefundRequested).Return(nil)
	orderRepo.On("SetRefundRequest", ctx, int64(42), mock.AnythingOfType("*entity.RefundRequest")).Return(nil)

	refund, err := svc.Create(ctx, "user-1", &entity.CreateRefundRequest{
		OrderID: 42, Reason: "damaged cover",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.RefundStatusPending, refund.Status)
	orderRepo.AssertCalled(t, "UpdateStatus", ctx, int64(42), entity.OrderStatusRefundRequested)
}

func TestRefundCreate_WrongOwner(t *testing.T) {
	svc, refundRepo, orderRepo, _, _ := newRefundService()
	ctx := context.Background()

	orderRepo.On("GetByOrderID", ctx, int64(42)).Return(&entity.Order{
		OrderID: 42, UserID: "someone-else",
	}, nil)

	refund, err := svc.Create(ctx, "user-1", &entity.CreateRefundRequest{OrderID: 42, Reason: "x"})

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, refund)
	refundRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestRefundCreate_AlreadyExists(t *testing.T) {
	svc, refundRepo, orderRepo, _, _ := newRefundService()
	ctx := context.Background()

	orderRepo.On("GetByOrderID", ctx, int64(42)).Return(&entity.Order{
		OrderID: 42, UserID: "user-1",
	}, nil)
	refundRepo.On("GetByOrderAndUser", ctx, int64(42), "user-1").Return(&entity.RefundRequest{
		OrderID: 42, UserID: "user-1", Status: entity.RefundStatusRejected,
	}, nil)

	_, err := svc.Create(ctx, "user-1", &entity.CreateRefundRequest{OrderID: 42, Reason: "again"})

	assert.ErrorIs(t, err, ErrRefundExists)
}

func TestRefundUpdateStatus_ApprovedPublishesOneEventAndRefundsOrder(t *testing.T) {
	svc, refundRepo, orderRepo, publisher, authClient := newRefundService()
	ctx := context.Background()

	id := primitive.NewObjectID()
	refundRepo.On("GetByID", ctx, id.Hex()).Return(&entity.RefundRequest{
		ID: id, OrderID: 42, UserID: "user-1", Status: entity.RefundStatusPending,
	}, nil)
	refundRepo.On("UpdateStatus", ctx, id.Hex(), entity.RefundStatusApproved).Return(nil)
	orderRepo.On("UpdateStatus", ctx, int64(42), entity.OrderStatusRefunded).Return(nil)
	orderRepo.On("SetRefundRequest", ctx, int64(42), mock.AnythingOfType("*entity.RefundRequest")).Return(nil)
	authClient.On("GetUsers", ctx, []string{"user-1"}).Return(map[string]infrastructure.UserIdentity{
		"user-1": {ID: "user-1", Name: "Alice", Email: "alice@example.com"},
	}, nil)
	publisher.On("PublishMessage", ctx, "alice@example.com", mock.Anything).Return(nil)

	refund, err := svc.UpdateStatus(ctx, id.Hex(), entity.RefundStatusApproved)

	assert.NoError(t, err)
	assert.Equal(t, entity.RefundStatusApproved, refund.Status)
	orderRepo.AssertCalled(t, "UpdateStatus", ctx, int64(42), entity.OrderStatusRefunded)
	assert.Len(t, publisher.Messages, 1)

	var event entity.NotificationEvent
	assert.NoError(t, json.Unmarshal(publisher.Messages[0], &event))
	assert.Equal(t, entity.EventRefundDecided, event.EventType)
	assert.Equal(t, int64(42), event.OrderID)
	assert.Equal(t, "approved", event.Status)
}

func TestRefundUpdateStatus_RejectedLeavesOrderAlone(t *testing.T) {
	svc, refundRepo, orderRepo, publisher, authClient := newRefundService()
	ctx := context.Background()

	id := primitive.NewObjectID()
	refundRepo.On("GetByID", ctx, id.Hex()).Return(&entity.RefundRequest{
		ID: id, OrderID: 42, UserID: "user-1", Status: entity.RefundStatusPending,
	}, nil)
	refundRepo.On("UpdateStatus", ctx, id.Hex(), entity.RefundStatusRejected).Return(nil)
	orderRepo.On("SetRefundRequest", ctx, int64(42), mock.AnythingOfType("*entity.RefundRequest")).Return(nil)
	authClient.On("GetUsers", ctx, []string{"user-1"}).Return(map[string]infrastructure.UserIdentity{
		"user-1": {ID: "user-1", Name: "Alice", Email: "alice@example.com"},
	}, nil)
	publisher.On("PublishMessage", ctx, "alice@example.com", mock.Anything).Return(nil)

	refund, err := svc.UpdateStatus(ctx, id.Hex(), entity.RefundStatusRejected)

	assert.NoError(t, err)
	assert.Equal(t, entity.RefundStatusRejected, refund.Status)
	orderRepo.AssertNotCalled(t, "UpdateStatus", ctx, int64(42), entity.OrderStatusRefunded)
	assert.Len(t, publisher.Messages, 1)
}

func TestRefundUpdateStatus_PendingToPendingIsNoOp(t *testing.T) {
	svc, refundRepo, _, publisher, _ := newRefundService()
	ctx := context.Background()

	id := primitive.NewObjectID()
	refundRepo.On("GetByID", ctx, id.Hex()).Return(&entity.RefundRequest{
		ID: id, OrderID: 42, UserID: "user-1", Status: entity.RefundStatusPending,
	}, nil)

	refund, err := svc.UpdateStatus(ctx, id.Hex(), entity.RefundStatusPending)

	assert.NoError(t, err)
	assert.Equal(t, entity.RefundStatusPending, refund.Status)
	refundRepo.AssertNotCalled(t, "UpdateStatus", ctx, mock.Anything, mock.Anything)
	assert.Empty(t, publisher.Messages)
}

func TestRefundUpdateStatus_AlreadyDecided(t *testing.T) {
	svc, refundRepo, _, publisher, _ := newRefundService()
	ctx := context.Background()

	id := primitive.NewObjectID()
	refundRepo.On("GetByID", ctx, id.Hex()).Return(&entity.RefundRequest{
		ID: id, OrderID: 42, UserID: "user-1", Status: entity.RefundStatusApproved,
	}, nil)

	refund, err := svc.UpdateStatus(ctx, id.Hex(), entity.RefundStatusRejected)

	assert.ErrorIs(t, err, ErrRefundNotPending)
	assert.Nil(t, refund)
	assert.Empty(t, publisher.Messages)
}

func TestRefundUpdateStatus_PublishFailureDoesNotFailDecision(t *testing.T) {
	svc, refundRepo, orderRepo, publisher, authClient := newRefundService()
	ctx := context.Background()

	id := primitive.NewObjectID()
	refundRepo.On("GetByID", ctx, id.Hex()).Return(&entity.RefundRequest{
		ID: id, OrderID: 42, UserID: "user-1", Status: entity.RefundStatusPending,
	}, nil)
	refundRepo.On("UpdateStatus", ctx, id.Hex(), entity.RefundStatusApproved).Return(nil)
	orderRepo.On("UpdateStatus", ctx, int64(42), entity.OrderStatusRefunded).Return(nil)
	orderRepo.On("SetRefundRequest", ctx, int64(42), mock.AnythingOfType("*entity.RefundRequest")).Return(nil)
	authClient.On("GetUsers", ctx, []string{"user-1"}).Return(map[string]infrastructure.UserIdentity{
		"user-1": {ID: "user-1", Name: "Alice", Email: "alice@example.com"},
	}, nil)
	publisher.On("PublishMessage", ctx, "alice@example.com", mock.Anything).Return(assert.AnError)

	refund, err := svc.UpdateStatus(ctx, id.Hex(), entity.RefundStatusApproved)

	assert.NoError(t, err)
	assert.Equal(t, entity.RefundStatusApproved, refund.Status)
}
