package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore/notification-service/internal/app/notification/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockNotificationService мок для NotificationServiceInterface
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) ProcessEvent(ctx context.Context, event *entity.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotificationService) RetryPending(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ===================== Start Tests =====================

func TestCronScheduler_Start_Success(t *testing.T) {
	mockSvc := new(MockNotificationService)
	scheduler := NewCronScheduler(mockSvc)

	err := scheduler.Start(context.Background(), "*/5 * * * *")

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	scheduler.Stop()
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	mockSvc := new(MockNotificationService)
	scheduler := NewCronScheduler(mockSvc)

	err := scheduler.Start(context.Background(), "invalid cron expression")

	assert.Error(t, err)
	assert.Empty(t, scheduler.GetEntries())
}

// ===================== Cron Job Execution Tests =====================

func TestCronScheduler_JobExecution(t *testing.T) {
	mockSvc := new(MockNotificationService)
	scheduler := NewCronScheduler(mockSvc)

	mockSvc.On("RetryPending", mock.Anything).Return(nil)

	// Используем @every для быстрого теста
	err := scheduler.Start(context.Background(), "@every 100ms")
	assert.NoError(t, err)

	time.Sleep(350 * time.Millisecond)

	scheduler.Stop()

	assert.GreaterOrEqual(t, len(mockSvc.Calls), 2)
}

func TestCronScheduler_JobExecution_ErrorDoesNotStopSchedule(t *testing.T) {
	mockSvc := new(MockNotificationService)
	scheduler := NewCronScheduler(mockSvc)

	mockSvc.On("RetryPending", mock.Anything).Return(errors.New("mongo down"))

	err := scheduler.Start(context.Background(), "@every 100ms")
	assert.NoError(t, err)

	time.Sleep(350 * time.Millisecond)

	scheduler.Stop()

	// Несмотря на ошибки, вызовы продолжаются
	assert.GreaterOrEqual(t, len(mockSvc.Calls), 2)
}

// ===================== Stop Tests =====================

func TestCronScheduler_Stop(t *testing.T) {
	mockSvc := new(MockNotificationService)
	scheduler := NewCronScheduler(mockSvc)

	err := scheduler.Start(context.Background(), "*/5 * * * *")
	assert.NoError(t, err)

	scheduler.Stop()

	assert.NotNil(t, scheduler.cron)
}
