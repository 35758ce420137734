package service_test

import (
	"context"

	"go-weave/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Dispatch(ctx context.Context, req domain.DispatchRequest) (*domain.DispatchResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*domain.DispatchResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) PublishExecutionDispatched(ctx context.Context, event domain.ExecutionDispatchedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventBus) SubscribeToStageEvents(ctx context.Context) (<-chan domain.StageChangedEvent, error) {
	args := m.Called(ctx)
	ch, _ := args.Get(0).(chan domain.StageChangedEvent)
	return ch, args.Error(1)
}

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Push(ctx context.Context, jobID string) error {
	return m.Called(ctx, jobID).Error(0)
}

func (m *MockQueue) Depth(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
