package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SAP-F-2025/correction-service/internal/cache"
	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func workerRequest(resultID uint) *models.CorrectionRequest {
	return &models.CorrectionRequest{
		ResultID: resultID,
		TestID:   7,
		State:    models.ResultInProgress,
		Answers:  []models.CorrectionAnswer{{QuestionID: 1}},
	}
}

func TestCorrectionWorker_Handle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		returnErr error
		wantErr   bool
	}{
		{"success", nil, false},
		{"result gone is dropped", fmt.Errorf("%w: 1", ErrResultNotFound), false},
		{"invalid request is dropped", ErrInvalidCorrectionRequest, false},
		{"mismatch is dropped", ErrTestMismatch, false},
		{"storage failure is retried", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockCorrectionService{}
			if tt.returnErr == nil {
				service.On("Correct", mock.Anything, mock.Anything).
					Return(&models.CorrectionOutcome{ResultID: 1, Score: 1, MaxScore: 1, Percentage: 100}, nil)
			} else {
				service.On("Correct", mock.Anything, mock.Anything).Return(nil, tt.returnErr)
			}

			err := NewCorrectionWorker(service, cache.NewMemoryLocker(), testLogger()).Handle(ctx, workerRequest(1))

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			service.AssertExpectations(t)
		})
	}
}

func TestCorrectionWorker_SerializesPerResult(t *testing.T) {
	var running, maxRunning int32
	service := &MockCorrectionService{}
	service.On("Correct", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			n := atomic.AddInt32(&running, 1)
			for {
				m := atomic.LoadInt32(&maxRunning)
				if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		}).
		Return(&models.CorrectionOutcome{ResultID: 1}, nil)

	worker := NewCorrectionWorker(service, cache.NewMemoryLocker(), testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, worker.Handle(context.Background(), workerRequest(1)))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
	service.AssertNumberOfCalls(t, "Correct", 5)
}

func TestCorrectionWorker_LockTimeout(t *testing.T) {
	locker := cache.NewMemoryLocker()
	unlock, err := locker.Lock(context.Background(), "1")
	assert.NoError(t, err)
	defer unlock()

	service := &MockCorrectionService{}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = NewCorrectionWorker(service, locker, testLogger()).Handle(ctx, workerRequest(1))

	assert.ErrorIs(t, err, cache.ErrLockNotAcquired)
	service.AssertNotCalled(t, "Correct", mock.Anything, mock.Anything)
}
