package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/core"
)

type MockTrainer struct {
	mock.Mock
}

func (m *MockTrainer) Train(ctx context.Context) (*core.FittedModel, error) {
	args := m.Called(ctx)
	model, _ := args.Get(0).(*core.FittedModel)
	return model, args.Error(1)
}

func TestModelTrainsOnce(t *testing.T) {
	model := &core.FittedModel{Version: "abc"}
	trainer := new(MockTrainer)
	trainer.On("Train", mock.Anything).Return(model, nil).Once()

	r := NewModelRegistry(trainer, zap.NewNop())

	var wg sync.WaitGroup
	results := make([]*core.FittedModel, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := r.Model(context.Background())
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range results {
		assert.Same(t, model, m)
	}
	trainer.AssertNumberOfCalls(t, "Train", 1)
}

func TestModelCachesFailure(t *testing.T) {
	boom := errors.New("dataset missing")
	trainer := new(MockTrainer)
	trainer.On("Train", mock.Anything).Return(nil, boom).Once()

	r := NewModelRegistry(trainer, zap.NewNop())

	_, err := r.Model(context.Background())
	require.ErrorIs(t, err, boom)
	_, err = r.Model(context.Background())
	require.ErrorIs(t, err, boom)

	trainer.AssertNumberOfCalls(t, "Train", 1)
}

func TestModelIgnoresCallerCancellation(t *testing.T) {
	model := &core.FittedModel{Version: "abc"}
	trainer := new(MockTrainer)
	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	trainer.On("Train", live).Return(model, nil).Once()

	r := NewModelRegistry(trainer, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := r.Model(ctx)
	require.NoError(t, err)
	assert.Same(t, model, m)

	m, err = r.Model(context.Background())
	require.NoError(t, err)
	assert.Same(t, model, m)
	trainer.AssertExpectations(t)
}
