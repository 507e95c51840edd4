package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name     string
	startErr error
	stopped  atomic.Bool
	stopCh   chan struct{}
}

func newFakeService(name string, startErr error) *fakeService {
	return &fakeService{name: name, startErr: startErr, stopCh: make(chan struct{})}
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	select {
	case <-ctx.Done():
	case <-s.stopCh:
	}
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	return nil
}

func TestRunnerStopsAllOnCancel(t *testing.T) {
	api := newFakeService("http", nil)
	worker := newFakeService("worker", nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- NewRunner(api, worker).Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
	assert.True(t, api.stopped.Load())
	assert.True(t, worker.stopped.Load())
}

func TestRunnerPropagatesServiceFailure(t *testing.T) {
	boom := errors.New("listen failed")
	api := newFakeService("http", boom)
	worker := newFakeService("worker", nil)

	err := NewRunner(api, worker).Run(context.Background(), time.Second, nil)
	assert.ErrorIs(t, err, boom)
	assert.True(t, worker.stopped.Load())
}

func TestRunnerRejectsEmpty(t *testing.T) {
	assert.Error(t, NewRunner().Run(context.Background(), time.Second, nil))
	assert.Error(t, NewRunner(nil).Run(context.Background(), time.Second, nil))
}
