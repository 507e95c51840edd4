package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalTimeoutSchedulerFiresHandler(t *testing.T) {
	scheduler := NewLocalTimeoutScheduler()
	defer scheduler.Stop()
	fired := make(chan uint, 1)
	scheduler.SetHandler(func(_ context.Context, orderID uint) error {
		fired <- orderID
		return nil
	})

	if err := scheduler.Schedule(context.Background(), 42, 10*time.Millisecond); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	select {
	case id := <-fired:
		if id != 42 {
			t.Fatalf("fired for %d", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout handler not fired")
	}
	if scheduler.Pending() != 0 {
		t.Fatalf("fired timer should be removed")
	}
}

func TestLocalTimeoutSchedulerCancel(t *testing.T) {
	scheduler := NewLocalTimeoutScheduler()
	defer scheduler.Stop()
	fired := make(chan uint, 1)
	scheduler.SetHandler(func(_ context.Context, orderID uint) error {
		fired <- orderID
		return nil
	})

	_ = scheduler.Schedule(context.Background(), 7, 30*time.Millisecond)
	_ = scheduler.Schedule(context.Background(), 7, time.Hour)
	if scheduler.Pending() != 1 {
		t.Fatalf("duplicate schedule should keep one timer, got %d", scheduler.Pending())
	}
	if err := scheduler.Cancel(context.Background(), 7); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	select {
	case <-fired:
		t.Fatalf("canceled timer fired")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestLocalTimeoutSchedulerDrivesRevocation(t *testing.T) {
	fx := placeGatewayOrder(t, "timeout_local_revoke")
	env := fx.env
	scheduler := NewLocalTimeoutScheduler()
	defer scheduler.Stop()
	done := make(chan error, 1)
	scheduler.SetHandler(func(ctx context.Context, orderID uint) error {
		err := RevokeUnpaidOrder(ctx, env.lifecycle, orderID)
		done <- err
		return err
	})

	if err := scheduler.Schedule(context.Background(), fx.result.Order.ID, 5*time.Millisecond); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("revocation failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("revocation not triggered")
	}
	if got := env.reloadOrder(t, fx.result.Order.ID).Status; got != "payment_failed" {
		t.Fatalf("status want payment_failed got %s", got)
	}
	if env.scheduler.canceledCount() != 0 {
		t.Fatalf("timeout-triggered transition should not cancel the handle")
	}
}

func TestLocalTimeoutSchedulerRetriesFailedHandler(t *testing.T) {
	scheduler := NewLocalTimeoutScheduler()
	scheduler.retryDelay = 5 * time.Millisecond
	defer scheduler.Stop()

	var calls int32
	done := make(chan struct{})
	scheduler.SetHandler(func(_ context.Context, orderID uint) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return ErrOrderBusy
		}
		close(done)
		return nil
	})

	if err := scheduler.Schedule(context.Background(), 11, 5*time.Millisecond); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("failed revocation was not retried")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("handler calls want 2 got %d", got)
	}
	if scheduler.Pending() != 0 {
		t.Fatalf("settled timer should be removed")
	}
}

func TestLocalTimeoutSchedulerGivesUpAfterMaxRetries(t *testing.T) {
	scheduler := NewLocalTimeoutScheduler()
	scheduler.retryDelay = 2 * time.Millisecond
	scheduler.maxRetries = 2
	defer scheduler.Stop()

	var calls int32
	scheduler.SetHandler(func(_ context.Context, _ uint) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("database is locked")
	})

	_ = scheduler.Schedule(context.Background(), 12, 2*time.Millisecond)
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&calls) < 3 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(30 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("handler calls want 3 (1 + 2 retries) got %d", got)
	}
	if scheduler.Pending() != 0 {
		t.Fatalf("no timer should remain after giving up")
	}
}

func TestLocalTimeoutSchedulerRetryRevokesOrder(t *testing.T) {
	fx := placeGatewayOrder(t, "timeout_local_retry")
	env := fx.env
	scheduler := NewLocalTimeoutScheduler()
	scheduler.retryDelay = 5 * time.Millisecond
	defer scheduler.Stop()

	var calls int32
	done := make(chan error, 1)
	scheduler.SetHandler(func(ctx context.Context, orderID uint) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return ErrOrderBusy
		}
		err := RevokeUnpaidOrder(ctx, env.lifecycle, orderID)
		done <- err
		return err
	})

	_ = scheduler.Schedule(context.Background(), fx.result.Order.ID, 5*time.Millisecond)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("retried revocation failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("revocation not retried")
	}
	if got := env.reloadOrder(t, fx.result.Order.ID).Status; got != "payment_failed" {
		t.Fatalf("status want payment_failed got %s", got)
	}
	if got := env.stockOf(t, fx.sku.ID); got != 4 {
		t.Fatalf("stock should be restored to 4, got %d", got)
	}
}
