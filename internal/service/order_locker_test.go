package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLocalOrderLockerSerializesSameKey(t *testing.T) {
	locker := NewLocalOrderLocker(50 * time.Millisecond)
	unlock, err := locker.Lock(context.Background(), orderLockKey(1))
	if err != nil {
		t.Fatalf("first lock failed: %v", err)
	}
	if _, err := locker.Lock(context.Background(), orderLockKey(1)); !errors.Is(err, ErrOrderBusy) {
		t.Fatalf("want ErrOrderBusy got %v", err)
	}
	other, err := locker.Lock(context.Background(), orderLockKey(2))
	if err != nil {
		t.Fatalf("other key should not block: %v", err)
	}
	other()
	unlock()
	unlock()

	again, err := locker.Lock(context.Background(), orderLockKey(1))
	if err != nil {
		t.Fatalf("lock after release failed: %v", err)
	}
	again()
	if len(locker.entries) != 0 {
		t.Fatalf("entries should be released, got %d", len(locker.entries))
	}
}

func TestLocalOrderLockerConcurrentCounter(t *testing.T) {
	locker := NewLocalOrderLocker(time.Second)
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), shipperLockKey(7))
			if err != nil {
				t.Errorf("lock failed: %v", err)
				return
			}
			counter++
			unlock()
		}()
	}
	wg.Wait()
	if counter != 20 {
		t.Fatalf("counter want 20 got %d", counter)
	}
}
