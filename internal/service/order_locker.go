package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/storefront-next/internal/cache"
)

// OrderLocker 订单 / 配送员级别的互斥锁
type OrderLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// NewOrderLocker Redis 可用时使用分布式锁，否则退化为进程内锁
func NewOrderLocker() OrderLocker {
	if cache.Enabled() {
		return &RedisOrderLocker{ttl: 30 * time.Second, wait: 5 * time.Second}
	}
	return NewLocalOrderLocker(5 * time.Second)
}

func orderLockKey(orderID uint) string {
	return fmt.Sprintf("order:%d", orderID)
}

func shipperLockKey(shipperID uint) string {
	return fmt.Sprintf("shipper:%d", shipperID)
}

// RedisOrderLocker 基于 SET NX 的锁
type RedisOrderLocker struct {
	ttl  time.Duration
	wait time.Duration
}

// Lock 获取锁
func (l *RedisOrderLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlock, err := cache.Lock(ctx, key, l.ttl, l.wait)
	if err != nil {
		if errors.Is(err, cache.ErrLockNotAcquired) {
			return nil, ErrOrderBusy
		}
		return nil, err
	}
	return unlock, nil
}

type localLockEntry struct {
	ch   chan struct{}
	refs int
}

// LocalOrderLocker 进程内按 key 的互斥锁
type LocalOrderLocker struct {
	mu      sync.Mutex
	entries map[string]*localLockEntry
	wait    time.Duration
}

// NewLocalOrderLocker 创建进程内锁
func NewLocalOrderLocker(wait time.Duration) *LocalOrderLocker {
	return &LocalOrderLocker{
		entries: make(map[string]*localLockEntry),
		wait:    wait,
	}
}

// Lock 获取锁，超过等待时间返回 ErrOrderBusy
func (l *LocalOrderLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &localLockEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}
	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry)
		return nil, ErrOrderBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			l.release(key, entry)
		})
	}, nil
}

func (l *LocalOrderLocker) release(key string, entry *localLockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}
