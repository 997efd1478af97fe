package cache

import (
	"context"
	"sync"
	"time"
)

// entry は値と有効期限の組。expiresAtがゼロ値の場合は無期限。
type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore はテスト・開発用のプロセス内Store実装。
// エントリごとのTTLを持ち、期限切れは読み取り時に破棄する。
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   func() time.Time
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock は時刻取得関数を注入してMemoryStoreを生成する。
// テストで期限切れを決定的に再現するために使用する。
func NewMemoryStoreWithClock(clock func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Get は指定キーの値を返す。未登録・期限切れはErrCacheMiss。
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !s.clock().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, ErrCacheMiss
	}

	return e.value, nil
}

// Set は値をTTL付きで保存する。ttl<=0は無期限。
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.clock().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()

	return nil
}

// Delete は指定キーを削除する。
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
