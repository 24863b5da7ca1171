// Package session 提供按 userId 索引的内存会话存储。
//
// 会话不做持久化也不跨进程共享（设计上明确排除）。同一 userId 的并发
// 请求不做串行化：两个并发的读-改-写会竞争，最后一次 Put 获胜，丢失
// 更新在单实例部署下是可接受的取舍。
package session

import (
	"context"
	"sync"
	"time"

	"cv-assistant-go/internal/logger"
	"cv-assistant-go/internal/types"
)

// Store 内存会话存储，带空闲过期清理。
// 所有方法都是并发安全的；后台清理与请求处理可以同时运行。
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*types.Session

	ttl           time.Duration
	sweepInterval time.Duration

	// maxEntries 为会话数上限，0表示不限制。达到上限时插入新键
	// 会淘汰最久未访问的会话，保证 Put 永不失败。
	maxEntries int

	// now 可注入的时钟，过期逻辑的测试不需要真实等待
	now func() time.Time
}

// Option 配置 Store 的可选项
type Option func(*Store)

// WithClock 注入自定义时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithMaxEntries 设置会话数上限
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		s.maxEntries = n
	}
}

// NewStore 创建会话存储。
// ttl 是会话的空闲过期阈值，sweepInterval 是后台清理的运行间隔。
func NewStore(ttl, sweepInterval time.Duration, opts ...Option) *Store {
	s := &Store{
		sessions:      make(map[string]*types.Session),
		ttl:           ttl,
		sweepInterval: sweepInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get 获取指定用户的会话并刷新其访问时间。
// 会话不存在时返回 (nil, false)，无任何副作用。
func (s *Store) Get(userID string) (*types.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	sess.LastAccessed = s.now()
	return sess, true
}

// Put 整体插入或替换会话（不做合并），并刷新访问时间
func (s *Store) Put(userID string, sess *types.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.LastAccessed = s.now()

	if _, exists := s.sessions[userID]; !exists && s.maxEntries > 0 && len(s.sessions) >= s.maxEntries {
		s.evictOldestLocked()
	}
	s.sessions[userID] = sess
}

// Delete 显式删除会话，不存在时静默成功
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len 返回当前会话数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// evictOldestLocked 淘汰最久未访问的会话，调用方必须持有写锁
func (s *Store) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, sess := range s.sessions {
		if oldestKey == "" || sess.LastAccessed.Before(oldest) {
			oldestKey = key
			oldest = sess.LastAccessed
		}
	}
	if oldestKey != "" {
		delete(s.sessions, oldestKey)
		logger.Warn().Str("user_id", oldestKey).Int("max_entries", s.maxEntries).
			Msg("会话数达到上限，淘汰最久未访问的会话")
	}
}

// SweepExpired 删除所有空闲超过 ttl 的会话，返回删除数量。
// 通常由 StartSweeper 周期性调用，测试可直接调用。
func (s *Store) SweepExpired() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, sess := range s.sessions {
		if sess.LastAccessed.Before(cutoff) {
			delete(s.sessions, userID)
			removed++
		}
	}
	return removed
}

// StartSweeper 启动后台清理任务，ctx 取消时退出。
// 单个 ticker 驱动，清理任务不会与自身并发。
func (s *Store) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info().Msg("会话清理任务退出")
				return
			case <-ticker.C:
				if removed := s.SweepExpired(); removed > 0 {
					logger.Info().Int("removed", removed).Int("remaining", s.Len()).
						Msg("清理过期会话")
				}
			}
		}
	}()
}
