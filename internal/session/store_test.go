package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-assistant-go/internal/types"
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestStoreGetPutDelete(t *testing.T) {
	store := NewStore(time.Hour, time.Minute)

	_, ok := store.Get("user-1")
	assert.False(t, ok, "不存在的会话应返回false")

	sess := types.NewSession("user-1")
	store.Put("user-1", sess)
	assert.Equal(t, 1, store.Len())

	got, ok := store.Get("user-1")
	require.True(t, ok)
	assert.Same(t, sess, got)

	store.Delete("user-1")
	_, ok = store.Get("user-1")
	assert.False(t, ok)

	// 删除不存在的会话静默成功
	store.Delete("user-1")
	assert.Equal(t, 0, store.Len())
}

func TestStorePutReplacesWholesale(t *testing.T) {
	store := NewStore(time.Hour, time.Minute)

	first := types.NewSession("user-1")
	first.CVData.Personal.Name = "Primera"
	store.Put("user-1", first)

	second := types.NewSession("user-1")
	second.CVData.Personal.Name = "Segunda"
	store.Put("user-1", second)

	got, ok := store.Get("user-1")
	require.True(t, ok)
	assert.Equal(t, "Segunda", got.CVData.Personal.Name, "Put应整体替换而不是合并")
	assert.Equal(t, 1, store.Len())
}

func TestStoreSweepExpired(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(time.Hour, time.Minute, WithClock(clock.Now))

	store.Put("stale", types.NewSession("stale"))

	// 推进到接近过期，再写入一个新会话
	clock.Advance(50 * time.Minute)
	store.Put("fresh", types.NewSession("fresh"))

	// 此时 stale 空闲50分钟，还没过期
	removed := store.SweepExpired()
	assert.Equal(t, 0, removed)
	assert.Equal(t, 2, store.Len())

	// 再推进20分钟：stale 空闲70分钟过期，fresh 空闲20分钟保留
	clock.Advance(20 * time.Minute)
	removed = store.SweepExpired()
	assert.Equal(t, 1, removed)

	_, ok := store.Get("stale")
	assert.False(t, ok, "过期会话应被清理")
	_, ok = store.Get("fresh")
	assert.True(t, ok, "未过期会话应保留")
}

func TestStoreGetRefreshesExpiry(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(time.Hour, time.Minute, WithClock(clock.Now))

	store.Put("user-1", types.NewSession("user-1"))

	// 每40分钟访问一次，跨度远超TTL但始终不过期
	for i := 0; i < 3; i++ {
		clock.Advance(40 * time.Minute)
		_, ok := store.Get("user-1")
		require.True(t, ok)
		assert.Equal(t, 0, store.SweepExpired(), "持续访问的会话不应过期")
	}

	// 停止访问后超过TTL才被清理
	clock.Advance(61 * time.Minute)
	assert.Equal(t, 1, store.SweepExpired())
}

func TestStoreMaxEntriesEvictsOldest(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(time.Hour, time.Minute, WithClock(clock.Now), WithMaxEntries(3))

	for i := 0; i < 3; i++ {
		store.Put(fmt.Sprintf("user-%d", i), types.NewSession(fmt.Sprintf("user-%d", i)))
		clock.Advance(time.Minute)
	}

	// 访问 user-0，让 user-1 成为最久未访问
	_, ok := store.Get("user-0")
	require.True(t, ok)
	clock.Advance(time.Minute)

	store.Put("user-3", types.NewSession("user-3"))

	assert.Equal(t, 3, store.Len(), "达到上限时插入不应超过maxEntries")
	_, ok = store.Get("user-1")
	assert.False(t, ok, "最久未访问的会话应被淘汰")
	_, ok = store.Get("user-0")
	assert.True(t, ok)
	_, ok = store.Get("user-3")
	assert.True(t, ok)
}

func TestStoreMaxEntriesExistingKeyNotEvicted(t *testing.T) {
	store := NewStore(time.Hour, time.Minute, WithMaxEntries(2))

	store.Put("a", types.NewSession("a"))
	store.Put("b", types.NewSession("b"))

	// 覆盖已有键不触发淘汰
	store.Put("a", types.NewSession("a"))
	assert.Equal(t, 2, store.Len())
	_, ok := store.Get("b")
	assert.True(t, ok)
}

func TestStoreSweeperRunsInBackground(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(time.Hour, 5*time.Millisecond, WithClock(clock.Now))

	store.Put("stale", types.NewSession("stale"))
	clock.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartSweeper(ctx)

	assert.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 10*time.Millisecond, "后台清理任务应删除过期会话")
}
