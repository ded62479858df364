// Package timer 实现大厅的回合计时器：每秒递减一次剩余秒数，
// 并把新值发送到大厅的 tick 通道。
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Period 计时器的滴答周期
const Period = time.Second

// Tick 一次滴答。Epoch 随每次 SetRemaining 递增，
// 接收方据此丢弃在重新设置之前产生的过期滴答。
type Tick struct {
	Remaining int
	Epoch     uint64
}

// RoundTimer 大厅计时器，状态为 Idle → Running，Stop 后不可再启动
type RoundTimer struct {
	clock clockwork.Clock
	ticks chan<- Tick

	mu        sync.Mutex
	remaining int
	epoch     uint64
	running   bool
	stopped   bool
	stop      chan struct{}
	done      chan struct{}
}

// New 创建计时器，ticks 为大厅消费的通道
func New(clock clockwork.Clock, ticks chan<- Tick) *RoundTimer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoundTimer{
		clock: clock,
		ticks: ticks,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start 启动计时器，重复调用无效果
func (t *RoundTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running || t.stopped {
		return
	}
	t.running = true
	ticker := t.clock.NewTicker(Period)
	go t.run(ticker)
}

// SetRemaining 设置剩余秒数，任何状态下都可调用
func (t *RoundTimer) SetRemaining(seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining = max(seconds, 0)
	t.epoch++
}

// Remaining 当前剩余秒数
func (t *RoundTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Epoch 当前倒计时窗口的编号
func (t *RoundTimer) Epoch() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch
}

// Running 计时器是否在运行
func (t *RoundTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Stop 永久停止计时器，等待 tick 协程退出
func (t *RoundTimer) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	wasRunning := t.running
	t.running = false
	close(t.stop)
	t.mu.Unlock()

	if wasRunning {
		<-t.done
	}
}

func (t *RoundTimer) run(ticker clockwork.Ticker) {
	defer close(t.done)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.Chan():
			tick := t.tick()
			select {
			case t.ticks <- tick:
			case <-t.stop:
				return
			}
		}
	}
}

// tick 递减剩余秒数，下限为 0
func (t *RoundTimer) tick() Tick {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remaining > 0 {
		t.remaining--
	}
	return Tick{Remaining: t.remaining, Epoch: t.epoch}
}
