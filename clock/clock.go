package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/hudcostreets/ht-sub001/utils/mathutil"
)

// Hour 默认的显示周期（分钟）
const Hour = 60.0

// Clock 仿真时钟
// 功能：把真实时间换算为模拟分钟，每秒真实时间推进Speed分钟
// 说明：T是不取模的绝对分钟，显示时取模到一个周期内；推进与读取可在不同协程中进行
type Clock struct {
	mu     sync.RWMutex
	speed  float64 // 每秒真实时间推进的模拟分钟数
	period float64 // 显示周期（分钟）
	start  float64 // 起始分钟
	t      float64 // 当前绝对分钟
	step   int64   // 已推进的步数
}

// New 创建时钟
// 参数：speed-每秒推进的模拟分钟数（非正时为1），start-起始绝对分钟，period-显示周期（非正时为Hour）
func New(speed, start, period float64) *Clock {
	if speed <= 0 {
		speed = 1
	}
	if period <= 0 {
		period = Hour
	}
	return &Clock{speed: speed, period: period, start: start, t: start}
}

// Init 回到起始分钟
func (c *Clock) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.start
	c.step = 0
}

// Advance 推进真实时间dt对应的模拟分钟
// 返回：推进后的绝对分钟
func (c *Clock) Advance(dt time.Duration) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t += dt.Seconds() * c.speed
	c.step++
	return c.t
}

// T 当前绝对分钟
func (c *Clock) T() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

// Step 已推进的步数
func (c *Clock) Step() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step
}

// Speed 每秒推进的模拟分钟数
func (c *Clock) Speed() float64 {
	return c.speed
}

// Period 显示周期
func (c *Clock) Period() float64 {
	return c.period
}

// GetMinuteSecond 当前时刻在一个周期内的分、秒
// 返回：分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetMinuteSecond() (int, float64) {
	m := mathutil.FloorMod(c.T(), c.period)
	minute := int(m)
	return minute, (m - float64(minute)) * 60
}

// String 获取时钟的字符串表示（MM:SS）
func (c *Clock) String() string {
	minute, second := c.GetMinuteSecond()
	return fmt.Sprintf("%02d:%02d", minute, int(second))
}
