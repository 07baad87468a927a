package crawlers

import (
	"time"

	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/RecoveryAshes/billdigest/internal/utils"
)

const (
	defaultStableInterval = 500 * time.Millisecond
	defaultStableDiff     = 0.01
)

// Waiter 等待客户端渲染的应用完成挂载
type Waiter struct {
	config models.WaitConfig

	// Sleep 固定等待使用的休眠函数,测试时可替换
	Sleep func(time.Duration)
}

// NewWaiter 创建等待器
func NewWaiter(config models.WaitConfig) *Waiter {
	if config.StableInterval <= 0 {
		config.StableInterval = defaultStableInterval
	}
	if config.StableDiff <= 0 {
		config.StableDiff = defaultStableDiff
	}
	return &Waiter{config: config, Sleep: time.Sleep}
}

// WaitForAppRoot 等待应用根节点出现,超时返回RootNotFoundError
func (w *Waiter) WaitForAppRoot(doc Document, url string) error {
	if err := doc.WaitPresent(w.config.RootSelector, w.config.RootTimeout); err != nil {
		return &models.RootNotFoundError{URL: url, Selector: w.config.RootSelector, Err: err}
	}
	utils.Debugf("应用根节点已出现: %s", w.config.RootSelector)
	return nil
}

// Settle 根节点出现后等待异步内容渲染
// stable模式下DOM未收敛只记录日志,不视为失败
func (w *Waiter) Settle(doc Document) {
	switch w.config.SettleMode {
	case models.SettleNone:
		return
	case models.SettleFixed:
		if w.config.SettleDelay > 0 {
			w.Sleep(w.config.SettleDelay)
		}
	default:
		if w.config.SettleDelay <= 0 {
			return
		}
		start := time.Now()
		if err := doc.WaitStable(w.config.StableInterval, w.config.StableDiff, w.config.SettleDelay); err != nil {
			utils.Debugf("DOM在%v内未稳定,继续使用当前DOM: %v", w.config.SettleDelay, err)
			return
		}
		utils.Debugf("DOM已稳定,耗时 %v", time.Since(start).Round(time.Millisecond))
	}
}
