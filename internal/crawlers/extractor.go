package crawlers

import (
	"time"

	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/RecoveryAshes/billdigest/internal/utils"
)

// FieldExtractor 按字段规则从页面读取文本
type FieldExtractor struct {
	config models.ExtractConfig

	// Sleep 重试间隔使用的休眠函数,测试时可替换
	Sleep func(time.Duration)
}

// NewFieldExtractor 创建字段提取器
func NewFieldExtractor(config models.ExtractConfig) *FieldExtractor {
	return &FieldExtractor{config: config, Sleep: time.Sleep}
}

// Extract 提取单个字段
//
// 每次尝试在一个VisibleTimeout窗口内竞速该字段的全部定位规则。
// 成功立即返回;失败扣减一次预算,还有剩余时休眠RetryDelay后重试,
// 最后一次失败后不再休眠。预算耗尽返回占位值和NotFoundError。
// 未配置定位规则的字段直接返回占位值,不消耗预算。
func (fe *FieldExtractor) Extract(doc Document, rule models.FieldRule) (models.FieldValue, error) {
	value := models.FieldValue{
		Field:  rule.Name,
		Column: rule.Column,
		Value:  rule.Sentinel,
	}

	if !rule.Active() {
		utils.Debugf("字段 %s 未配置定位规则,使用占位值", rule.Name)
		return value, nil
	}

	budget := models.NewRetryBudget(fe.config.Retries)
	var lastErr error

	for !budget.Exhausted() {
		attempt := budget.Attempt()
		text, err := doc.FindText(rule.Locators, fe.config.VisibleTimeout)
		if err == nil {
			budget.Consume()
			value.Value = text
			value.Found = true
			value.Attempts = budget.Used()
			utils.Debugf("字段 %s 第%d次尝试成功", rule.Name, attempt)
			return value, nil
		}

		lastErr = err
		budget.Consume()
		utils.Warnf("第%d次尝试: 未能找到字段 %s: %v", attempt, rule.Name, err)

		if fe.config.RetryDelay > 0 {
			fe.Sleep(fe.config.RetryDelay)
		}
	}

	value.Attempts = budget.Used()
	return value, &models.NotFoundError{Field: rule.Name, Attempts: budget.Used(), Err: lastErr}
}

// ExtractAll 按规则顺序提取全部字段
// 返回值与规则一一对应;第二个返回值是第一个字段错误
func (fe *FieldExtractor) ExtractAll(doc Document, rules []models.FieldRule) ([]models.FieldValue, error) {
	values := make([]models.FieldValue, 0, len(rules))
	var firstErr error
	for _, rule := range rules {
		v, err := fe.Extract(doc, rule)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		values = append(values, v)
	}
	return values, firstErr
}
