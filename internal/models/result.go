package models

import "time"

// DefaultRetries 每个字段的默认尝试次数
const DefaultRetries = 3

// RetryBudget 单个字段的重试预算
// 只由字段提取循环扣减,WorkItem结束后丢弃
type RetryBudget struct {
	Initial   int
	Remaining int
}

// NewRetryBudget 创建重试预算,attempts<1时使用默认值
func NewRetryBudget(attempts int) *RetryBudget {
	if attempts < 1 {
		attempts = DefaultRetries
	}
	return &RetryBudget{Initial: attempts, Remaining: attempts}
}

// Exhausted 预算是否已耗尽
func (b *RetryBudget) Exhausted() bool {
	return b.Remaining <= 0
}

// Consume 扣减一次尝试
func (b *RetryBudget) Consume() {
	if b.Remaining > 0 {
		b.Remaining--
	}
}

// Used 已消耗的尝试次数
func (b *RetryBudget) Used() int {
	return b.Initial - b.Remaining
}

// Attempt 当前是第几次尝试(1起)
func (b *RetryBudget) Attempt() int {
	return b.Used() + 1
}

// FieldValue 单个字段的提取结果
type FieldValue struct {
	Field    string `json:"field"`
	Column   string `json:"column"`
	Value    string `json:"value"`
	Found    bool   `json:"found"`
	Attempts int    `json:"attempts"`
}

// CaptureArtifacts 诊断文件路径
type CaptureArtifacts struct {
	Screenshot string `json:"screenshot,omitempty"`
	PageSource string `json:"page_source,omitempty"`
}

// ExtractionResult 一个WorkItem的提取结果
// 每个字段要么是真实值,要么是它的占位值
type ExtractionResult struct {
	Item      WorkItem
	Values    []FieldValue
	Artifacts CaptureArtifacts
	Err       error // WorkItem边界内捕获的第一个错误
	Duration  time.Duration
}

// DefaultResult 所有字段均为占位值的结果
func DefaultResult(item WorkItem, rules []FieldRule) ExtractionResult {
	values := make([]FieldValue, 0, len(rules))
	for _, r := range rules {
		values = append(values, FieldValue{
			Field:  r.Name,
			Column: r.Column,
			Value:  r.Sentinel,
		})
	}
	return ExtractionResult{Item: item, Values: values}
}

// Value 按字段名取值,不存在时返回空字符串
func (r ExtractionResult) Value(field string) string {
	for _, v := range r.Values {
		if v.Field == field {
			return v.Value
		}
	}
	return ""
}

// Set 写入字段结果
func (r *ExtractionResult) Set(v FieldValue) {
	for i := range r.Values {
		if r.Values[i].Field == v.Field {
			r.Values[i] = v
			return
		}
	}
	r.Values = append(r.Values, v)
}

// FoundCount 找到真实值的字段数
func (r ExtractionResult) FoundCount() int {
	n := 0
	for _, v := range r.Values {
		if v.Found {
			n++
		}
	}
	return n
}
