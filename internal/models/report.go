package models

import (
	"encoding/json"
	"time"
)

// BatchSummary 批量处理摘要
type BatchSummary struct {
	RunID        string  `json:"run_id"`
	TotalRows    int     `json:"total_rows"`    // 数据行总数
	Processed    int     `json:"processed"`     // 已处理的URL数
	Skipped      int     `json:"skipped"`       // URL为空而跳过的行
	Complete     int     `json:"complete"`      // 所有启用字段均找到
	Partial      int     `json:"partial"`       // 部分字段找到
	Failed       int     `json:"failed"`        // 全部占位值
	Interrupted  bool    `json:"interrupted"`   // 被中断(剩余行未处理)
	OutputPath   string  `json:"output_path"`   // 输出文件
	ReportPath   string  `json:"report_path"`   // JSON报告
	DurationSecs float64 `json:"duration_secs"` // 总耗时(秒)
}

// ItemReport 单行处理报告
type ItemReport struct {
	Row       int              `json:"row"`
	URL       string           `json:"url"`
	Values    []FieldValue     `json:"values"`
	ErrorKind string           `json:"error_kind,omitempty"`
	ErrorMsg  string           `json:"error_msg,omitempty"`
	Artifacts CaptureArtifacts `json:"artifacts"`
	Duration  float64          `json:"duration"` // 秒
}

// BatchReport 批量处理报告
type BatchReport struct {
	RunID      string       `json:"run_id"`
	InputPath  string       `json:"input_path"`
	OutputPath string       `json:"output_path"`
	StartTime  time.Time    `json:"start_time"`
	EndTime    time.Time    `json:"end_time"`
	Summary    BatchSummary `json:"summary"`
	Rules      []FieldRule  `json:"rules"`
	Items      []ItemReport `json:"items"`
}

// NewItemReport 由提取结果构造单行报告
func NewItemReport(r ExtractionResult) ItemReport {
	item := ItemReport{
		Row:       r.Item.RowIndex + 1,
		URL:       r.Item.URL,
		Values:    r.Values,
		Artifacts: r.Artifacts,
		Duration:  r.Duration.Seconds(),
	}
	if r.Err != nil {
		item.ErrorKind = ErrorKind(r.Err)
		item.ErrorMsg = r.Err.Error()
	}
	return item
}

// ToJSON 序列化为JSON
func (r *BatchReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *BatchReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
