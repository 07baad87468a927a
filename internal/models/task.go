package models

import (
	"fmt"
	"time"
)

// WorkItem 一个待处理的表格行
// 由批处理器从非空URL单元格创建,处理一次后丢弃
type WorkItem struct {
	RowIndex int    // 数据行下标(0起,不含表头)
	RawURL   string // 单元格原始内容
	URL      string // 规范化后的URL
}

// String 用于日志输出
func (w WorkItem) String() string {
	return fmt.Sprintf("第%d行 %s", w.RowIndex+1, w.URL)
}

// SettleMode 根节点出现后的稳定等待策略
type SettleMode string

const (
	SettleFixed  SettleMode = "fixed"  // 固定时长休眠 (默认)
	SettleStable SettleMode = "stable" // 轮询直到DOM稳定,以settle_delay为上限
	SettleNone   SettleMode = "none"   // 不等待(离线回放)
)

// IsValid 检查模式是否受支持
func (m SettleMode) IsValid() bool {
	switch m {
	case SettleFixed, SettleStable, SettleNone:
		return true
	}
	return false
}

// BrowserConfig 浏览器配置
type BrowserConfig struct {
	Headless         bool          `mapstructure:"headless" json:"headless"`                     // 无头模式 (默认:true)
	NoSandbox        bool          `mapstructure:"no_sandbox" json:"no_sandbox"`                 // 容器内运行时需要
	Bin              string        `mapstructure:"bin" json:"bin,omitempty"`                     // 浏览器可执行文件路径,为空则自动下载/查找
	UserAgent        string        `mapstructure:"user_agent" json:"user_agent,omitempty"`       // 覆盖默认UA
	Stealth          bool          `mapstructure:"stealth" json:"stealth"`                       // 注入go-rod/stealth脚本
	IgnoreCertErrors bool          `mapstructure:"ignore_cert_errors" json:"ignore_cert_errors"` // 跳过HTTPS证书校验
	NavTimeout       time.Duration `mapstructure:"nav_timeout" json:"nav_timeout"`               // 导航+load事件超时
}

// WaitConfig 动态内容等待配置
type WaitConfig struct {
	RootSelector   string        `mapstructure:"root_selector" json:"root_selector"`     // 应用根节点选择器 (默认:#root)
	RootTimeout    time.Duration `mapstructure:"root_timeout" json:"root_timeout"`       // 根节点出现超时 (默认:30s)
	SettleMode     SettleMode    `mapstructure:"settle_mode" json:"settle_mode"`         // fixed|stable|none
	SettleDelay    time.Duration `mapstructure:"settle_delay" json:"settle_delay"`       // 固定等待时长或稳定轮询上限 (默认:10s)
	StableInterval time.Duration `mapstructure:"stable_interval" json:"stable_interval"` // DOM稳定采样间隔
	StableDiff     float64       `mapstructure:"stable_diff" json:"stable_diff"`         // 两次采样允许的差异比例
}

// ExtractConfig 字段提取配置
type ExtractConfig struct {
	Retries        int           `mapstructure:"retries" json:"retries"`                 // 每个字段的尝试次数 (默认:3)
	VisibleTimeout time.Duration `mapstructure:"visible_timeout" json:"visible_timeout"` // 单次可见性等待超时 (默认:30s)
	RetryDelay     time.Duration `mapstructure:"retry_delay" json:"retry_delay"`         // 重试间隔 (默认:5s)
}

// CaptureConfig 诊断文件配置
type CaptureConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Dir     string `mapstructure:"dir" json:"dir"` // 截图和页面源码输出目录 (默认:当前目录)
}

// Validate 验证等待配置
func (c *WaitConfig) Validate() error {
	if c.RootSelector == "" {
		return fmt.Errorf("根节点选择器不能为空")
	}
	if c.RootTimeout <= 0 {
		return fmt.Errorf("根节点超时必须大于0")
	}
	if !c.SettleMode.IsValid() {
		return fmt.Errorf("无效的稳定等待模式: %s (有效值: fixed, stable, none)", c.SettleMode)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("稳定等待时长不能为负数")
	}
	return nil
}

// Validate 验证提取配置
func (c *ExtractConfig) Validate() error {
	if c.Retries < 1 || c.Retries > 10 {
		return fmt.Errorf("重试次数必须在1-10之间")
	}
	if c.VisibleTimeout <= 0 {
		return fmt.Errorf("可见性等待超时必须大于0")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("重试间隔不能为负数")
	}
	return nil
}
