package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/crawlers"
	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/RecoveryAshes/billdigest/internal/utils"
)

// Pipeline 单个WorkItem的处理流程
// 打开会话 -> 导航 -> 等待根节点 -> 稳定等待 -> 逐字段提取 -> 保存诊断文件 -> 关闭会话
type Pipeline struct {
	launcher  crawlers.Launcher
	waiter    *crawlers.Waiter
	extractor *crawlers.FieldExtractor
	capturer  *crawlers.Capturer // nil表示不保存诊断文件
	monitor   *crawlers.ResourceMonitor
	rules     []models.FieldRule
}

// PipelineOption 流程可选项
type PipelineOption func(*Pipeline)

// WithCapturer 启用诊断文件保存
func WithCapturer(c *crawlers.Capturer) PipelineOption {
	return func(p *Pipeline) { p.capturer = c }
}

// WithResourceMonitor 启动浏览器前检查系统资源
func WithResourceMonitor(m *crawlers.ResourceMonitor) PipelineOption {
	return func(p *Pipeline) { p.monitor = m }
}

// NewPipeline 创建处理流程
func NewPipeline(
	launcher crawlers.Launcher,
	waiter *crawlers.Waiter,
	extractor *crawlers.FieldExtractor,
	rules []models.FieldRule,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		launcher:  launcher,
		waiter:    waiter,
		extractor: extractor,
		rules:     rules,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rules 流程使用的字段规则表
func (p *Pipeline) Rules() []models.FieldRule {
	return p.rules
}

// Process 处理一个WorkItem
// 任何错误(包括panic)都被限制在本行内:记录到结果中,未取得的字段保留占位值
func (p *Pipeline) Process(ctx context.Context, item models.WorkItem) (result models.ExtractionResult) {
	startTime := time.Now()
	result = models.DefaultResult(item, p.rules)

	defer func() {
		result.Duration = time.Since(startTime)
	}()

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("处理过程中发生panic: %v", r)
			utils.Errorf("%s 处理时发生panic: %v\n%s", item, r, debug.Stack())
		}
	}()

	if err := models.ValidateURL(item.URL); err != nil {
		result.Err = err
		utils.Errorf("跳过无效URL %s: %v", item, err)
		return result
	}

	if p.monitor != nil {
		if _, err := p.monitor.WaitForResources(ctx); err != nil {
			utils.Debugf("资源等待被中断: %v", err)
		}
	}

	session, err := p.launcher.Open()
	if err != nil {
		result.Err = err
		utils.Errorf("❌ %s: %v", item, err)
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			utils.Warnf("关闭浏览器会话失败: %v", err)
		}
	}()

	if err := p.load(session, item.URL); err != nil {
		result.Err = err
		utils.Errorf("❌ %s: %v", item, err)
		p.capture(session, &result)
		return result
	}

	values, err := p.extractor.ExtractAll(session, p.rules)
	for _, v := range values {
		result.Set(v)
	}
	if err != nil {
		result.Err = err
		utils.Errorf("❌ %s: %v", item, err)
	}

	p.capture(session, &result)
	return result
}

// load 导航并等待应用挂载
func (p *Pipeline) load(session crawlers.Session, url string) error {
	if err := session.Navigate(url); err != nil {
		return err
	}
	if err := p.waiter.WaitForAppRoot(session, url); err != nil {
		return err
	}
	p.waiter.Settle(session)
	return nil
}

// capture 保存诊断文件,失败只记录日志
func (p *Pipeline) capture(doc crawlers.Document, result *models.ExtractionResult) {
	if p.capturer == nil {
		return
	}
	artifacts, errs := p.capturer.Capture(doc, result.Item.URL)
	result.Artifacts = artifacts
	for _, err := range errs {
		utils.Warnf("%v", err)
	}
}
