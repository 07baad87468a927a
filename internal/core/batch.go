package core

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/RecoveryAshes/billdigest/internal/sheet"
	"github.com/RecoveryAshes/billdigest/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// BatchRunner 逐行处理工作簿
type BatchRunner struct {
	config   *Config
	pipeline *Pipeline
	reporter *utils.Reporter

	// ShowProgress 是否在控制台显示进度条
	ShowProgress bool
	// Sleep 行间等待使用的休眠函数,测试时可替换
	Sleep func(time.Duration)
}

// NewBatchRunner 创建批处理器
func NewBatchRunner(config *Config, pipeline *Pipeline) *BatchRunner {
	br := &BatchRunner{
		config:       config,
		pipeline:     pipeline,
		ShowProgress: true,
		Sleep:        time.Sleep,
	}
	if config.Output.ReportDir != "" {
		br.reporter = utils.NewReporter(config.Output.ReportDir)
	}
	return br
}

// Run 执行批处理
//
// 先顺序处理所有行并收集结果,再一次性写入工作簿并另存为输出文件。
// ctx只在行与行之间检查,取消后已处理的行仍会保存。
func (br *BatchRunner) Run(ctx context.Context) (*models.BatchSummary, error) {
	startTime := time.Now()
	inPath, outPath := br.config.Input.Path, br.config.Output.Path

	if samePath(inPath, outPath) {
		return nil, fmt.Errorf("输出文件不能与输入文件相同: %s", outPath)
	}

	wb, err := sheet.Open(inPath, br.config.Input.Sheet)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	urlCol, err := wb.ColumnIndex(br.config.Input.URLColumn)
	if err != nil {
		return nil, fmt.Errorf("工作表 %s 缺少URL列: %w", wb.Sheet(), err)
	}

	rules := br.pipeline.Rules()
	columns := make(map[string]int, len(rules))
	for _, name := range models.OutputColumns(rules) {
		idx, err := wb.EnsureColumn(name)
		if err != nil {
			return nil, fmt.Errorf("创建输出列 %s 失败: %w", name, err)
		}
		columns[name] = idx
	}

	summary := &models.BatchSummary{
		RunID:      models.NewRunID(),
		TotalRows:  wb.RowCount(),
		OutputPath: outPath,
	}

	items := br.collectItems(wb, urlCol)
	summary.Skipped = summary.TotalRows - len(items)

	utils.Infof("🚀 开始批量处理: %d个URL (共%d行, 跳过%d个空行)", len(items), summary.TotalRows, summary.Skipped)

	results := br.processItems(ctx, items, summary)

	for _, r := range results {
		for _, v := range r.Values {
			if err := wb.SetText(r.Item.RowIndex, columns[v.Column], v.Value); err != nil {
				return summary, fmt.Errorf("写入%s失败: %w", r.Item, err)
			}
		}
		switch classify(r, rules) {
		case outcomeComplete:
			summary.Complete++
		case outcomePartial:
			summary.Partial++
		default:
			summary.Failed++
		}
	}

	if err := wb.SaveAs(outPath); err != nil {
		return summary, err
	}
	utils.Infof("✅ 结果已保存: %s", outPath)

	endTime := time.Now()
	summary.DurationSecs = endTime.Sub(startTime).Seconds()

	if br.reporter != nil {
		report := &models.BatchReport{
			RunID:      summary.RunID,
			InputPath:  inPath,
			OutputPath: outPath,
			StartTime:  startTime,
			EndTime:    endTime,
			Rules:      rules,
			Items:      make([]models.ItemReport, 0, len(results)),
		}
		for _, r := range results {
			report.Items = append(report.Items, models.NewItemReport(r))
		}
		summary.ReportPath = br.reporter.ReportPath(summary.RunID)
		report.Summary = *summary
		if _, err := br.reporter.SaveBatchReport(report); err != nil {
			summary.ReportPath = ""
			utils.Warnf("保存批处理报告失败: %v", err)
		}
	}

	br.printSummary(summary, results)
	return summary, nil
}

// collectItems 为URL非空的行创建WorkItem,保持行顺序
func (br *BatchRunner) collectItems(wb *sheet.Workbook, urlCol int) []models.WorkItem {
	items := make([]models.WorkItem, 0, wb.RowCount())
	for row := 0; row < wb.RowCount(); row++ {
		raw := wb.Cell(row, urlCol)
		url := utils.SanitizeURL(raw)
		if url == "" {
			continue
		}
		items = append(items, models.WorkItem{RowIndex: row, RawURL: raw, URL: url})
	}
	return items
}

// processItems 顺序处理,收集结果
func (br *BatchRunner) processItems(ctx context.Context, items []models.WorkItem, summary *models.BatchSummary) []models.ExtractionResult {
	results := make([]models.ExtractionResult, 0, len(items))

	var bar *progressbar.ProgressBar
	if br.ShowProgress && len(items) > 0 {
		bar = utils.NewProgressBar(len(items), "处理中")
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			summary.Interrupted = true
			utils.Warnf("批处理被中断,剩余%d个URL未处理", len(items)-i)
			break
		}

		utils.Infof("==================== [%d/%d] ====================", i+1, len(items))
		utils.Infof("目标URL: %s", item.URL)

		result := br.pipeline.Process(ctx, item)
		results = append(results, result)
		summary.Processed++

		if bar != nil {
			_ = bar.Add(1)
		}

		if i < len(items)-1 && br.config.Batch.Delay > 0 {
			utils.Debugf("等待 %.0f 秒后处理下一个URL...", br.config.Batch.Delay.Seconds())
			br.Sleep(br.config.Batch.Delay)
		}
	}

	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}
	return results
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomePartial
	outcomeComplete
)

// classify 按启用字段的命中情况归类
func classify(r models.ExtractionResult, rules []models.FieldRule) outcome {
	active, found := 0, 0
	for _, rule := range rules {
		if !rule.Active() {
			continue
		}
		active++
		for _, v := range r.Values {
			if v.Field == rule.Name && v.Found {
				found++
			}
		}
	}

	switch {
	case active == 0 && r.Err == nil:
		return outcomeComplete
	case found == 0:
		return outcomeFailed
	case found < active:
		return outcomePartial
	default:
		return outcomeComplete
	}
}

// printSummary 打印批处理摘要
func (br *BatchRunner) printSummary(summary *models.BatchSummary, results []models.ExtractionResult) {
	utils.Info("==================================================")
	utils.Info("📊 批处理摘要")
	utils.Info("==================================================")
	utils.Infof("数据行: %d", summary.TotalRows)
	utils.Infof("已处理: %d", summary.Processed)
	utils.Infof("⏭️  空行跳过: %d", summary.Skipped)
	utils.Infof("✅ 全部字段: %d", summary.Complete)
	utils.Infof("⚠️  部分字段: %d", summary.Partial)
	utils.Infof("❌ 未取得: %d", summary.Failed)
	utils.Infof("⏱️  总耗时: %.2f秒", summary.DurationSecs)
	if summary.ReportPath != "" {
		utils.Infof("📄 报告: %s", summary.ReportPath)
	}
	utils.Info("==================================================")

	if summary.Interrupted {
		utils.Warn("批处理被中断,未处理的行保持原样")
	}

	if summary.Failed+summary.Partial > 0 {
		utils.Warn("未完整提取的URL:")
		for _, r := range results {
			if r.Err != nil {
				utils.Warnf("  - %s [%s]: %v", r.Item, models.ErrorKind(r.Err), r.Err)
			}
		}
	}
}
