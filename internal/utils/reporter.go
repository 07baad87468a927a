package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Reporter 报告生成器
type Reporter struct {
	outputDir string
}

// NewReporter 创建报告生成器
func NewReporter(outputDir string) *Reporter {
	return &Reporter{outputDir: outputDir}
}

// SaveBatchReport 保存批处理报告,返回主报告路径
// 除主报告外,另存一份只含失败行的列表便于排查
func (r *Reporter) SaveBatchReport(report *models.BatchReport) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	reportPath := r.ReportPath(report.RunID)
	if err := r.saveJSONReport(r.outputDir, filepath.Base(reportPath), report); err != nil {
		return "", err
	}

	failed := make([]models.ItemReport, 0)
	for _, item := range report.Items {
		if item.ErrorKind != "" {
			failed = append(failed, item)
		}
	}
	failedName := fmt.Sprintf("failed_rows_%s.json", report.RunID)
	if err := r.saveJSONReport(r.outputDir, failedName, failed); err != nil {
		return "", err
	}

	Infof("✅ 报告已生成: %s", reportPath)
	return reportPath, nil
}

// ReportPath 批次主报告路径
func (r *Reporter) ReportPath(runID string) string {
	return filepath.Join(r.outputDir, fmt.Sprintf("batch_report_%s.json", runID))
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(dir string, filename string, data interface{}) error {
	path := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
