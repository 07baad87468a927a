package crawlers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/RecoveryAshes/billdigest/internal/utils"
)

// ScreenshotName 截图文件名
func ScreenshotName(slug string) string {
	return fmt.Sprintf("screenshot_%s.png", slug)
}

// PageSourceName 页面源码文件名
func PageSourceName(slug string) string {
	return fmt.Sprintf("page_source_%s.html", slug)
}

// Capturer 保存截图和页面源码用于事后排查
type Capturer struct {
	dir string
}

// NewCapturer 创建诊断文件写入器,dir为空时写入当前目录
func NewCapturer(dir string) *Capturer {
	return &Capturer{dir: dir}
}

// Capture 截图和源码互不影响,各自独立尝试
// 返回已写入的文件以及遇到的错误(CaptureError)
func (c *Capturer) Capture(doc Document, url string) (models.CaptureArtifacts, []error) {
	var (
		artifacts models.CaptureArtifacts
		errs      []error
	)

	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return artifacts, []error{&models.CaptureError{URL: url, Path: c.dir, Err: fmt.Errorf("创建目录失败: %w", err)}}
		}
	}

	slug := utils.URLSlug(url)

	shotPath := filepath.Join(c.dir, ScreenshotName(slug))
	if png, err := doc.Screenshot(); err != nil {
		errs = append(errs, &models.CaptureError{URL: url, Path: shotPath, Err: err})
	} else if err := os.WriteFile(shotPath, png, 0644); err != nil {
		errs = append(errs, &models.CaptureError{URL: url, Path: shotPath, Err: err})
	} else {
		artifacts.Screenshot = shotPath
		utils.Infof("截图已保存: %s", shotPath)
	}

	sourcePath := filepath.Join(c.dir, PageSourceName(slug))
	if html, err := doc.HTML(); err != nil {
		errs = append(errs, &models.CaptureError{URL: url, Path: sourcePath, Err: err})
	} else if err := os.WriteFile(sourcePath, []byte(html), 0644); err != nil {
		errs = append(errs, &models.CaptureError{URL: url, Path: sourcePath, Err: err})
	} else {
		artifacts.PageSource = sourcePath
		utils.Infof("页面源码已保存: %s", sourcePath)
	}

	return artifacts, errs
}
