package crawlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/RecoveryAshes/billdigest/internal/utils"
)

// MarkupLauncher 离线回放会话工厂
// 从目录中读取之前保存的page_source_<slug>.html,用于在不启动浏览器的情况下调试字段规则
type MarkupLauncher struct {
	dir string
}

// NewMarkupLauncher 创建离线回放会话工厂
func NewMarkupLauncher(dir string) *MarkupLauncher {
	return &MarkupLauncher{dir: dir}
}

// Open 离线会话没有外部资源,总是成功
func (ml *MarkupLauncher) Open() (Session, error) {
	return &MarkupSession{dir: ml.dir}, nil
}

// MarkupSession 基于goquery的只读会话
// 静态HTML没有布局信息,节点存在即视为可见;XPath规则不受支持,直接跳过
type MarkupSession struct {
	dir    string
	source string
	doc    *goquery.Document
}

// Navigate 加载URL对应的页面源码文件
func (s *MarkupSession) Navigate(url string) error {
	path := filepath.Join(s.dir, PageSourceName(utils.URLSlug(url)))

	data, err := os.ReadFile(path)
	if err != nil {
		return &models.NavigationError{URL: url, Err: fmt.Errorf("读取页面源码失败: %w", err)}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return &models.NavigationError{URL: url, Err: fmt.Errorf("解析页面源码失败: %w", err)}
	}

	s.source = string(data)
	s.doc = doc
	utils.Debugf("离线页面已加载: %s", path)
	return nil
}

// WaitPresent 静态文档中只检查一次
func (s *MarkupSession) WaitPresent(selector string, _ time.Duration) error {
	if s.doc == nil {
		return errors.New("页面尚未加载")
	}
	if s.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", models.ErrElementNotFound, selector)
	}
	return nil
}

// WaitStable 静态文档总是稳定的
func (s *MarkupSession) WaitStable(time.Duration, float64, time.Duration) error {
	return nil
}

// FindText 按顺序取第一个匹配的CSS规则
func (s *MarkupSession) FindText(locators []models.Locator, _ time.Duration) (string, error) {
	if s.doc == nil {
		return "", errors.New("页面尚未加载")
	}

	for _, loc := range locators {
		if loc.Kind == models.LocatorXPath {
			utils.Debugf("离线回放不支持XPath规则,跳过: %s", loc.Query)
			continue
		}
		sel := s.doc.Find(loc.Query).First()
		if sel.Length() == 0 {
			continue
		}
		return strings.Join(strings.Fields(sel.Text()), " "), nil
	}
	return "", models.ErrElementNotFound
}

// Screenshot 离线会话无法截图
func (s *MarkupSession) Screenshot() ([]byte, error) {
	return nil, models.ErrUnsupported
}

// HTML 返回原始页面源码
func (s *MarkupSession) HTML() (string, error) {
	if s.doc == nil {
		return "", errors.New("页面尚未加载")
	}
	return s.source, nil
}

// Close 无需释放资源
func (s *MarkupSession) Close() error {
	return nil
}
