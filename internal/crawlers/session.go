package crawlers

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/RecoveryAshes/billdigest/internal/utils"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Document 已加载页面上的只读操作
type Document interface {
	// WaitPresent 等待选择器匹配的节点出现在DOM中
	WaitPresent(selector string, timeout time.Duration) error
	// WaitStable 每隔interval采样一次DOM,差异低于diff即视为稳定,最多等待ceiling
	WaitStable(interval time.Duration, diff float64, ceiling time.Duration) error
	// FindText 在timeout内等待任一定位规则匹配到可见节点,返回其文本
	FindText(locators []models.Locator, timeout time.Duration) (string, error)
	Screenshot() ([]byte, error)
	HTML() (string, error)
}

// Session 一个URL独占的浏览器会话
type Session interface {
	Document
	Navigate(url string) error
	// Close 释放会话资源,可重复调用
	Close() error
}

// Launcher 会话工厂
type Launcher interface {
	Open() (Session, error)
}

// BrowserLauncher 基于go-rod的会话工厂,每次Open启动一个全新的浏览器进程
type BrowserLauncher struct {
	config models.BrowserConfig
}

// NewBrowserLauncher 创建浏览器会话工厂
func NewBrowserLauncher(config models.BrowserConfig) *BrowserLauncher {
	return &BrowserLauncher{config: config}
}

// Open 启动浏览器并打开一个空白标签页
// 任何一步失败都会回收已创建的资源,并返回SessionLaunchError
func (bl *BrowserLauncher) Open() (Session, error) {
	l := launcher.New().
		Headless(bl.config.Headless).
		NoSandbox(bl.config.NoSandbox)

	if bl.config.Bin != "" {
		l = l.Bin(bl.config.Bin)
	}

	if bl.config.IgnoreCertErrors {
		l = l.Set("ignore-certificate-errors")
		utils.Debugf("浏览器启动参数: --ignore-certificate-errors (跳过TLS证书验证)")
	}

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		l.Cleanup()
		return nil, &models.SessionLaunchError{Err: fmt.Errorf("启动浏览器失败: %w", err)}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, &models.SessionLaunchError{Err: fmt.Errorf("连接浏览器失败: %w", err)}
	}

	page, err := bl.newPage(browser)
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, &models.SessionLaunchError{Err: fmt.Errorf("创建标签页失败: %w", err)}
	}

	utils.Debugf("浏览器已启动: %s", controlURL)

	return &RodSession{
		launcher:   l,
		browser:    browser,
		page:       page,
		navTimeout: bl.config.NavTimeout,
	}, nil
}

// newPage 创建标签页,按配置注入stealth脚本和UA
func (bl *BrowserLauncher) newPage(browser *rod.Browser) (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if bl.config.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, err
	}

	if bl.config.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: bl.config.UserAgent}); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("设置UA失败: %w", err)
		}
	}
	return page, nil
}

// RodSession 单个浏览器进程及其唯一标签页
type RodSession struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	navTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Navigate 打开URL并等待load事件
func (s *RodSession) Navigate(url string) error {
	p := s.page
	if s.navTimeout > 0 {
		p = p.Timeout(s.navTimeout)
		defer p.CancelTimeout()
	}

	if err := p.Navigate(url); err != nil {
		return &models.NavigationError{URL: url, Err: err}
	}
	if err := p.WaitLoad(); err != nil {
		return &models.NavigationError{URL: url, Err: fmt.Errorf("等待页面加载失败: %w", err)}
	}
	return nil
}

// WaitPresent 等待节点出现(不要求可见)
func (s *RodSession) WaitPresent(selector string, timeout time.Duration) error {
	p := s.page.Timeout(timeout)
	defer p.CancelTimeout()

	if _, err := p.Element(selector); err != nil {
		return err
	}
	return nil
}

// WaitStable 以ceiling为上限等待DOM稳定
func (s *RodSession) WaitStable(interval time.Duration, diff float64, ceiling time.Duration) error {
	p := s.page.Timeout(ceiling)
	defer p.CancelTimeout()

	return p.WaitDOMStable(interval, diff)
}

// FindText 所有定位规则在同一个超时窗口内竞速,先匹配者胜出
func (s *RodSession) FindText(locators []models.Locator, timeout time.Duration) (string, error) {
	if len(locators) == 0 {
		return "", models.ErrElementNotFound
	}

	p := s.page.Timeout(timeout)
	defer p.CancelTimeout()

	race := p.Race()
	for _, loc := range locators {
		switch loc.Kind {
		case models.LocatorXPath:
			race = race.ElementX(loc.Query)
		default:
			race = race.Element(loc.Query)
		}
	}

	el, err := race.Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrElementNotFound, err)
	}
	if err := el.WaitVisible(); err != nil {
		return "", fmt.Errorf("%w: 元素不可见: %v", models.ErrElementNotFound, err)
	}

	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("读取元素文本失败: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Screenshot 整页截图
func (s *RodSession) Screenshot() ([]byte, error) {
	return s.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// HTML 当前DOM序列化结果
func (s *RodSession) HTML() (string, error) {
	return s.page.HTML()
}

// Close 关闭标签页和浏览器,并清理launcher的临时目录
func (s *RodSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("关闭标签页失败: %w", err))
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("关闭浏览器失败: %w", err))
			}
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
		s.closeErr = errors.Join(errs...)
		utils.Debugf("浏览器已关闭")
	})
	return s.closeErr
}
