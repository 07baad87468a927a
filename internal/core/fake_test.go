package core

import (
	"errors"
	"sync"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/crawlers"
	"github.com/RecoveryAshes/billdigest/internal/models"
)

// fakePage 一个URL对应的页面表现
type fakePage struct {
	navErr    error
	noRoot    bool
	digest    string // 为空表示摘要元素始终不出现
	panicFind bool
}

// fakeLauncher 按URL编排页面表现,并统计会话生命周期
type fakeLauncher struct {
	mu        sync.Mutex
	pages     map[string]fakePage
	launchErr error

	opened   int
	closed   int
	visited  []string
	sessions []*fakeSession
}

func newFakeLauncher(pages map[string]fakePage) *fakeLauncher {
	return &fakeLauncher{pages: pages}
}

func (l *fakeLauncher) Open() (crawlers.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.launchErr != nil {
		return nil, &models.SessionLaunchError{Err: l.launchErr}
	}
	l.opened++
	s := &fakeSession{launcher: l}
	l.sessions = append(l.sessions, s)
	return s, nil
}

type fakeSession struct {
	launcher   *fakeLauncher
	page       fakePage
	url        string
	closeCalls int
	findCalls  int
}

func (s *fakeSession) Navigate(url string) error {
	s.launcher.mu.Lock()
	s.launcher.visited = append(s.launcher.visited, url)
	page, ok := s.launcher.pages[url]
	s.launcher.mu.Unlock()

	if !ok {
		return &models.NavigationError{URL: url, Err: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	}
	if page.navErr != nil {
		return &models.NavigationError{URL: url, Err: page.navErr}
	}
	s.page = page
	s.url = url
	return nil
}

func (s *fakeSession) WaitPresent(string, time.Duration) error {
	if s.page.noRoot {
		return errors.New("context deadline exceeded")
	}
	return nil
}

func (s *fakeSession) WaitStable(time.Duration, float64, time.Duration) error {
	return nil
}

func (s *fakeSession) FindText([]models.Locator, time.Duration) (string, error) {
	s.findCalls++
	if s.page.panicFind {
		panic("页面崩溃")
	}
	if s.page.digest == "" {
		return "", models.ErrElementNotFound
	}
	return s.page.digest, nil
}

func (s *fakeSession) Screenshot() ([]byte, error) {
	return []byte("png"), nil
}

func (s *fakeSession) HTML() (string, error) {
	return "<html><div id=\"root\"></div></html>", nil
}

func (s *fakeSession) Close() error {
	s.closeCalls++
	s.launcher.mu.Lock()
	s.launcher.closed++
	s.launcher.mu.Unlock()
	return nil
}

// noSleep 替换所有休眠
func noSleep(time.Duration) {}

// newTestPipeline 使用假会话的处理流程,不休眠
func newTestPipeline(l crawlers.Launcher, captureDir string) *Pipeline {
	waiter := crawlers.NewWaiter(models.WaitConfig{
		RootSelector: "#root",
		RootTimeout:  30 * time.Second,
		SettleMode:   models.SettleFixed,
		SettleDelay:  10 * time.Second,
	})
	waiter.Sleep = noSleep

	extractor := crawlers.NewFieldExtractor(models.ExtractConfig{
		Retries:        3,
		VisibleTimeout: 30 * time.Second,
		RetryDelay:     5 * time.Second,
	})
	extractor.Sleep = noSleep

	var opts []PipelineOption
	if captureDir != "" {
		opts = append(opts, WithCapturer(crawlers.NewCapturer(captureDir)))
	}
	return NewPipeline(l, waiter, extractor, models.DefaultFieldRules(), opts...)
}
