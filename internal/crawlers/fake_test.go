package crawlers

import (
	"errors"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/models"
)

// fakeDocument 可编排的页面替身
type fakeDocument struct {
	presentErr error
	stableErr  error

	// texts 按调用顺序返回,超出部分重复最后一个
	texts   []string
	textErr []error

	shot    []byte
	shotErr error
	html    string
	htmlErr error

	findCalls    int
	findTimeouts []time.Duration
	presentCalls int
	stableCalls  int
}

func (f *fakeDocument) WaitPresent(string, time.Duration) error {
	f.presentCalls++
	return f.presentErr
}

func (f *fakeDocument) WaitStable(time.Duration, float64, time.Duration) error {
	f.stableCalls++
	return f.stableErr
}

func (f *fakeDocument) FindText(_ []models.Locator, timeout time.Duration) (string, error) {
	i := f.findCalls
	f.findCalls++
	f.findTimeouts = append(f.findTimeouts, timeout)

	if len(f.textErr) > 0 {
		idx := i
		if idx >= len(f.textErr) {
			idx = len(f.textErr) - 1
		}
		if err := f.textErr[idx]; err != nil {
			return "", err
		}
	}
	if len(f.texts) == 0 {
		return "", models.ErrElementNotFound
	}
	idx := i
	if idx >= len(f.texts) {
		idx = len(f.texts) - 1
	}
	return f.texts[idx], nil
}

func (f *fakeDocument) Screenshot() ([]byte, error) {
	return f.shot, f.shotErr
}

func (f *fakeDocument) HTML() (string, error) {
	return f.html, f.htmlErr
}

var errTimeout = errors.New("context deadline exceeded")

// sleepRecorder 记录休眠调用而不真正休眠
type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) Sleep(d time.Duration) {
	s.calls = append(s.calls, d)
}
