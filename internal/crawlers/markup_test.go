package crawlers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/models"
)

const billPage = `<html><body><div id="root">
<div class="BillDetails_digest__3rGrH">
  <p class="CollapsibleDigest_digestText__1KQdW">
    An act to amend Section 48000
    of the Education Code.
  </p>
</div>
</div></body></html>`

func writeSource(t *testing.T, dir, slug, html string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, PageSourceName(slug)), []byte(html), 0644); err != nil {
		t.Fatalf("写入页面源码失败: %v", err)
	}
}

func TestMarkupSession(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "123", billPage)

	session, err := NewMarkupLauncher(dir).Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer session.Close()

	if err := session.Navigate("https://example.com/bill/123/"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if err := session.WaitPresent("#root", time.Second); err != nil {
		t.Errorf("根节点应存在: %v", err)
	}

	text, err := session.FindText(digestRule().Locators, time.Second)
	if err != nil {
		t.Fatalf("FindText() error = %v", err)
	}
	if text != "An act to amend Section 48000 of the Education Code." {
		t.Errorf("文本 = %q", text)
	}

	if _, err := session.Screenshot(); !errors.Is(err, models.ErrUnsupported) {
		t.Errorf("离线会话截图应返回ErrUnsupported, got %v", err)
	}
}

func TestMarkupSession_Missing(t *testing.T) {
	session, _ := NewMarkupLauncher(t.TempDir()).Open()

	err := session.Navigate("https://example.com/bill/404")
	var navErr *models.NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("缺少源码文件应返回NavigationError, got %v", err)
	}
}

func TestMarkupSession_Locators(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "5", `<html><body><div id="root"><span class="alt">备用规则</span></div></body></html>`)

	session, _ := NewMarkupLauncher(dir).Open()
	if err := session.Navigate("https://example.com/bill/5"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	tests := []struct {
		name     string
		locators []models.Locator
		want     string
		wantErr  bool
	}{
		{"首条规则未命中时使用后续规则", []models.Locator{models.CSS("p.missing"), models.CSS("span.alt")}, "备用规则", false},
		{"XPath规则被跳过", []models.Locator{models.XPath("//span"), models.CSS("span.alt")}, "备用规则", false},
		{"全部未命中", []models.Locator{models.CSS("p.missing")}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := session.FindText(tt.locators, time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FindText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkupSession_WithExtractor(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "8", `<html><body><div id="root"></div></body></html>`)

	session, _ := NewMarkupLauncher(dir).Open()
	if err := session.Navigate("https://example.com/bill/8"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	fe, rec := newTestExtractor(3)
	v, err := fe.Extract(session, digestRule())
	if err == nil {
		t.Fatal("页面缺少摘要时应返回错误")
	}
	if v.Value != models.DigestSentinel || v.Attempts != 3 || len(rec.calls) != 3 {
		t.Errorf("结果不正确: %+v, 休眠%d次", v, len(rec.calls))
	}
}
