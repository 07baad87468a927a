package crawlers

import (
	"errors"
	"testing"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/models"
)

func newTestExtractor(retries int) (*FieldExtractor, *sleepRecorder) {
	rec := &sleepRecorder{}
	fe := NewFieldExtractor(models.ExtractConfig{
		Retries:        retries,
		VisibleTimeout: 30 * time.Second,
		RetryDelay:     5 * time.Second,
	})
	fe.Sleep = rec.Sleep
	return fe, rec
}

func digestRule() models.FieldRule {
	return models.DefaultFieldRules()[0]
}

func TestExtract_Exhausted(t *testing.T) {
	fe, rec := newTestExtractor(3)
	doc := &fakeDocument{textErr: []error{errTimeout}}

	v, err := fe.Extract(doc, digestRule())

	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("应返回NotFoundError, got %v", err)
	}
	if notFound.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", notFound.Attempts)
	}
	if v.Value != models.DigestSentinel || v.Found {
		t.Errorf("耗尽后应返回占位值, got %+v", v)
	}
	if doc.findCalls != 3 {
		t.Errorf("FindText调用次数 = %d, want 3", doc.findCalls)
	}
	// 每次失败后都休眠,包括最后一次
	if len(rec.calls) != 3 {
		t.Errorf("休眠次数 = %d, want 3", len(rec.calls))
	}
	for _, d := range rec.calls {
		if d != 5*time.Second {
			t.Errorf("休眠时长 = %v, want 5s", d)
		}
	}
	for _, d := range doc.findTimeouts {
		if d != 30*time.Second {
			t.Errorf("单次等待超时 = %v, want 30s", d)
		}
	}
}

func TestExtract_SuccessStopsRetrying(t *testing.T) {
	tests := []struct {
		name       string
		textErr    []error
		wantCalls  int
		wantSleeps int
	}{
		{"首次成功", []error{nil}, 1, 0},
		{"第二次成功", []error{errTimeout, nil}, 2, 1},
		{"第三次成功", []error{errTimeout, errTimeout, nil}, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe, rec := newTestExtractor(3)
			doc := &fakeDocument{texts: []string{"An act to amend Section 48000"}, textErr: tt.textErr}

			v, err := fe.Extract(doc, digestRule())
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if !v.Found || v.Value != "An act to amend Section 48000" {
				t.Errorf("提取结果不正确: %+v", v)
			}
			if v.Attempts != tt.wantCalls || doc.findCalls != tt.wantCalls {
				t.Errorf("尝试次数 = %d/%d, want %d", v.Attempts, doc.findCalls, tt.wantCalls)
			}
			if len(rec.calls) != tt.wantSleeps {
				t.Errorf("休眠次数 = %d, want %d", len(rec.calls), tt.wantSleeps)
			}
		})
	}
}

func TestExtract_InactiveRule(t *testing.T) {
	fe, rec := newTestExtractor(3)
	doc := &fakeDocument{texts: []string{"不应读取"}}
	authors := models.DefaultFieldRules()[1]

	v, err := fe.Extract(doc, authors)
	if err != nil {
		t.Fatalf("未配置规则的字段不应返回错误: %v", err)
	}
	if v.Value != models.AuthorsSentinel || v.Attempts != 0 {
		t.Errorf("应直接返回占位值, got %+v", v)
	}
	if doc.findCalls != 0 || len(rec.calls) != 0 {
		t.Error("未配置规则的字段不应访问页面或休眠")
	}
}

func TestExtract_SingleAttempt(t *testing.T) {
	fe, rec := newTestExtractor(1)
	doc := &fakeDocument{textErr: []error{errTimeout}}

	if _, err := fe.Extract(doc, digestRule()); err == nil {
		t.Fatal("应返回错误")
	}
	if doc.findCalls != 1 || len(rec.calls) != 1 {
		t.Errorf("调用=%d 休眠=%d, want 1/1", doc.findCalls, len(rec.calls))
	}
}

func TestExtract_NoRetryDelay(t *testing.T) {
	fe, rec := newTestExtractor(3)
	fe.config.RetryDelay = 0
	doc := &fakeDocument{textErr: []error{errTimeout}}

	if _, err := fe.Extract(doc, digestRule()); err == nil {
		t.Fatal("应返回错误")
	}
	if doc.findCalls != 3 || len(rec.calls) != 0 {
		t.Errorf("调用=%d 休眠=%d, want 3/0", doc.findCalls, len(rec.calls))
	}
}

func TestExtractAll(t *testing.T) {
	fe, _ := newTestExtractor(3)
	doc := &fakeDocument{texts: []string{"摘要正文"}}

	values, err := fe.ExtractAll(doc, models.DefaultFieldRules())
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("结果数量 = %d, want 2", len(values))
	}
	if values[0].Value != "摘要正文" || values[1].Value != models.AuthorsSentinel {
		t.Errorf("结果不正确: %+v", values)
	}
}
