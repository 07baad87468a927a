package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/models"
)

// chdir 切换工作目录,测试结束后恢复
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("获取工作目录失败: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("切换工作目录失败: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	// 指向空目录,确保不会读到仓库中的configs/config.yaml
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Input.Path != "edbills.xlsx" || cfg.Output.Path != "edbills_output.xlsx" {
		t.Errorf("默认文件路径错误: %+v / %+v", cfg.Input, cfg.Output)
	}
	if cfg.Input.URLColumn != models.URLColumn {
		t.Errorf("默认URL列 = %q", cfg.Input.URLColumn)
	}
	if !cfg.Browser.Headless {
		t.Error("默认应启用无头模式")
	}
	if cfg.Wait.RootSelector != "#root" || cfg.Wait.RootTimeout != 30*time.Second {
		t.Errorf("默认等待配置错误: %+v", cfg.Wait)
	}
	// 根节点出现后默认固定等待10秒
	if cfg.Wait.SettleMode != models.SettleFixed || cfg.Wait.SettleDelay != 10*time.Second {
		t.Errorf("默认等待方式错误: %+v", cfg.Wait)
	}
	if cfg.Extract.Retries != 3 || cfg.Extract.VisibleTimeout != 30*time.Second || cfg.Extract.RetryDelay != 5*time.Second {
		t.Errorf("默认提取配置错误: %+v", cfg.Extract)
	}
	if !cfg.Capture.Enabled {
		t.Error("默认应保存诊断文件")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("默认配置应通过验证: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
input:
  path: bills.xlsx
  sheet: Bills
extract:
  retries: 5
  retry_delay: 1s
wait:
  settle_mode: stable
  settle_delay: 3s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Input.Path != "bills.xlsx" || cfg.Input.Sheet != "Bills" {
		t.Errorf("输入配置错误: %+v", cfg.Input)
	}
	if cfg.Extract.Retries != 5 || cfg.Extract.RetryDelay != time.Second {
		t.Errorf("提取配置错误: %+v", cfg.Extract)
	}
	if cfg.Wait.SettleMode != models.SettleStable || cfg.Wait.SettleDelay != 3*time.Second {
		t.Errorf("等待配置错误: %+v", cfg.Wait)
	}
	// 未覆盖的键保留默认值
	if cfg.Extract.VisibleTimeout != 30*time.Second {
		t.Errorf("VisibleTimeout = %v, want 30s", cfg.Extract.VisibleTimeout)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BILLDIGEST_OUTPUT_PATH", "from_env.xlsx")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Output.Path != "from_env.xlsx" {
		t.Errorf("环境变量未生效: %s", cfg.Output.Path)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("input: [unclosed"), 0644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("格式错误的配置文件应返回错误")
	}
}

func TestConfig_Validate(t *testing.T) {
	chdir(t, t.TempDir())
	base, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"输出与输入相同", func(c *Config) { c.Output.Path = c.Input.Path }},
		{"输出与输入相同(相对路径写法不同)", func(c *Config) { c.Output.Path = "./" + c.Input.Path }},
		{"输入为空", func(c *Config) { c.Input.Path = "" }},
		{"URL列为空", func(c *Config) { c.Input.URLColumn = "" }},
		{"重试次数为0", func(c *Config) { c.Extract.Retries = 0 }},
		{"无效稳定模式", func(c *Config) { c.Wait.SettleMode = "forever" }},
		{"负数批处理间隔", func(c *Config) { c.Batch.Delay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("应返回验证错误")
			}
		})
	}
}

func TestConfig_ResourceMonitorConfig(t *testing.T) {
	cfg := &Config{Resource: ResourceConfig{Enabled: true, MinAvailableMemory: 512, CPULoadThreshold: 90, MaxWait: time.Minute}}
	rm := cfg.ResourceMonitorConfig()
	if rm == nil || rm.MinAvailableMemory != 512*1024*1024 || rm.MaxWait != time.Minute {
		t.Errorf("资源检查配置转换错误: %+v", rm)
	}

	cfg.Resource.Enabled = false
	if cfg.ResourceMonitorConfig() != nil {
		t.Error("未启用时应返回nil")
	}
}
