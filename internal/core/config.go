package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/crawlers"
	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/RecoveryAshes/billdigest/internal/utils"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Input    InputConfig          `mapstructure:"input"`
	Output   OutputConfig         `mapstructure:"output"`
	Browser  models.BrowserConfig `mapstructure:"browser"`
	Wait     models.WaitConfig    `mapstructure:"wait"`
	Extract  models.ExtractConfig `mapstructure:"extract"`
	Capture  models.CaptureConfig `mapstructure:"capture"`
	Batch    BatchConfig          `mapstructure:"batch"`
	Resource ResourceConfig       `mapstructure:"resource"`
	Logging  LoggingConfig        `mapstructure:"logging"`
}

// InputConfig 输入工作簿配置
type InputConfig struct {
	Path      string `mapstructure:"path"`
	Sheet     string `mapstructure:"sheet"` // 为空时使用第一个工作表
	URLColumn string `mapstructure:"url_column"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Path      string `mapstructure:"path"`
	ReportDir string `mapstructure:"report_dir"` // 为空时不生成JSON报告
}

// BatchConfig 批处理配置
type BatchConfig struct {
	Delay time.Duration `mapstructure:"delay"` // 相邻两行之间的等待
}

// ResourceConfig 启动浏览器前的资源检查
type ResourceConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	MinAvailableMemory uint64        `mapstructure:"min_available_memory"` // MB
	CPULoadThreshold   float64       `mapstructure:"cpu_load_threshold"`   // %
	MaxWait            time.Duration `mapstructure:"max_wait"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".billdigest"))
		}
	}

	v.SetEnvPrefix("BILLDIGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "edbills.xlsx")
	v.SetDefault("input.sheet", "")
	v.SetDefault("input.url_column", models.URLColumn)

	v.SetDefault("output.path", "edbills_output.xlsx")
	v.SetDefault("output.report_dir", "reports")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.stealth", false)
	v.SetDefault("browser.ignore_cert_errors", false)
	v.SetDefault("browser.nav_timeout", "60s")

	v.SetDefault("wait.root_selector", "#root")
	v.SetDefault("wait.root_timeout", "30s")
	v.SetDefault("wait.settle_mode", string(models.SettleFixed))
	v.SetDefault("wait.settle_delay", "10s")
	v.SetDefault("wait.stable_interval", "500ms")
	v.SetDefault("wait.stable_diff", 0.01)

	v.SetDefault("extract.retries", models.DefaultRetries)
	v.SetDefault("extract.visible_timeout", "30s")
	v.SetDefault("extract.retry_delay", "5s")

	v.SetDefault("capture.enabled", true)
	v.SetDefault("capture.dir", ".")

	v.SetDefault("batch.delay", "0s")

	v.SetDefault("resource.enabled", true)
	v.SetDefault("resource.min_available_memory", 512)
	v.SetDefault("resource.cpu_load_threshold", 95.0)
	v.SetDefault("resource.max_wait", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return fmt.Errorf("输入文件不能为空")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("输出文件不能为空")
	}
	if samePath(c.Input.Path, c.Output.Path) {
		return fmt.Errorf("输出文件不能与输入文件相同: %s", c.Output.Path)
	}
	if c.Input.URLColumn == "" {
		return fmt.Errorf("URL列名不能为空")
	}
	if c.Browser.NavTimeout < 0 {
		return fmt.Errorf("导航超时不能为负数")
	}
	if err := c.Wait.Validate(); err != nil {
		return err
	}
	if err := c.Extract.Validate(); err != nil {
		return err
	}
	if c.Batch.Delay < 0 {
		return fmt.Errorf("批处理间隔不能为负数")
	}
	if c.Resource.CPULoadThreshold < 0 {
		return fmt.Errorf("CPU负载阈值不能为负数")
	}
	return nil
}

// LogConfig 转换为日志配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// ResourceMonitorConfig 转换为资源检查配置,未启用时返回nil
func (c *Config) ResourceMonitorConfig() *crawlers.ResourceMonitorConfig {
	if !c.Resource.Enabled {
		return nil
	}
	return &crawlers.ResourceMonitorConfig{
		MinAvailableMemory: c.Resource.MinAvailableMemory * 1024 * 1024,
		CPULoadThreshold:   c.Resource.CPULoadThreshold,
		MaxWait:            c.Resource.MaxWait,
	}
}

// samePath 比较两个路径是否指向同一文件
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
