package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/core"
	"github.com/RecoveryAshes/billdigest/internal/crawlers"
	"github.com/RecoveryAshes/billdigest/internal/models"
	"github.com/RecoveryAshes/billdigest/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// 输入输出参数
	inputPath  string
	outputPath string
	sheetName  string
	urlColumn  string

	// 浏览器与提取参数
	headless   bool
	retries    int
	settleMode string
	captureDir string
	noCapture  bool
	batchDelay time.Duration

	// 离线回放参数
	replayDir string
)

// appConfig 在PersistentPreRunE中加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "billdigest",
	Short: "法案摘要批量提取工具",
	Long: `billdigest - 从法案页面批量提取摘要并写回Excel

读取工作簿中"URL Address"列的每个URL,使用无头浏览器加载页面,
等待前端应用渲染完成后提取摘要,写入"Digest"和"Bill Authors"列,
另存为新的工作簿。每个URL都会保存截图和页面源码用于排查。

示例:
  # 使用默认文件 edbills.xlsx -> edbills_output.xlsx
  billdigest

  # 指定输入输出
  billdigest -i bills.xlsx -o bills_out.xlsx --sheet Bills

  # 根节点出现后等待DOM稳定,而不是固定等待10秒
  billdigest --settle-mode stable

  # 使用已保存的页面源码离线验证字段规则
  billdigest replay --dir ./captures

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 命令行参数覆盖配置文件
		applyFlags(cmd, config)

		logConfig := config.LogConfig()
		if logLevel != "" {
			logConfig.Level = logLevel
		} else if verbose {
			logConfig.Level = "debug"
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		appConfig = config
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateConfig(appConfig); err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		pipeline := buildPipeline(appConfig, crawlers.NewBrowserLauncher(appConfig.Browser))
		runner := core.NewBatchRunner(appConfig, pipeline)

		if _, err := runner.Run(ctx); err != nil {
			return fmt.Errorf("批处理失败: %w", err)
		}

		utils.Info("✨ 批处理任务完成!")
		return nil
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "使用已保存的页面源码离线重放字段提取",
	Long: `使用之前保存的page_source_<slug>.html重新执行字段规则,不启动浏览器。
目标站点改版导致摘要无法提取时,可以用它快速验证新的定位规则。

离线回放每个字段只尝试一次,不等待、不保存诊断文件,XPath规则会被跳过。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := *appConfig
		if replayDir == "" {
			replayDir = config.Capture.Dir
		}
		if !cmd.Flags().Changed("output") {
			config.Output.Path = "edbills_replay.xlsx"
		}

		config.Extract.Retries = 1
		config.Extract.RetryDelay = 0
		config.Wait.SettleMode = models.SettleNone
		config.Capture.Enabled = false
		config.Resource.Enabled = false
		config.Batch.Delay = 0

		if err := validateConfig(&config); err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		utils.Infof("🔁 离线回放: %s", replayDir)
		pipeline := buildPipeline(&config, crawlers.NewMarkupLauncher(replayDir))
		if _, err := core.NewBatchRunner(&config, pipeline).Run(ctx); err != nil {
			return fmt.Errorf("离线回放失败: %w", err)
		}

		utils.Info("✨ 离线回放完成!")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("billdigest %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

// applyFlags 只覆盖用户显式指定的参数
func applyFlags(cmd *cobra.Command, config *core.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		config.Input.Path = inputPath
	}
	if flags.Changed("output") {
		config.Output.Path = outputPath
	}
	if flags.Changed("sheet") {
		config.Input.Sheet = sheetName
	}
	if flags.Changed("url-column") {
		config.Input.URLColumn = urlColumn
	}
	if flags.Changed("headless") {
		config.Browser.Headless = headless
	}
	if flags.Changed("retries") {
		config.Extract.Retries = retries
	}
	if flags.Changed("settle-mode") {
		config.Wait.SettleMode = models.SettleMode(settleMode)
	}
	if flags.Changed("capture-dir") {
		config.Capture.Dir = captureDir
	}
	if flags.Changed("no-capture") && noCapture {
		config.Capture.Enabled = false
	}
	if flags.Changed("batch-delay") {
		config.Batch.Delay = batchDelay
	}
}

// validateConfig 参数与配置的整体校验
func validateConfig(config *core.Config) error {
	if err := ValidateInputFile(config.Input.Path); err != nil {
		return err
	}
	if err := ValidateFlags(config.Extract.Retries, string(config.Wait.SettleMode), config.Batch.Delay); err != nil {
		return err
	}
	return config.Validate()
}

// buildPipeline 按配置组装处理流程
func buildPipeline(config *core.Config, launcher crawlers.Launcher) *core.Pipeline {
	var opts []core.PipelineOption
	if config.Capture.Enabled {
		opts = append(opts, core.WithCapturer(crawlers.NewCapturer(config.Capture.Dir)))
	}
	if rc := config.ResourceMonitorConfig(); rc != nil {
		opts = append(opts, core.WithResourceMonitor(crawlers.NewResourceMonitor(*rc)))
	}

	return core.NewPipeline(
		launcher,
		crawlers.NewWaiter(config.Wait),
		crawlers.NewFieldExtractor(config.Extract),
		models.DefaultFieldRules(),
		opts...,
	)
}

// signalContext Ctrl+C时取消ctx,当前行处理完后停止
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// 输入输出参数(回放命令共用)
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "edbills.xlsx", "输入工作簿")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "edbills_output.xlsx", "输出工作簿(不能与输入相同)")
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet", "", "工作表名称(默认第一个)")
	rootCmd.PersistentFlags().StringVar(&urlColumn, "url-column", models.URLColumn, "URL所在列的表头")

	// 浏览器与提取参数
	rootCmd.Flags().BoolVar(&headless, "headless", true, "无头浏览器模式")
	rootCmd.Flags().IntVar(&retries, "retries", models.DefaultRetries, "每个字段的尝试次数 (1-10)")
	rootCmd.Flags().StringVar(&settleMode, "settle-mode", string(models.SettleFixed), "根节点出现后的等待方式 (fixed|stable|none)")
	rootCmd.Flags().StringVar(&captureDir, "capture-dir", ".", "截图和页面源码目录")
	rootCmd.Flags().BoolVar(&noCapture, "no-capture", false, "不保存截图和页面源码")
	rootCmd.Flags().DurationVar(&batchDelay, "batch-delay", 0, "相邻两个URL之间的等待")

	// 离线回放参数
	replayCmd.Flags().StringVar(&replayDir, "dir", "", "页面源码目录(默认为capture.dir)")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
