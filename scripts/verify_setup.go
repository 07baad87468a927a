package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/shirou/gopsutil/v3/mem"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  billdigest 运行环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	// 检查Go版本
	if toolchain := getCommandOutput("go", "env", "GOVERSION"); toolchain != "" {
		fmt.Printf("✅ Go工具链: %s\n", toolchain)
	} else {
		fmt.Printf("⚠️  未找到go命令,当前程序编译版本: %s\n", runtime.Version())
	}
	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// 检查浏览器
	if path, found := launcher.LookPath(); found {
		fmt.Printf("✅ 已找到浏览器: %s\n", path)
	} else {
		fmt.Println("⚠️  未找到本地Chromium - 首次运行时go-rod会自动下载")
		fmt.Println("   或在配置中设置 browser.bin 指向已安装的浏览器")
	}

	// 检查内存(每个URL启动一个独立的浏览器进程)
	if vm, err := mem.VirtualMemory(); err == nil {
		availableMB := vm.Available / (1024 * 1024)
		if availableMB < 512 {
			fmt.Printf("⚠️  可用内存偏低: %dMB (建议至少512MB)\n", availableMB)
		} else {
			fmt.Printf("✅ 可用内存: %dMB\n", availableMB)
		}
	} else {
		fmt.Printf("⚠️  无法获取内存信息: %v\n", err)
	}

	// 检查项目依赖
	fmt.Println()
	fmt.Println("检查Go模块依赖...")
	if _, err := os.Stat("go.mod"); err == nil {
		fmt.Println("✅ go.mod文件存在")

		fmt.Println("正在下载依赖...")
		cmd := exec.Command("go", "mod", "download")
		if err := cmd.Run(); err != nil {
			fmt.Printf("❌ go mod download失败: %v\n", err)
			allOK = false
		} else {
			fmt.Println("✅ 依赖下载完成")
		}
	} else {
		fmt.Println("❌ go.mod文件不存在")
		allOK = false
	}

	// 检查项目结构
	fmt.Println()
	fmt.Println("检查项目结构...")
	requiredDirs := []string{
		"cmd/billdigest",
		"internal/core",
		"internal/crawlers",
		"internal/sheet",
		"internal/utils",
		"internal/models",
		"configs",
	}

	for _, dir := range requiredDirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Printf("✅ %s/\n", dir)
		} else {
			fmt.Printf("❌ %s/ 不存在\n", dir)
			allOK = false
		}
	}

	// 检查默认输入
	fmt.Println()
	if _, err := os.Stat("edbills.xlsx"); err == nil {
		fmt.Println("✅ 默认输入 edbills.xlsx 存在")
	} else {
		fmt.Println("⚠️  默认输入 edbills.xlsx 不存在 - 运行时请使用 -i 指定")
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. 运行 'go build ./cmd/billdigest' 构建项目")
		fmt.Println("  2. 运行 './billdigest --help' 查看帮助")
		os.Exit(0)
	} else {
		fmt.Println("❌ 环境验证失败,请解决上述问题。")
		os.Exit(1)
	}
}

// getCommandOutput 获取命令输出
func getCommandOutput(name string, args ...string) string {
	cmd := exec.Command(name, args...)
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
