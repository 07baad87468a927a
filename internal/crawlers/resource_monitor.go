package crawlers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceMonitor 系统资源检查
// 每个URL都会启动一个新的浏览器进程,资源紧张时在启动前等待
type ResourceMonitor struct {
	config ResourceMonitorConfig

	// 采样函数,测试时可替换
	sampleMemory func() (uint64, error)
	sampleCPU    func() (float64, error)
	sleep        func(time.Duration)
}

// ResourceMonitorConfig 资源检查配置
type ResourceMonitorConfig struct {
	MinAvailableMemory uint64        // 启动浏览器所需的最小可用内存(字节),0表示不检查
	CPULoadThreshold   float64       // CPU负载阈值(%),>=100视为禁用
	MaxWait            time.Duration // 最长等待时间,超过后照常启动
	PollInterval       time.Duration // 重新检查间隔
}

// MemoryStatus 内存状态信息
type MemoryStatus struct {
	AvailableMemory uint64 // 可用内存(字节)
	MemoryPressure  string // 内存压力等级
}

// NewResourceMonitor 创建资源检查器
func NewResourceMonitor(config ResourceMonitorConfig) *ResourceMonitor {
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}

	return &ResourceMonitor{
		config: config,
		sampleMemory: func() (uint64, error) {
			vm, err := mem.VirtualMemory()
			if err != nil {
				return 0, err
			}
			return vm.Available, nil
		},
		sampleCPU: func() (float64, error) {
			// perCPU=false 返回所有CPU的平均使用率
			percentages, err := cpu.Percent(100*time.Millisecond, false)
			if err != nil {
				return 0, err
			}
			if len(percentages) == 0 {
				return 0, fmt.Errorf("CPU使用率数据为空")
			}
			return percentages[0], nil
		},
		sleep: time.Sleep,
	}
}

// CheckResourceAvailability 检查当前资源是否允许启动新的浏览器
// 采样失败时放行,只记录警告
func (rm *ResourceMonitor) CheckResourceAvailability() (canLaunch bool, reason string) {
	if rm.config.MinAvailableMemory > 0 {
		available, err := rm.sampleMemory()
		if err != nil {
			log.Warn().Err(err).Msg("获取系统内存失败,跳过内存检查")
		} else if available < rm.config.MinAvailableMemory {
			return false, fmt.Sprintf("内存不足(当前%dMB)", available/(1024*1024))
		}
	}

	if rm.config.CPULoadThreshold > 0 && rm.config.CPULoadThreshold < 100 {
		usage, err := rm.sampleCPU()
		if err != nil {
			log.Warn().Err(err).Msg("获取CPU使用率失败,跳过CPU检查")
		} else if usage > rm.config.CPULoadThreshold {
			return false, fmt.Sprintf("CPU负载过高(当前%.1f%%)", usage)
		}
	}

	return true, ""
}

// WaitForResources 等待资源可用
// 超过MaxWait后放行并返回false;ctx取消时返回ctx错误
func (rm *ResourceMonitor) WaitForResources(ctx context.Context) (bool, error) {
	deadline := time.Now().Add(rm.config.MaxWait)

	for {
		ok, reason := rm.CheckResourceAvailability()
		if ok {
			return true, nil
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if !time.Now().Before(deadline) {
			log.Warn().Msgf("资源持续紧张(%s),已等待%v,继续处理", reason, rm.config.MaxWait)
			return false, nil
		}

		log.Info().Msgf("%s,%v后重新检查", reason, rm.config.PollInterval)
		rm.sleep(rm.config.PollInterval)
	}
}

// GetMemoryStatus 获取当前内存状态
func (rm *ResourceMonitor) GetMemoryStatus() MemoryStatus {
	available, err := rm.sampleMemory()
	if err != nil {
		log.Warn().Err(err).Msg("获取系统内存失败")
		return MemoryStatus{MemoryPressure: "unknown"}
	}

	var pressure string
	availableMB := available / (1024 * 1024)
	switch {
	case availableMB < 200:
		pressure = "emergency"
	case availableMB < 300:
		pressure = "critical"
	case availableMB < 500:
		pressure = "warning"
	default:
		pressure = "normal"
	}

	return MemoryStatus{AvailableMemory: available, MemoryPressure: pressure}
}
