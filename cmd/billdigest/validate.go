package main

import (
	"fmt"
	"time"

	"github.com/RecoveryAshes/billdigest/internal/models"
)

// ValidateFlags 验证命令行标志
func ValidateFlags(
	retries int,
	settleMode string,
	batchDelay time.Duration,
) error {
	// 验证重试次数
	if retries < 1 || retries > 10 {
		return fmt.Errorf("重试次数必须在1-10之间,当前值: %d", retries)
	}

	// 验证稳定等待模式
	if !models.SettleMode(settleMode).IsValid() {
		return fmt.Errorf("无效的稳定等待模式: %s (有效值: fixed, stable, none)", settleMode)
	}

	// 验证批处理间隔
	if batchDelay < 0 || batchDelay > 10*time.Minute {
		return fmt.Errorf("批处理间隔必须在0-10分钟之间,当前值: %v", batchDelay)
	}

	return nil
}

// ValidateInputFile 验证输入文件路径
func ValidateInputFile(path string) error {
	if path == "" {
		return fmt.Errorf("输入文件路径不能为空")
	}
	// 文件存在性检查将在打开工作簿时进行
	return nil
}
