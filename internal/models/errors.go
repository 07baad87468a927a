package models

import (
	"errors"
	"fmt"
)

var (
	ErrElementNotFound = errors.New("元素未找到")
	ErrInvalidURL      = errors.New("无效的URL")
	ErrUnsupported     = errors.New("当前会话不支持该操作")
)

// SessionLaunchError 浏览器无法启动或连接
type SessionLaunchError struct {
	Err error
}

// Error 实现error接口
func (e *SessionLaunchError) Error() string {
	return fmt.Sprintf("浏览器启动失败: %v", e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *SessionLaunchError) Unwrap() error {
	return e.Err
}

// NavigationError URL加载失败
type NavigationError struct {
	URL string
	Err error
}

// Error 实现error接口
func (e *NavigationError) Error() string {
	return fmt.Sprintf("导航失败 [%s]: %v", e.URL, e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *NavigationError) Unwrap() error {
	return e.Err
}

// RootNotFoundError 应用根节点在超时内未出现
type RootNotFoundError struct {
	URL      string
	Selector string
	Err      error
}

// Error 实现error接口
func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("应用根节点未出现 [%s] (%s): %v", e.URL, e.Selector, e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *RootNotFoundError) Unwrap() error {
	return e.Err
}

// NotFoundError 字段重试次数耗尽
type NotFoundError struct {
	Field    string
	Attempts int
	Err      error // 最后一次失败原因
}

// Error 实现error接口
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("字段 %s 在%d次尝试后仍未找到: %v", e.Field, e.Attempts, e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// CaptureError 诊断文件写入失败
type CaptureError struct {
	URL  string
	Path string
	Err  error
}

// Error 实现error接口
func (e *CaptureError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("诊断文件保存失败 [%s]: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("诊断文件保存失败 [%s] -> %s: %v", e.URL, e.Path, e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *CaptureError) Unwrap() error {
	return e.Err
}

// ErrorKind 返回错误类别,用于报告
func ErrorKind(err error) string {
	var (
		launchErr *SessionLaunchError
		navErr    *NavigationError
		rootErr   *RootNotFoundError
		notFound  *NotFoundError
		capErr    *CaptureError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &launchErr):
		return "session_launch"
	case errors.As(err, &navErr):
		return "navigation"
	case errors.As(err, &rootErr):
		return "root_not_found"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &capErr):
		return "capture"
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	default:
		return "internal"
	}
}
