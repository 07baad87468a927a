package utils

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeURL 规范化单元格中的URL
// 去掉首尾及内部的所有空白字符,再去掉路径末尾的斜杠
// 结果为空表示该行应跳过
func SanitizeURL(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	return strings.TrimRight(cleaned, "/")
}

// URLSlug 从URL派生诊断文件名片段
// 取最后一个非空路径段,路径为空时退回主机名
func URLSlug(rawURL string) string {
	var segment, host string

	if parsed, err := url.Parse(rawURL); err == nil {
		host = parsed.Host
		for _, part := range strings.Split(parsed.Path, "/") {
			if part != "" {
				segment = part
			}
		}
	} else {
		for _, part := range strings.Split(rawURL, "/") {
			if part != "" {
				segment = part
			}
		}
	}

	if segment == "" {
		segment = host
	}

	slug := strings.Trim(unsafeFilenameChars.ReplaceAllString(segment, "_"), "_.")
	if slug == "" {
		return "page"
	}
	return slug
}
