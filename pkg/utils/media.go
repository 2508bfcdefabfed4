package utils

import (
	"regexp"
	"strings"
)

// CDN 地址格式: .../upload/v1234567890/cbd-shop/products/abc123.jpg
var publicIDPattern = regexp.MustCompile(`/v\d+/(.+)\.[a-zA-Z0-9]+$`)

// ExtractPublicID 从媒体 URL 中提取 publicId (含目录，不含扩展名)
// 无法识别时返回空串
func ExtractPublicID(url string) string {
	if url == "" {
		return ""
	}
	m := publicIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// IsImageType 是否为图片 MIME
func IsImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// IsVideoType 是否为视频 MIME
func IsVideoType(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}
