package model

import "errors"

type SessionID string

// ErrDownloadTimeout 会话截止时间已到但仍有 URL 未匹配
var ErrDownloadTimeout = errors.New("download timeout")

// ReportEntry 单个 URL 的最终抓取结果。Content 为 gzip 压缩后再
// base64 编码的文件内容；读取或编码失败时 Content 为 null 并填充 Error。
type ReportEntry struct {
	Filename string  `json:"filename"`
	Content  *string `json:"content"`
	Error    string  `json:"error,omitempty"`
}

// Report 按 URL 索引的最终结果集，可直接 JSON 序列化
type Report map[string]ReportEntry

// SessionStats 会话结束时的匹配统计
type SessionStats struct {
	Requested int `json:"requested"`
	Matched   int `json:"matched"`
}
