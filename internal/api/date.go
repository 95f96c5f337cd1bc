// File: internal/api/date.go
package api

import "time"

// DateLayout 事件日期的輸入格式 (DD-MM-YYYY)
const DateLayout = "02-01-2006"

// ParseDate 解析 DD-MM-YYYY 格式日期
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
