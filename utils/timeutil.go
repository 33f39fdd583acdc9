package utils

import "time"

// 常用时间格式常量
const (
	DateFormat     = "2006-01-02"
	MonthFormat    = "2006-01"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// FormatTime 格式化时间为字符串，零值返回空串
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateTimeFormat)
}

// FormatTimePtr 格式化可空时间
func FormatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTime(*t)
}

// DayBucket 订单时间所属的日统计桶
func DayBucket(t time.Time) string {
	return t.Local().Format(DateFormat)
}

// MonthBucket 订单时间所属的月统计桶
func MonthBucket(t time.Time) string {
	return t.Local().Format(MonthFormat)
}

// ParseDate 解析日期字符串
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.Local)
}

// ParseDateTime 解析日期时间字符串
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeFormat, s, time.Local)
}
