package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// RandomString 生成指定长度的随机字符串
func RandomString(length int) string {
	const letters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, length)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// GenerateOrderNo 生成订单号，日期前缀加随机后缀
func GenerateOrderNo() string {
	return fmt.Sprintf("ZX%s%s", time.Now().Format("20060102150405"), RandomString(6))
}

// GenerateSalesCode 生成销售编码
func GenerateSalesCode(kind string) string {
	prefix := "PS"
	if strings.HasPrefix(kind, "secondary") {
		prefix = "SS"
	}
	return fmt.Sprintf("%s%s%s", prefix, time.Now().Format("060102"), RandomString(6))
}
