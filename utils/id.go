package utils

import (
	"fmt"
	"time"
)

// UploadName 生成基于时间戳的上传文件名
func UploadName(ext string) string {
	return fmt.Sprintf("mask_%d%s", time.Now().UnixNano(), ext)
}
