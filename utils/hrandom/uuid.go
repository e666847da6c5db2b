package hrandom

import (
	"strings"

	uuid "github.com/satori/go.uuid"
)

func Uuid() string {
	return uuid.Must(uuid.NewV4(), nil).String()
}

func UuidWithoutDash() string {
	return strings.ReplaceAll(Uuid(), "-", "")
}

// ShortID 取uuid前8位，用于日志中标识一次请求的连接
func ShortID() string {
	return UuidWithoutDash()[:8]
}
