package hlogger

import (
	"fmt"
	"io"
	"os"
)

const (
	defaultLogFile = "has.log"
)

// Init 按配置的输出方式初始化日志，args[0]可指定日志文件路径
func Init(outputs []string, args ...interface{}) {
	var writers []io.Writer
	for _, o := range outputs {
		switch o {
		case AdapterFile, AdapterMultiFiles:
			filePath := defaultLogFile
			if len(args) > 0 {
				if s, ok := args[0].(string); ok && s != "" {
					filePath = s
				}
			}
			f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				fmt.Println(err)
				panic("init hlogger failed.")
			}
			writers = append(writers, f)
		default:
			writers = append(writers, os.Stdout)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	SetOutput(io.MultiWriter(writers...))
}
