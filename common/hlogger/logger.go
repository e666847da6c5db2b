package hlogger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	AdapterConsole    = "console"
	AdapterFile       = "file"
	AdapterMultiFiles = "multifile"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout)
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

func current() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetOutput 替换日志输出，测试中常用
func SetOutput(out io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(out)
}

// SetLevel 设置日志级别：debug/info/warn/error
func SetLevel(level string) error {
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	logger.SetLevel(lv)
	return nil
}

func IsDebugEnabled() bool {
	return current().IsLevelEnabled(logrus.DebugLevel)
}

// WithFields 返回带固定字段的日志入口
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return current().WithFields(logrus.Fields(fields))
}

func Debug(v ...interface{}) {
	current().Debug(format(v...))
}

func Debugf(f string, v ...interface{}) {
	current().Debugf(f, v...)
}

func Info(v ...interface{}) {
	current().Info(format(v...))
}

func Infof(f string, v ...interface{}) {
	current().Infof(f, v...)
}

func Warn(v ...interface{}) {
	current().Warn(format(v...))
}

func Warnf(f string, v ...interface{}) {
	current().Warnf(f, v...)
}

func Error(v ...interface{}) {
	current().Error(format(v...))
}

func Errorf(f string, v ...interface{}) {
	current().Errorf(f, v...)
}

// Critical 与Alert不退出进程，只提高可见度
func Critical(v ...interface{}) {
	current().WithField("severity", "critical").Error(format(v...))
}

func Alert(v ...interface{}) {
	current().WithField("severity", "alert").Warn(format(v...))
}

func Alertf(f string, v ...interface{}) {
	current().WithField("severity", "alert").Warnf(f, v...)
}

// format 参数间以空格分隔
func format(v ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(v...), "\n")
}
