// 调用栈格式化，思路来自 github.com/pkg/errors

package hruntime

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	maxStackDepth = 32
)

// SprintCallers 返回调用栈，每帧格式为 "函数 --> 文件:行号"
func SprintCallers(depth, skip int) []string {
	var ss []string
	for _, f := range callers(depth, skip) {
		ss = append(ss, f.String())
	}
	return ss
}

type frame struct {
	function string
	file     string
	line     int
}

func (f frame) String() string {
	return fmt.Sprintf("%s\t\t --> \t\t%s:%d", FuncName(f.function), f.file, f.line)
}

// FuncName 去掉函数全名中的包路径
func FuncName(name string) string {
	i := strings.LastIndex(name, "/")
	name = name[i+1:]
	i = strings.Index(name, ".")
	return name[i+1:]
}

func callers(depth, skip int) []frame {
	if depth <= 0 || depth > maxStackDepth {
		depth = maxStackDepth
	}
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip, pcs[:depth])
	if n == 0 {
		return nil
	}

	var res []frame
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		// runtime内部帧没有意义
		if !strings.HasPrefix(f.Function, "runtime.") {
			res = append(res, frame{function: f.Function, file: f.File, line: f.Line})
		}
		if !more {
			break
		}
	}
	return res
}
