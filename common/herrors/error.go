package herrors

import (
	"errors"
	"fmt"

	"github.com/drharryhe/hasmysql/utils/hruntime"
)

type Error struct {
	Code  int    `json:"code"`
	Desc  string `json:"desc"`
	Cause string `json:"cause,omitempty"`
	stack []string
	err   error
}

func New(code int) *Error {
	return &Error{
		Code: code,
	}
}

// New 基于预定义错误生成新的错误实例，预定义错误本身不会被修改
func (this *Error) New(format string, v ...interface{}) *Error {
	return &Error{
		Code:  this.Code,
		Cause: fmt.Sprintf(format, v...),
	}
}

// Wrap 生成新的错误实例，并保留底层错误，可通过errors.Unwrap取回
func (this *Error) Wrap(err error) *Error {
	e := &Error{
		Code: this.Code,
		err:  err,
	}
	if err != nil {
		e.Cause = err.Error()
	}
	return e
}

func (this *Error) Equal(err *Error) bool {
	if err == nil {
		return false
	}

	return this.Code == err.Code
}

func (this *Error) Is(target error) bool {
	var e *Error
	if !errors.As(target, &e) {
		return false
	}
	return this.Equal(e)
}

func (this *Error) Unwrap() error {
	return this.err
}

func (this *Error) Error() string {
	s := fmt.Sprintf("ERROR: \t%s", this.Desc)
	s = fmt.Sprintf("%s\r\n\t |\tCODE: %d", s, this.Code)
	if this.Cause != "" {
		s = fmt.Sprintf("%s\r\n\t |\tCAUSE: %s", s, this.Cause)
	}
	return s
}

func (this *Error) String() string {
	s := this.Error()
	if len(this.stack) > 0 {
		var tmp string
		for _, s := range this.stack {
			tmp = fmt.Sprintf("%s \t\t %s\r\n", tmp, s)
		}
		s = fmt.Sprintf("%s\r\n\t |\tSTACK: \r\n%s", s, tmp)
	}
	return s
}

func (this *Error) C(format string, v ...interface{}) *Error {
	e := this.New(format, v...)
	e.err = this.err
	return e
}

func (this *Error) D(format string, v ...interface{}) *Error {
	this.Desc = fmt.Sprintf(format, v...)
	return this
}

func (this *Error) WithStack() *Error {
	this.stack = hruntime.SprintCallers(32, 4)
	return this
}

func (this *Error) Stack() []string {
	return this.stack
}
