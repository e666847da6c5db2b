package hwebconnector

import (
	"errors"

	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/common/htypes"
	"github.com/drharryhe/hasmysql/utils/hruntime"
)

type ResponseData struct {
	Data  htypes.Any `json:"data"`
	Error htypes.Any `json:"error"`
}

type errorData struct {
	Code  int      `json:"code"`
	Desc  string   `json:"desc"`
	Cause string   `json:"cause,omitempty"`
	Stack []string `json:"stack,omitempty"`
}

func NewResponseData(data htypes.Any, err error) *ResponseData {
	var res ResponseData
	if data == nil || hruntime.IsNil(data) {
		res.Data = htypes.Map{}
	} else {
		res.Data = data
	}

	if err == nil || hruntime.IsNil(err) {
		res.Error = herrors.ErrOK
	} else {
		res.Error = toErrorData(err, false)
	}

	return &res
}

func toErrorData(err error, withStack bool) *errorData {
	var herr *herrors.Error
	if errors.As(err, &herr) {
		ed := &errorData{
			Code:  herr.Code,
			Desc:  herr.Desc,
			Cause: herr.Cause,
		}
		// 多个错误时以第一个为准，其余的附在cause中
		if err.Error() != herr.Error() {
			ed.Cause = err.Error()
		}
		if withStack {
			ed.Stack = herr.Stack()
		}
		return ed
	}

	return &errorData{
		Code: herrors.ECodeUnknown,
		Desc: err.Error(),
	}
}
