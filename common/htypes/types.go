package htypes

import (
	"fmt"
	"strings"
)

type Any interface{}

type Map map[string]interface{}

// Section 取出名为name的子配置。同时支持两种写法：
//
//	{"mysql": {"autocommit": false}}
//	{"mysql.autocommit": false}
//
// 两种写法并存时，扁平写法覆盖嵌套写法中的同名项。name对应的值不是map时返回错误
func (this Map) Section(name string) (Map, bool, error) {
	res := make(Map)
	found := false

	if raw, ok := this[name]; ok {
		switch v := raw.(type) {
		case Map:
			for k, val := range v {
				res[k] = val
			}
		case map[string]interface{}:
			for k, val := range v {
				res[k] = val
			}
		default:
			return nil, false, fmt.Errorf("section [%s] must be a map, got %T", name, raw)
		}
		found = true
	}

	prefix := name + "."
	for k, v := range this {
		if strings.HasPrefix(k, prefix) {
			found = true
			res[strings.TrimPrefix(k, prefix)] = v
		}
	}

	return res, found, nil
}
