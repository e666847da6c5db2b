package hruntime

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/drharryhe/hasmysql/common/htypes"
)

// StrictMap2Struct 将map填充到result中，key须与tag名（无tag时为字段名）完全一致，否则返回错误。
// 字符串与数值、布尔之间自动转换；tag为空时使用mapstructure
func StrictMap2Struct(data htypes.Map, result htypes.Any, tag string) error {
	if tag == "" {
		tag = "mapstructure"
	}

	// mapstructure匹配key时忽略大小写，先按原样比对
	if allowed := FieldTags(result, tag); allowed != nil {
		var invalid []string
		for k := range data {
			if !contains(allowed, k) {
				invalid = append(invalid, k)
			}
		}
		if len(invalid) > 0 {
			sort.Strings(invalid)
			return fmt.Errorf("invalid keys: %s", strings.Join(invalid, ", "))
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          tag,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

func GetObjectName(v htypes.Any) string {
	if reflect.TypeOf(v).Kind() == reflect.Ptr {
		return reflect.TypeOf(v).Elem().Name()
	} else {
		return reflect.TypeOf(v).Name()
	}
}

// FieldTags 返回结构体所有导出字段的tag值，tag缺失的字段使用字段名
func FieldTags(o htypes.Any, tag string) []string {
	t := reflect.TypeOf(o)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var res []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || f.Anonymous {
			continue
		}
		name := strings.Split(f.Tag.Get(tag), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		res = append(res, name)
	}
	return res
}

func IsNil(o htypes.Any) bool {
	if o == nil {
		return true
	}
	v := reflect.ValueOf(o)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr, reflect.UnsafePointer, reflect.Interface, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
