package core

import (
	"reflect"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/drharryhe/hasmysql/common/htypes"
)

// RouteMeta 路由注册时附带的元数据
type RouteMeta struct {
	Name   string
	Inject []string   //路由处理函数需要注入的参数名，插件据此决定是否包装
	Skip   []string   //不对该路由生效的插件名
	Config htypes.Map //路由级配置，按插件分段，如 {"mysql": {...}} 或 {"mysql.autocommit": false}
}

type Route struct {
	Method   string
	Path     string
	Callback fiber.Handler //未经插件包装的原始处理函数
	Meta     RouteMeta

	mu      sync.Mutex
	applied map[string]wrapping
}

type wrapping struct {
	inner fiber.Handler
	outer fiber.Handler
}

func NewRoute(method string, path string, callback fiber.Handler, meta RouteMeta) *Route {
	return &Route{
		Method:   method,
		Path:     path,
		Callback: callback,
		Meta:     meta,
	}
}

func (this *Route) Wants(keyword string) bool {
	for _, k := range this.Meta.Inject {
		if k == keyword {
			return true
		}
	}
	return false
}

func (this *Route) Skips(plugin string) bool {
	for _, s := range this.Meta.Skip {
		if s == plugin {
			return true
		}
	}
	return false
}

// Wrap 记录插件对该路由的包装。对原处理函数或已有包装重复调用时返回已有的包装，不重复包装
func (this *Route) Wrap(plugin string, handler fiber.Handler, wrap func(fiber.Handler) fiber.Handler) fiber.Handler {
	this.mu.Lock()
	defer this.mu.Unlock()

	if this.applied == nil {
		this.applied = make(map[string]wrapping)
	}
	if w, ok := this.applied[plugin]; ok && (sameHandler(handler, w.inner) || sameHandler(handler, w.outer)) {
		return w.outer
	}
	outer := wrap(handler)
	this.applied[plugin] = wrapping{inner: handler, outer: outer}
	return outer
}

func (this *Route) Applied(plugin string) bool {
	this.mu.Lock()
	defer this.mu.Unlock()

	_, ok := this.applied[plugin]
	return ok
}

// sameHandler 闭包按代码地址比较，同一函数字面量产生的闭包视为相同
func sameHandler(a, b fiber.Handler) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
