package core

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/common/htypes"
)

type IEntityConf interface {
	GetDisabled() bool
	SetDisabled(dis bool)
}

// IRouteHost 插件的宿主，负责路由注册并在注册时对每个路由调用一次插件的Apply
type IRouteHost interface {
	Plugins() []IRoutePlugin
	Routes() []*Route
}

// IRoutePlugin 路由插件。Setup在安装时调用一次，Apply在每个路由注册时调用一次
type IRoutePlugin interface {
	Name() string
	Setup(host IRouteHost) *herrors.Error
	Apply(handler fiber.Handler, route *Route) fiber.Handler
	Close()
	Capability() htypes.Any
}
