package core

import (
	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/common/hlogger"
	"github.com/drharryhe/hasmysql/common/htypes"
)

type PluginConf struct {
	EntityConfBase

	Name string
}

type BasePlugin struct {
	host IRouteHost
	name string
}

func (this *BasePlugin) Setup(host IRouteHost) *herrors.Error {
	this.host = host
	return nil
}

func (this *BasePlugin) Close() {
}

func (this *BasePlugin) Host() IRouteHost {
	return this.host
}

func (this *BasePlugin) Name() string {
	return this.name
}

func (this *BasePlugin) SetName(name string) {
	this.name = name
}

func (this *BasePlugin) Capability() htypes.Any {
	hlogger.Error(this.Name() + " Capability not implemented")

	return nil
}
