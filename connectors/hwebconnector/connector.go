package hwebconnector

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/common/hlogger"
	"github.com/drharryhe/hasmysql/common/htypes"
	"github.com/drharryhe/hasmysql/core"
)

const (
	defaultBodyLimit = 10
	defaultPort      = 1976
)

func New(conf WebConnector) *Connector {
	this := new(Connector)
	this.conf = conf

	if this.conf.Port == 0 {
		this.conf.Port = defaultPort
	}
	if this.conf.BodyLimit <= 0 {
		this.conf.BodyLimit = defaultBodyLimit
	}

	this.app = fiber.New(fiber.Config{
		BodyLimit:             this.conf.BodyLimit * 1024 * 1024,
		ErrorHandler:          this.handleError,
		DisableStartupMessage: true,
	})
	return this
}

// Connector 基于fiber的web宿主，按安装顺序维护插件链
type Connector struct {
	conf WebConnector
	app  *fiber.App

	mu      sync.RWMutex
	plugins []core.IRoutePlugin
	routes  []*core.Route
}

func (this *Connector) App() *fiber.App {
	return this.app
}

func (this *Connector) Config() core.IEntityConf {
	return &this.conf
}

func (this *Connector) Plugins() []core.IRoutePlugin {
	this.mu.RLock()
	defer this.mu.RUnlock()
	return append([]core.IRoutePlugin(nil), this.plugins...)
}

func (this *Connector) Routes() []*core.Route {
	this.mu.RLock()
	defer this.mu.RUnlock()
	return append([]*core.Route(nil), this.routes...)
}

// Install 安装插件，插件只对之后注册的路由生效
func (this *Connector) Install(p core.IRoutePlugin) *herrors.Error {
	if conf, ok := p.(interface{ Config() core.IEntityConf }); ok && conf.Config().GetDisabled() {
		hlogger.Infof("plugin %s disabled, skipped", p.Name())
		return nil
	}

	if err := p.Setup(this); err != nil {
		return err
	}

	this.mu.Lock()
	this.plugins = append(this.plugins, p)
	this.mu.Unlock()

	hlogger.Infof("plugin %s installed", p.Name())
	return nil
}

// Handle 注册路由。插件按安装顺序的逆序包装处理函数，先安装的插件在最外层
func (this *Connector) Handle(method string, path string, handler fiber.Handler, meta ...core.RouteMeta) *core.Route {
	var m core.RouteMeta
	if len(meta) > 0 {
		m = meta[0]
	}
	route := core.NewRoute(method, path, handler, m)

	plugins := this.Plugins()
	callback := handler
	for i := len(plugins) - 1; i >= 0; i-- {
		if route.Skips(plugins[i].Name()) {
			continue
		}
		callback = plugins[i].Apply(callback, route)
	}

	this.mu.Lock()
	this.routes = append(this.routes, route)
	this.mu.Unlock()

	this.app.Add(method, path, callback)
	return route
}

func (this *Connector) Get(path string, handler fiber.Handler, meta ...core.RouteMeta) *core.Route {
	return this.Handle(fiber.MethodGet, path, handler, meta...)
}

func (this *Connector) Post(path string, handler fiber.Handler, meta ...core.RouteMeta) *core.Route {
	return this.Handle(fiber.MethodPost, path, handler, meta...)
}

func (this *Connector) Put(path string, handler fiber.Handler, meta ...core.RouteMeta) *core.Route {
	return this.Handle(fiber.MethodPut, path, handler, meta...)
}

func (this *Connector) Delete(path string, handler fiber.Handler, meta ...core.RouteMeta) *core.Route {
	return this.Handle(fiber.MethodDelete, path, handler, meta...)
}

// Listen 阻塞直到服务退出
func (this *Connector) Listen() *herrors.Error {
	addr := fmt.Sprintf(":%d", this.conf.Port)
	hlogger.Infof("web connector listening on %s", addr)

	if !this.conf.Tls {
		if err := this.app.Listen(addr); err != nil {
			return herrors.ErrSysInternal.Wrap(err).D("failed to listen Fiber App")
		}
		return nil
	}

	cer, err := tls.LoadX509KeyPair(this.conf.TlsCertPath, this.conf.TlsKeyPath)
	if err != nil {
		return herrors.ErrSysInternal.Wrap(err).D("failed to load tls certificate")
	}
	ln, err := tls.Listen("tcp", addr, &tls.Config{Certificates: []tls.Certificate{cer}})
	if err != nil {
		return herrors.ErrSysInternal.Wrap(err).D("failed to listen tls")
	}
	if err = this.app.Listener(ln); err != nil {
		return herrors.ErrSysInternal.Wrap(err).D("failed to listen Fiber App")
	}
	return nil
}

// Shutdown 停止服务并关闭所有插件
func (this *Connector) Shutdown() {
	if err := this.app.Shutdown(); err != nil {
		hlogger.Error(err)
	}
	for _, p := range this.Plugins() {
		p.Close()
	}
}

func (this *Connector) SendResponse(c *fiber.Ctx, data htypes.Any) error {
	return this.send(c, fiber.StatusOK, NewResponseData(data, nil))
}

func (this *Connector) handleError(c *fiber.Ctx, err error) error {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		hlogger.Errorf("%s %s: %s", c.Method(), c.Path(), err.Error())
	}

	res := NewResponseData(nil, err)
	if this.conf.Debug {
		res.Error = toErrorData(err, true)
	}
	return this.send(c, status, res)
}

func (this *Connector) send(c *fiber.Ctx, status int, res *ResponseData) error {
	bs, err := jsoniter.Marshal(res)
	if err != nil {
		hlogger.Error(herrors.ErrSysInternal.Wrap(err).D("failed to marshal response"))
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(status).Send(bs)
}

// StatusOf 将错误映射为HTTP状态码
func StatusOf(err error) int {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code
	}

	var herr *herrors.Error
	if !errors.As(err, &herr) {
		return fiber.StatusInternalServerError
	}

	switch herr.Code {
	case herrors.ECodeOK:
		return fiber.StatusOK
	case herrors.ECodeCallerInvalidRequest, herrors.ECodeUserInvalidAct:
		return fiber.StatusBadRequest
	case herrors.ECodeCallerUnauthorizedAccess, herrors.ECodeUserUnauthorizedAct:
		return fiber.StatusForbidden
	case herrors.ECodeSysBusy:
		return fiber.StatusServiceUnavailable
	case herrors.ECodeDBIntegrity:
		return fiber.StatusConflict
	case herrors.ECodeDBData:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
