package hmysqlplugin

/// 按请求注入MySQL游标的路由插件

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/patrickmn/go-cache"

	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/common/hlogger"
	"github.com/drharryhe/hasmysql/common/htypes"
	"github.com/drharryhe/hasmysql/core"
	"github.com/drharryhe/hasmysql/utils/hruntime"
)

type Option func(*Plugin)

// WithOpener 替换缺省的MySQL连接方式，如接入使用者自己的连接池或测试桩
func WithOpener(opener Opener) Option {
	return func(p *Plugin) {
		p.opener = opener
	}
}

func WithName(name string) Option {
	return func(p *Plugin) {
		p.conf.Name = name
		p.SetName(name)
	}
}

type Plugin struct {
	core.BasePlugin

	conf     MysqlPlugin
	section  string
	opener   Opener
	stats    *Stats
	guard    *connectGuard
	resolved *cache.Cache //路由 -> *EffectiveConfig，路由注册后配置不再变化
}

// New 校验配置并创建插件。配置在创建后不再变化
func New(conf MysqlPlugin, opts ...Option) (*Plugin, *herrors.Error) {
	if conf.Name == "" {
		conf.Name = defaultName
	}
	if err := validateConf(&conf, strInvalidConf); err != nil {
		return nil, err
	}

	this := &Plugin{
		conf:     conf,
		section:  defaultSection,
		opener:   mysqlOpener{},
		stats:    new(Stats),
		resolved: cache.New(cache.NoExpiration, 0),
	}
	this.guard = newConnectGuard(&this.conf, this.stats)
	this.SetName(conf.Name)
	for _, opt := range opts {
		opt(this)
	}
	return this, nil
}

// Conf 返回插件配置的副本
func (this *Plugin) Conf() MysqlPlugin {
	return this.conf
}

func (this *Plugin) Config() core.IEntityConf {
	return &this.conf
}

func (this *Plugin) Keyword() string {
	return this.conf.Keyword
}

// Setup 确保同一宿主中没有其他使用相同注入名的mysql插件；同名插件以注入名区分
func (this *Plugin) Setup(host core.IRouteHost) *herrors.Error {
	if err := this.BasePlugin.Setup(host); err != nil {
		return err
	}

	for _, p := range host.Plugins() {
		other, ok := p.(*Plugin)
		if !ok || other == this {
			continue
		}
		if other.Keyword() == this.Keyword() {
			return herrors.ErrDBConfiguration.New("keyword [%s]", this.Keyword()).D(strDuplicatedKeyword)
		} else if other.Name() == this.Name() {
			this.SetName(this.Name() + "_" + this.Keyword())
		}
	}
	return nil
}

// Apply 路由未声明需要注入游标时原样返回处理函数。路由级配置格式错误时仍然包装，由请求返回配置错误
func (this *Plugin) Apply(handler fiber.Handler, route *core.Route) fiber.Handler {
	if route == nil {
		return handler
	}
	if kw, err := this.routeKeyword(route); err == nil && !route.Wants(kw) {
		return handler
	}

	return route.Wrap(this.Name(), handler, func(next fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			return this.serve(c, next, route)
		}
	})
}

func (this *Plugin) Capability() htypes.Any {
	return this.stats.Snapshot()
}

func (this *Plugin) Stats() StatsSnapshot {
	return this.stats.Snapshot()
}

func (this *Plugin) Close() {
	if n := this.stats.InFlight.Load(); n > 0 {
		hlogger.Warnf("%s closed with %d connections in flight", this.Name(), n)
	}
}

// Cursor 取出本插件注入到当前请求的游标
func (this *Plugin) Cursor(c *fiber.Ctx) *Cursor {
	return CursorFrom(c, this.conf.Keyword)
}

// CursorFrom 按注入名取出当前请求的游标，未注入时返回nil
func CursorFrom(c *fiber.Ctx, keyword string) *Cursor {
	cursor, _ := c.Locals(keyword).(*Cursor)
	return cursor
}

// Resolve 计算路由的有效配置：插件配置 + 路由级覆盖
func (this *Plugin) Resolve(route *core.Route) (*EffectiveConfig, *herrors.Error) {
	conf := this.conf
	override, ok, herr := this.override(route)
	if herr != nil {
		return nil, herr
	}
	if ok {
		if err := hruntime.StrictMap2Struct(override, &conf, "mapstructure"); err != nil {
			return nil, herrors.ErrDBConfiguration.New("%s (allowed: %s)", err.Error(),
				strings.Join(hruntime.FieldTags(&conf, "mapstructure"), ", ")).D(strInvalidRouteConf)
		}
		if err := validateConf(&conf, strInvalidRouteConf); err != nil {
			return nil, err
		}
	}
	return &EffectiveConfig{MysqlPlugin: conf}, nil
}

// resolve 与Resolve相同，成功的结果按路由缓存
func (this *Plugin) resolve(route *core.Route) (*EffectiveConfig, *herrors.Error) {
	key := fmt.Sprintf("%p", route)
	if conf, ok := this.resolved.Get(key); ok {
		return conf.(*EffectiveConfig), nil
	}

	conf, err := this.Resolve(route)
	if err != nil {
		return nil, err
	}
	this.resolved.SetDefault(key, conf)
	return conf, nil
}

func (this *Plugin) serve(c *fiber.Ctx, handler fiber.Handler, route *core.Route) (err error) {
	conf, herr := this.resolve(route)
	if herr != nil {
		return herr
	}

	// 同一请求已经注入过游标（重复包装），直接交给下一层
	if CursorFrom(c, conf.Keyword) != nil {
		return handler(c)
	}

	ctx := c.UserContext()
	mc, herr := this.guard.connect(conf, func() (*ManagedConnection, *herrors.Error) {
		return openConnection(ctx, this.opener, conf, this.stats)
	})
	if herr != nil {
		hlogger.Errorf("%s: failed to connect %s: %s", this.Name(), conf.DSN(), herr.Cause)
		return herr
	}
	c.Locals(conf.Keyword, mc.Cursor())

	defer func() {
		c.Locals(conf.Keyword, nil)
		if cerr := mc.close(); cerr != nil {
			hlogger.Errorf("%s: connection %s: %s", this.Name(), mc.ID(), cerr.Cause)
			err = appendCleanupError(err, cerr)
		}
	}()

	if err = handler(c); err != nil {
		if rerr := mc.Rollback(); rerr != nil {
			hlogger.Errorf("%s: connection %s: %s", this.Name(), mc.ID(), rerr.Cause)
			err = appendCleanupError(err, rerr)
		}
		return err
	}

	if conf.Autocommit {
		if cerr := mc.Commit(); cerr != nil {
			hlogger.Errorf("%s: connection %s: %s", this.Name(), mc.ID(), cerr.Cause)
			return cerr
		}
	}
	return nil
}

func (this *Plugin) override(route *core.Route) (htypes.Map, bool, *herrors.Error) {
	if route == nil || route.Meta.Config == nil {
		return nil, false, nil
	}
	section, ok, err := route.Meta.Config.Section(this.section)
	if err != nil {
		return nil, false, herrors.ErrDBConfiguration.New("%s", err.Error()).D(strInvalidRouteConf)
	}
	return section, ok, nil
}

func (this *Plugin) routeKeyword(route *core.Route) (string, *herrors.Error) {
	override, ok, err := this.override(route)
	if err != nil {
		return "", err
	}
	if ok {
		if kw, ok := override["keyword"].(string); ok && kw != "" {
			return kw, nil
		}
	}
	return this.conf.Keyword, nil
}

// appendCleanupError 清理阶段的错误不覆盖之前的错误，之前没有错误时清理错误即为返回的错误
func appendCleanupError(err error, cleanup *herrors.Error) error {
	if err == nil {
		return cleanup
	}
	return multierror.Append(err, cleanup)
}
