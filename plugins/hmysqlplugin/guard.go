package hmysqlplugin

import (
	"time"

	"github.com/afex/hystrix-go/hystrix"
	"go.uber.org/ratelimit"

	"github.com/drharryhe/hasmysql/common/herrors"
)

// connectGuard 在建立连接前限流并做熔断。每个数据库地址一个熔断器
type connectGuard struct {
	limiter ratelimit.Limiter
	breaker *hystrix.CommandConfig
	stats   *Stats
}

func newConnectGuard(conf *MysqlPlugin, stats *Stats) *connectGuard {
	g := &connectGuard{stats: stats}
	if conf.ConnectRate > 0 {
		g.limiter = ratelimit.New(conf.ConnectRate)
	}
	if conf.UseBreaker {
		g.breaker = &hystrix.CommandConfig{
			RequestVolumeThreshold: conf.BreakerVolumeThreshold,
			SleepWindow:            conf.BreakerSleepWindow,
			ErrorPercentThreshold:  conf.BreakerErrorPercent,
		}
	}
	return g
}

func (this *connectGuard) cmdName(conf *EffectiveConfig) string {
	return "mysql:" + conf.Addr()
}

// connect 熔断器打开时直接返回ConnectionError，不再尝试连接
func (this *connectGuard) connect(conf *EffectiveConfig, open func() (*ManagedConnection, *herrors.Error)) (*ManagedConnection, *herrors.Error) {
	if this.limiter != nil {
		this.limiter.Take()
	}
	if this.breaker == nil {
		return open()
	}

	cmd := this.cmdName(conf)
	if hystrix.GetCircuitSettings()[cmd] == nil {
		hystrix.ConfigureCommand(cmd, *this.breaker)
	}
	circuit, _, err := hystrix.GetCircuit(cmd)
	if err != nil {
		return nil, herrors.ErrDBConnection.Wrap(err).D(strConnectFailed)
	}
	if !circuit.AllowRequest() {
		this.stats.Rejected.Inc()
		return nil, herrors.ErrDBConnection.New("circuit [%s] is open", cmd).D(strBreakerOpen)
	}

	start := time.Now()
	mc, herr := open()
	event := "success"
	if herr != nil {
		event = "failure"
	}
	_ = circuit.ReportEvent([]string{event}, start, time.Since(start))
	return mc, herr
}
