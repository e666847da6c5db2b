package core

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/mkideal/cli"

	"github.com/drharryhe/hasmysql/common/hconf"
	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/common/hlogger"
)

const (
	defaultPprofPort = 6060
)

type Server struct {
	EntityConfBase

	MaxProcs  int
	PprofPort int
}

type CmdArgs struct {
	Env string `cli:"e,env" usage:"当前运行环境(dev/test)"`
}

// IConnector 对外提供服务的宿主，如hwebconnector
type IConnector interface {
	IRouteHost
	Install(p IRoutePlugin) *herrors.Error
	Listen() *herrors.Error
	Shutdown()
}

// Env 从命令行参数中取得运行环境，未指定时为生产环境
func Env() string {
	var env string
	cli.Run(new(CmdArgs), func(ctx *cli.Context) error {
		env = ctx.Argv().(*CmdArgs).Env
		return nil
	})

	switch env {
	case "":
		hlogger.Alert(">生产环境<")
	case "dev":
		hlogger.Alert(">开发环境<")
	case "test":
		hlogger.Alert(">测试环境<")
	default:
		hlogger.Alertf(">自定义: %s<", env)
	}
	return env
}

// NewServer 按配置初始化日志与运行参数。配置中没有Server段时使用缺省值
func NewServer(conf *hconf.Conf) (*ServerImplement, *herrors.Error) {
	if conf == nil {
		return nil, herrors.ErrSysInternal.New("conf cannot be nil").D("failed to init server")
	}

	s := &ServerImplement{
		cfg:        conf,
		quitSignal: make(chan os.Signal, 1),
	}
	if conf.Has("Server") {
		if err := conf.Load(&s.conf); err != nil {
			return nil, err
		}
	}

	hlogger.Init(conf.LogOutputs(), conf.LogFile())
	if conf.IsDebug() {
		_ = hlogger.SetLevel("debug")
		go s.servePprof()
	} else {
		_ = hlogger.SetLevel("info")
	}
	return s, nil
}

type ServerImplement struct {
	conf       Server
	cfg        *hconf.Conf
	quitSignal chan os.Signal
}

func (this *ServerImplement) Config() IEntityConf {
	return &this.conf
}

func (this *ServerImplement) Conf() *hconf.Conf {
	return this.cfg
}

// Start 启动connector并阻塞，直到收到退出信号或connector停止服务
func (this *ServerImplement) Start(connector IConnector) {
	if this.conf.MaxProcs > 0 {
		runtime.GOMAXPROCS(this.conf.MaxProcs)
	}

	go func() {
		if err := connector.Listen(); err != nil {
			hlogger.Critical(err)
		}
		this.Shutdown()
	}()
	hlogger.Info("server started...")

	this.waitForQuit()
	connector.Shutdown()
	hlogger.Info("server exited")
}

func (this *ServerImplement) Shutdown() {
	select {
	case this.quitSignal <- syscall.SIGQUIT:
	default:
	}
}

func (this *ServerImplement) waitForQuit() {
	signal.Notify(this.quitSignal,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer signal.Stop(this.quitSignal)

	<-this.quitSignal
}

func (this *ServerImplement) servePprof() {
	if this.conf.PprofPort == 0 {
		this.conf.PprofPort = defaultPprofPort
	}
	for {
		hlogger.Infof("pprof port: %d", this.conf.PprofPort)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", this.conf.PprofPort), nil); err != nil {
			hlogger.Error(err)
			this.conf.PprofPort++
			continue
		}
		return
	}
}
