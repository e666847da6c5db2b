package hmysqlplugin

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/drharryhe/hasmysql/common/herrors"
)

// Opener 为一次请求打开专用的数据库句柄。返回的*sql.DB只服务于该请求，请求结束时被关闭
type Opener interface {
	Open(ctx context.Context, conf *EffectiveConfig) (*sql.DB, *herrors.Error)
}

type OpenerFunc func(ctx context.Context, conf *EffectiveConfig) (*sql.DB, *herrors.Error)

func (f OpenerFunc) Open(ctx context.Context, conf *EffectiveConfig) (*sql.DB, *herrors.Error) {
	return f(ctx, conf)
}

// EffectiveConfig 插件配置与路由级配置合并后的结果，只在一次请求内有效
type EffectiveConfig struct {
	MysqlPlugin
}

func (this *EffectiveConfig) Addr() string {
	if strings.HasPrefix(this.Host, "/") {
		return this.Host
	}
	return net.JoinHostPort(this.Host, strconv.Itoa(this.Port))
}

// DriverConfig 生成go-sql-driver/mysql的连接配置
func (this *EffectiveConfig) DriverConfig() *mysql.Config {
	c := mysql.NewConfig()
	c.User = this.User
	c.Passwd = this.Password
	c.DBName = this.Database
	c.Addr = this.Addr()
	if strings.HasPrefix(this.Host, "/") {
		c.Net = "unix"
	} else {
		c.Net = "tcp"
	}
	c.Params = map[string]string{"charset": this.Charset}
	c.ParseTime = true
	c.Loc = time.Local
	// use_pure=false时参数在客户端插值，减少一次prepare往返
	c.InterpolateParams = !this.UsePure
	return c
}

// DSN 日志用，不含密码
func (this *EffectiveConfig) DSN() string {
	c := this.DriverConfig()
	c.Passwd = ""
	return c.FormatDSN()
}

type mysqlOpener struct{}

func (this mysqlOpener) Open(ctx context.Context, conf *EffectiveConfig) (*sql.DB, *herrors.Error) {
	connector, err := mysql.NewConnector(conf.DriverConfig())
	if err != nil {
		return nil, herrors.ErrDBConnection.Wrap(err).D(strConnectFailed)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}
