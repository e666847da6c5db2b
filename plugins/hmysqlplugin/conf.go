package hmysqlplugin

import "github.com/drharryhe/hasmysql/core"

const (
	defaultName     = "mysql"
	defaultHost     = "localhost"
	defaultPort     = 3306
	defaultCharset  = "utf8mb4"
	defaultKeyword  = "db"
	defaultSection  = "mysql"
	keywordValidTag = "keyword"

	//熔断器缺省设置
	defaultBreakerVolumeThreshold = 20
	defaultBreakerSleepWindow     = 5000
	defaultBreakerErrorPercent    = 50
)

// MysqlPlugin 插件配置。conf.toml中按字段名配置，路由级覆盖使用mapstructure标签名
type MysqlPlugin struct {
	core.PluginConf `mapstructure:"-"`

	User            string `mapstructure:"user" validate:"required"`
	Password        string `mapstructure:"password" validate:"required"`
	Database        string `mapstructure:"database" validate:"required"`
	Host            string `mapstructure:"host" validate:"required"`
	Port            int    `mapstructure:"port" validate:"min=1,max=65535"`
	Charset         string `mapstructure:"charset" validate:"required"`
	Autocommit      bool   `mapstructure:"autocommit"`
	Dictionary      bool   `mapstructure:"dictionary"`
	Buffered        bool   `mapstructure:"buffered"`
	TimeZone        string `mapstructure:"time_zone"`
	Keyword         string `mapstructure:"keyword" validate:"required,keyword"`
	RaiseOnWarnings bool   `mapstructure:"raise_on_warnings"`
	UsePure         bool   `mapstructure:"use_pure"`

	// 以下为插件级设置，路由中不能覆盖
	// 每秒最多新建的连接数，0为不限制
	ConnectRate int `mapstructure:"-" validate:"min=0"`
	// 连接失败过多时暂停连接数据库，BreakerSleepWindow单位为ms
	UseBreaker             bool `mapstructure:"-"`
	BreakerVolumeThreshold int  `mapstructure:"-"`
	BreakerSleepWindow     int  `mapstructure:"-"`
	BreakerErrorPercent    int  `mapstructure:"-"`
}

// DefaultConf 返回带缺省值的配置，使用者在此基础上填写账号信息
func DefaultConf() MysqlPlugin {
	conf := MysqlPlugin{
		Host:       defaultHost,
		Port:       defaultPort,
		Charset:    defaultCharset,
		Autocommit: true,
		Dictionary: true,
		Keyword:    defaultKeyword,
		UsePure:    true,

		BreakerVolumeThreshold: defaultBreakerVolumeThreshold,
		BreakerSleepWindow:     defaultBreakerSleepWindow,
		BreakerErrorPercent:    defaultBreakerErrorPercent,
	}
	conf.Name = defaultName
	return conf
}
