package hconf

import (
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pelletier/go-toml/v2"

	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/utils/hio"
	"github.com/drharryhe/hasmysql/utils/hruntime"
)

const (
	DefaultConfFile = "./conf.toml"
	defaultLogFile  = "has.log"
)

// ConfFile 根据运行环境返回配置文件名，env为空时为缺省配置文件
func ConfFile(env string) string {
	if env == "" {
		return DefaultConfFile
	}
	return fmt.Sprintf("./conf_%s.toml", env)
}

type Conf struct {
	path       string
	version    string
	debug      bool
	logOutputs []string
	logFile    string

	mu         sync.Mutex
	configures map[string]interface{}
}

// Open 读取并解析toml配置文件
func Open(path string) (*Conf, *herrors.Error) {
	if !hio.IsFileExist(path) {
		return nil, herrors.ErrSysInternal.New("config file [%s] not found", path).D("failed to init hconf")
	}
	bytes, err := hio.ReadFile(path)
	if err != nil {
		return nil, herrors.ErrSysInternal.Wrap(err).D("failed to init hconf")
	}
	return Parse(path, bytes)
}

// Parse 解析toml内容，path仅用于错误提示
func Parse(path string, bytes []byte) (*Conf, *herrors.Error) {
	conf := &Conf{path: path}
	conf.configures = make(map[string]interface{})
	if err := toml.Unmarshal(bytes, &conf.configures); err != nil {
		return nil, herrors.ErrSysInternal.Wrap(err).D("failed to parse %s", path)
	}

	conf.version, _ = conf.configures["Version"].(string)
	conf.debug, _ = conf.configures["Debug"].(bool)
	conf.logFile, _ = conf.configures["LogFile"].(string)
	if outs, ok := conf.configures["LogOutputs"].([]interface{}); ok {
		for _, o := range outs {
			if s, ok := o.(string); ok {
				conf.logOutputs = append(conf.logOutputs, s)
			}
		}
	}
	if conf.logFile == "" {
		conf.logFile = defaultLogFile
	}

	return conf, nil
}

func (this *Conf) Path() string {
	return this.path
}

func (this *Conf) Version() string {
	return this.version
}

func (this *Conf) IsDebug() bool {
	return this.debug
}

func (this *Conf) LogOutputs() []string {
	return this.logOutputs
}

func (this *Conf) LogFile() string {
	return this.logFile
}

// Load 将与conf类型同名的配置段填充到conf中。conf中已有的值作为缺省值，配置段中没有的项保持不变
func (this *Conf) Load(conf interface{}) *herrors.Error {
	name := hruntime.GetObjectName(conf)

	this.mu.Lock()
	defer this.mu.Unlock()

	c, ok := this.configures[name]
	if !ok {
		return herrors.ErrSysInternal.C("config section [%s] not found", name).D("failed to load conf")
	}

	bs, err := jsoniter.Marshal(c)
	if err != nil {
		return herrors.ErrSysInternal.C("failed to marshal conf section [%s]", name).D("failed to load conf")
	}

	err = jsoniter.Unmarshal(bs, conf)
	if err != nil {
		return herrors.ErrSysInternal.C("failed to unmarshal conf section [%s], please make sure conf.toml items' data type consistent with conf struct's fields data type", name).D("failed to load conf")
	}

	return nil
}

// Has 判断配置段是否存在
func (this *Conf) Has(section string) bool {
	this.mu.Lock()
	defer this.mu.Unlock()

	_, ok := this.configures[section]
	return ok
}
