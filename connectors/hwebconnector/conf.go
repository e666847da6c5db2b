package hwebconnector

import "github.com/drharryhe/hasmysql/core"

type WebConnector struct {
	core.EntityConfBase

	Port        int
	BodyLimit   int // Mbit
	Tls         bool
	TlsCertPath string
	TlsKeyPath  string
	Debug       bool //出错时在响应中附带调用栈
}
