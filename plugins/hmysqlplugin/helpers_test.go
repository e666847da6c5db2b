package hmysqlplugin

import (
	"context"
	"database/sql"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/core"
)

// mockOpener 每次Open都交出同一个sqlmock句柄，并记录打开次数
type mockOpener struct {
	db      *sql.DB
	opens   atomic.Int64
	lastCfg *EffectiveConfig
	err     *herrors.Error
}

func (this *mockOpener) Open(ctx context.Context, conf *EffectiveConfig) (*sql.DB, *herrors.Error) {
	this.opens.Inc()
	this.lastCfg = conf
	if this.err != nil {
		return nil, this.err
	}
	return this.db, nil
}

func testConf() MysqlPlugin {
	conf := DefaultConf()
	conf.User = "u"
	conf.Password = "p"
	conf.Database = "d"
	return conf
}

func newMockPlugin(t *testing.T, conf MysqlPlugin) (*Plugin, sqlmock.Sqlmock, *mockOpener) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	opener := &mockOpener{db: db}
	p, herr := New(conf, WithOpener(opener))
	require.Nil(t, herr)
	return p, mock, opener
}

// serveRoute 将handler按meta包装后挂到一个新的fiber应用上，返回应用与捕获到的错误
type served struct {
	app   *fiber.App
	err   error
	route *core.Route
}

func serveRoute(p *Plugin, handler fiber.Handler, meta core.RouteMeta) *served {
	s := &served{}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			s.err = err
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	s.route = core.NewRoute(fiber.MethodGet, "/x", handler, meta)
	s.app.Get("/x", p.Apply(handler, s.route))
	return s
}

func (this *served) get(t *testing.T) (int, interface{}) {
	t.Helper()

	resp, err := this.app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	bs, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body interface{}
	if len(bs) > 0 && (bs[0] == '{' || bs[0] == '[') {
		require.NoError(t, jsoniter.Unmarshal(bs, &body))
	} else {
		body = string(bs)
	}
	return resp.StatusCode, body
}

func wantDB(keyword ...string) core.RouteMeta {
	if len(keyword) == 0 {
		keyword = []string{defaultKeyword}
	}
	return core.RouteMeta{Inject: keyword}
}
