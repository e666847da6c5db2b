package hwebconnector

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/common/htypes"
	"github.com/drharryhe/hasmysql/core"
)

// tracePlugin 在响应头中记录包装顺序
type tracePlugin struct {
	core.BasePlugin
	conf     core.PluginConf
	setupErr *herrors.Error
	closed   bool
}

func newTracePlugin(name string) *tracePlugin {
	p := &tracePlugin{}
	p.SetName(name)
	p.conf.Name = name
	return p
}

func (this *tracePlugin) Config() core.IEntityConf {
	return &this.conf
}

func (this *tracePlugin) Setup(host core.IRouteHost) *herrors.Error {
	if this.setupErr != nil {
		return this.setupErr
	}
	return this.BasePlugin.Setup(host)
}

func (this *tracePlugin) Apply(handler fiber.Handler, route *core.Route) fiber.Handler {
	return route.Wrap(this.Name(), handler, func(next fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Append("X-Trace", this.Name())
			return next(c)
		}
	})
}

func (this *tracePlugin) Capability() htypes.Any {
	return nil
}

func (this *tracePlugin) Close() {
	this.closed = true
}

func request(t *testing.T, app *fiber.App, method string, path string) (int, string, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	bs, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(bs, &body))
	return resp.StatusCode, resp.Header.Get("X-Trace"), body
}

func TestNewDefaults(t *testing.T) {
	c := New(WebConnector{})
	assert.Equal(t, defaultPort, c.conf.Port)
	assert.Equal(t, defaultBodyLimit, c.conf.BodyLimit)
	assert.False(t, c.Config().GetDisabled())
	assert.NotNil(t, c.App())
}

func TestInstall(t *testing.T) {
	c := New(WebConnector{})

	outer := newTracePlugin("outer")
	require.Nil(t, c.Install(outer))
	assert.Equal(t, c, outer.Host())

	disabled := newTracePlugin("disabled")
	disabled.conf.SetDisabled(true)
	require.Nil(t, c.Install(disabled))

	broken := newTracePlugin("broken")
	broken.setupErr = herrors.ErrDBConfiguration.New("duplicated").D("setup failed")
	assert.Equal(t, broken.setupErr, c.Install(broken))

	require.Len(t, c.Plugins(), 1)
	assert.Equal(t, "outer", c.Plugins()[0].Name())

	c.Shutdown()
	assert.True(t, outer.closed)
	assert.False(t, disabled.closed)
}

func TestHandlePluginOrder(t *testing.T) {
	c := New(WebConnector{})
	require.Nil(t, c.Install(newTracePlugin("first")))
	require.Nil(t, c.Install(newTracePlugin("second")))

	route := c.Get("/items", func(ctx *fiber.Ctx) error {
		return c.SendResponse(ctx, htypes.Map{"id": 1})
	})
	c.Get("/skip", func(ctx *fiber.Ctx) error {
		return c.SendResponse(ctx, nil)
	}, core.RouteMeta{Skip: []string{"second"}})

	status, trace, body := request(t, c.App(), fiber.MethodGet, "/items")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "first, second", trace)
	assert.EqualValues(t, 1, body["data"].(map[string]interface{})["id"])
	assert.EqualValues(t, herrors.ECodeOK, body["error"].(map[string]interface{})["code"])
	assert.True(t, route.Applied("first"))
	assert.True(t, route.Applied("second"))

	status, trace, body = request(t, c.App(), fiber.MethodGet, "/skip")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "first", trace)
	assert.Equal(t, map[string]interface{}{}, body["data"])

	assert.Len(t, c.Routes(), 2)
}

func TestHandleErrors(t *testing.T) {
	c := New(WebConnector{})
	c.Post("/dup", func(ctx *fiber.Ctx) error {
		return herrors.ErrDBIntegrity.New("Duplicate entry 'a'").D("database integrity error")
	})
	c.Put("/bad", func(ctx *fiber.Ctx) error {
		return herrors.ErrDBData.New("Data too long").D("database data error")
	})
	c.Delete("/plain", func(ctx *fiber.Ctx) error {
		return errors.New("something broke")
	})

	status, _, body := request(t, c.App(), fiber.MethodPost, "/dup")
	assert.Equal(t, fiber.StatusConflict, status)
	e := body["error"].(map[string]interface{})
	assert.EqualValues(t, herrors.ECodeDBIntegrity, e["code"])
	assert.Equal(t, "database integrity error", e["desc"])
	assert.Equal(t, "Duplicate entry 'a'", e["cause"])

	status, _, _ = request(t, c.App(), fiber.MethodPut, "/bad")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _, body = request(t, c.App(), fiber.MethodDelete, "/plain")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	e = body["error"].(map[string]interface{})
	assert.EqualValues(t, herrors.ECodeUnknown, e["code"])
	assert.Equal(t, "something broke", e["desc"])

	status, _, _ = request(t, c.App(), fiber.MethodGet, "/missing")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleErrorsDebugStack(t *testing.T) {
	c := New(WebConnector{Debug: true})
	c.Get("/x", func(ctx *fiber.Ctx) error {
		return herrors.ErrSysInternal.New("boom").WithStack()
	})

	status, _, body := request(t, c.App(), fiber.MethodGet, "/x")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotEmpty(t, body["error"].(map[string]interface{})["stack"])
}

func TestStatusOf(t *testing.T) {
	integrity := herrors.ErrDBIntegrity.New("dup")
	cases := []struct {
		err    error
		status int
	}{
		{herrors.ErrOK, fiber.StatusOK},
		{herrors.ErrCallerInvalidRequest.New("bad"), fiber.StatusBadRequest},
		{herrors.ErrUserUnauthorizedAct.New("no"), fiber.StatusForbidden},
		{herrors.ErrSysBusy.New("busy"), fiber.StatusServiceUnavailable},
		{integrity, fiber.StatusConflict},
		{herrors.ErrDBData.New("range"), fiber.StatusUnprocessableEntity},
		{herrors.ErrDBConnection.New("refused"), fiber.StatusInternalServerError},
		{herrors.ErrDBCleanup.New("close"), fiber.StatusInternalServerError},
		{multierror.Append(integrity, herrors.ErrDBCleanup.New("rollback")), fiber.StatusConflict},
		{fiber.ErrNotFound, fiber.StatusNotFound},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, StatusOf(c.err), c.err.Error())
	}
}
