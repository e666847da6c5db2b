package main

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drharryhe/hasmysql/common/hconf"
	"github.com/drharryhe/hasmysql/common/hlogger"
	"github.com/drharryhe/hasmysql/common/htypes"
	"github.com/drharryhe/hasmysql/connectors/hwebconnector"
	"github.com/drharryhe/hasmysql/core"
	"github.com/drharryhe/hasmysql/plugins/hmysqlplugin"
)

func main() {
	conf, err := hconf.Open(hconf.ConfFile(core.Env()))
	if err != nil {
		panic(err)
	}

	server, err := core.NewServer(conf)
	if err != nil {
		panic(err)
	}

	var webConf hwebconnector.WebConnector
	if err = conf.Load(&webConf); err != nil {
		panic(err)
	}
	web := hwebconnector.New(webConf)

	mysqlConf := hmysqlplugin.DefaultConf()
	if err = conf.Load(&mysqlConf); err != nil {
		panic(err)
	}
	plugin, err := hmysqlplugin.New(mysqlConf)
	if err != nil {
		panic(err)
	}
	if err = web.Install(plugin); err != nil {
		panic(err)
	}

	web.Get("/show/:name", func(c *fiber.Ctx) error {
		cursor := plugin.Cursor(c)
		if err := cursor.Execute("SELECT * FROM items WHERE name = ?", c.Params("name")); err != nil {
			return err
		}
		row, err := cursor.FetchOne()
		if err != nil {
			return err
		}
		if row == nil {
			return fiber.ErrNotFound
		}
		return web.SendResponse(c, row)
	}, core.RouteMeta{Inject: []string{plugin.Keyword()}})

	web.Post("/items/:name", func(c *fiber.Ctx) error {
		cursor := plugin.Cursor(c)
		if err := cursor.Execute("INSERT INTO items (name) VALUES (?)", c.Params("name")); err != nil {
			return err
		}
		return web.SendResponse(c, htypes.Map{"id": cursor.LastRowID()})
	}, core.RouteMeta{Inject: []string{plugin.Keyword()}})

	// 报表库：只读，不提交
	web.Get("/report", func(c *fiber.Ctx) error {
		cursor := hmysqlplugin.CursorFrom(c, "report")
		if err := cursor.Execute("SELECT name, COUNT(*) AS n FROM items GROUP BY name"); err != nil {
			return err
		}
		rows, err := cursor.FetchAll()
		if err != nil {
			return err
		}
		return web.SendResponse(c, rows)
	}, core.RouteMeta{
		Inject: []string{"report"},
		Config: htypes.Map{
			"mysql.keyword":    "report",
			"mysql.database":   "reports",
			"mysql.autocommit": false,
			"mysql.buffered":   true,
		},
	})

	web.Get("/stats", func(c *fiber.Ctx) error {
		return web.SendResponse(c, plugin.Capability())
	})

	hlogger.Infof("mysql plugin connecting to %s", (&hmysqlplugin.EffectiveConfig{MysqlPlugin: plugin.Conf()}).DSN())
	server.Start(web)
}
