package hmysqlplugin

import (
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drharryhe/hasmysql/common/herrors"
)

// Gorm 返回绑定在请求事务上的gorm会话，语句与游标共享同一个事务。
// 事务的提交与回滚仍由插件或Connection()负责，不要在返回的会话上调用Commit/Rollback
func (this *Cursor) Gorm() (*gorm.DB, *herrors.Error) {
	if this.closed {
		return nil, herrors.ErrDBQuery.New(strCursorClosed).D(strCursorClosed)
	}
	if this.rows != nil {
		return nil, herrors.ErrDBQuery.New(strUnreadResult).D(strUnreadResult)
	}

	tx, herr := this.conn.queryer()
	if herr != nil {
		return nil, herr
	}

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      tx,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, herrors.ErrDBQuery.Wrap(err).D(strQueryFailed)
	}
	return db.WithContext(this.conn.Context()), nil
}
