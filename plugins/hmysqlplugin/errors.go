package hmysqlplugin

import (
	"errors"
	"strings"

	"github.com/VividCortex/mysqlerr"
	"github.com/go-sql-driver/mysql"
	"gopkg.in/go-playground/validator.v9"

	"github.com/drharryhe/hasmysql/common/herrors"
)

var (
	strInvalidConf        = "invalid mysql plugin configuration"
	strInvalidRouteConf   = "invalid route mysql configuration"
	strDuplicatedKeyword  = "found another mysql plugin with conflicting settings (non-unique keyword)"
	strConnectFailed      = "database connection error"
	strBreakerOpen        = "too many connection failures, try again later"
	strQueryFailed        = "database error"
	strIntegrityViolated  = "database integrity error"
	strDataInvalid        = "database data error"
	strWarningRaised      = "database warning raised"
	strUnreadResult       = "unread result found"
	strNoResultSet        = "no result set to fetch from"
	strCursorClosed       = "cursor is not connected"
	strInvalidProcName    = "invalid procedure name"
	strCommitFailed       = "failed to commit transaction"
	strRollbackFailed     = "failed to rollback transaction"
	strCloseFailed        = "failed to close connection"
	strConnectionReleased = "connection already released"
)

// classify 按MySQL错误号将驱动错误归类，驱动错误通过Unwrap保留
func classify(err error) *herrors.Error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlerr.ER_DUP_ENTRY,
			mysqlerr.ER_DUP_KEY,
			mysqlerr.ER_BAD_NULL_ERROR,
			mysqlerr.ER_NO_REFERENCED_ROW,
			mysqlerr.ER_ROW_IS_REFERENCED,
			mysqlerr.ER_NO_REFERENCED_ROW_2,
			mysqlerr.ER_ROW_IS_REFERENCED_2:
			return herrors.ErrDBIntegrity.Wrap(err).D(strIntegrityViolated)
		case mysqlerr.ER_DATA_TOO_LONG,
			mysqlerr.ER_WARN_DATA_OUT_OF_RANGE,
			mysqlerr.ER_TRUNCATED_WRONG_VALUE,
			mysqlerr.ER_TRUNCATED_WRONG_VALUE_FOR_FIELD,
			mysqlerr.ER_DIVISION_BY_ZERO:
			return herrors.ErrDBData.Wrap(err).D(strDataInvalid)
		}
	}
	return herrors.ErrDBQuery.Wrap(err).D(strQueryFailed)
}

func describeValidation(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err.Error()
	}

	var ss []string
	for _, ve := range ves {
		ss = append(ss, "field ["+ve.Field()+"] failed on '"+ve.Tag()+"'")
	}
	return strings.Join(ss, "; ")
}
