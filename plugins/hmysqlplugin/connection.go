package hmysqlplugin

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/common/hlogger"
	"github.com/drharryhe/hasmysql/utils/hrandom"
)

type ConnState int

const (
	StateIdle ConnState = iota
	StateConnected
	StateCommitted
	StateRolledBack
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnected:
		return "CONNECTED"
	case StateCommitted:
		return "COMMITTED"
	case StateRolledBack:
		return "ROLLED_BACK"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ManagedConnection 一次请求独占的连接及其游标。
// 事务在连接建立时开启；手动Commit/Rollback之后，下一条语句会开启新的事务
type ManagedConnection struct {
	id    string
	ctx   context.Context
	conf  *EffectiveConfig
	stats *Stats

	mu     sync.Mutex
	db     *sql.DB
	conn   *sql.Conn
	tx     *sql.Tx
	cursor *Cursor
	state  ConnState
}

func openConnection(ctx context.Context, opener Opener, conf *EffectiveConfig, stats *Stats) (*ManagedConnection, *herrors.Error) {
	if ctx == nil {
		ctx = context.Background()
	}

	this := &ManagedConnection{
		id:    hrandom.ShortID(),
		ctx:   ctx,
		conf:  conf,
		stats: stats,
		state: StateIdle,
	}

	db, herr := opener.Open(ctx, conf)
	if herr != nil {
		stats.OpenFailures.Inc()
		return nil, herr
	}
	this.db = db

	conn, err := db.Conn(ctx)
	if err != nil {
		stats.OpenFailures.Inc()
		_ = db.Close()
		return nil, herrors.ErrDBConnection.Wrap(err).D(strConnectFailed)
	}
	this.conn = conn

	if conf.TimeZone != "" {
		if _, err = conn.ExecContext(ctx, "SET time_zone = ?", conf.TimeZone); err != nil {
			stats.OpenFailures.Inc()
			this.release()
			return nil, herrors.ErrDBConnection.Wrap(err).D(strConnectFailed)
		}
	}

	if this.tx, err = conn.BeginTx(ctx, nil); err != nil {
		stats.OpenFailures.Inc()
		this.release()
		return nil, herrors.ErrDBConnection.Wrap(err).D(strConnectFailed)
	}

	this.cursor = newCursor(this, conf)
	this.setState(StateConnected)
	stats.Opened.Inc()
	stats.InFlight.Inc()
	return this, nil
}

func (this *ManagedConnection) ID() string {
	return this.id
}

func (this *ManagedConnection) State() ConnState {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.state
}

func (this *ManagedConnection) Cursor() *Cursor {
	return this.cursor
}

func (this *ManagedConnection) Context() context.Context {
	return this.ctx
}

// InTransaction 是否有未结束的事务
func (this *ManagedConnection) InTransaction() bool {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.tx != nil
}

// Commit 提交当前事务，没有未结束的事务时什么也不做
func (this *ManagedConnection) Commit() *herrors.Error {
	tx, herr := this.takeTx()
	if herr != nil || tx == nil {
		return herr
	}

	if err := tx.Commit(); err != nil {
		this.stats.CleanupFailures.Inc()
		return herrors.ErrDBCleanup.Wrap(err).D(strCommitFailed)
	}
	this.stats.Committed.Inc()
	this.setState(StateCommitted)
	return nil
}

// Rollback 回滚当前事务，没有未结束的事务时什么也不做
func (this *ManagedConnection) Rollback() *herrors.Error {
	tx, herr := this.takeTx()
	if herr != nil || tx == nil {
		return herr
	}

	if err := tx.Rollback(); err != nil {
		this.stats.CleanupFailures.Inc()
		return herrors.ErrDBCleanup.Wrap(err).D(strRollbackFailed)
	}
	this.stats.RolledBack.Inc()
	this.setState(StateRolledBack)
	return nil
}

// takeTx 结束游标上未读完的结果集后交出当前事务。未读完的结果集会阻塞事务的提交与回滚
func (this *ManagedConnection) takeTx() (*sql.Tx, *herrors.Error) {
	this.cursor.discard()

	this.mu.Lock()
	defer this.mu.Unlock()

	if this.state == StateClosed {
		return nil, herrors.ErrDBCleanup.New(strConnectionReleased).D(strConnectionReleased)
	}
	tx := this.tx
	this.tx = nil
	return tx, nil
}

// queryer 返回语句执行所在的事务，必要时开启新事务
func (this *ManagedConnection) queryer() (*sql.Tx, *herrors.Error) {
	this.mu.Lock()
	defer this.mu.Unlock()

	if this.state == StateClosed {
		return nil, herrors.ErrDBQuery.New(strCursorClosed).D(strCursorClosed)
	}
	if this.tx != nil {
		return this.tx, nil
	}

	tx, err := this.conn.BeginTx(this.ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	this.tx = tx
	this.state = StateConnected
	return tx, nil
}

// close 释放游标与连接。仍未结束的事务被回滚，任何一步失败都不影响后续步骤
func (this *ManagedConnection) close() *herrors.Error {
	if this.State() == StateClosed {
		return nil
	}

	var errs []error
	if tx, _ := this.takeTx(); tx != nil {
		hlogger.Warnf("mysql connection %s closed with uncommitted transaction, rolling back", this.id)
		if err := tx.Rollback(); err != nil {
			errs = append(errs, err)
		} else {
			this.stats.RolledBack.Inc()
		}
	}
	this.cursor.Close()
	errs = append(errs, this.release()...)

	this.setState(StateClosed)
	this.stats.Closed.Inc()
	this.stats.InFlight.Dec()

	if len(errs) == 0 {
		return nil
	}
	this.stats.CleanupFailures.Inc()

	var causes []string
	for _, e := range errs {
		causes = append(causes, e.Error())
	}
	herr := herrors.ErrDBCleanup.Wrap(errs[0]).D(strCloseFailed)
	herr.Cause = strings.Join(causes, "; ")
	return herr
}

func (this *ManagedConnection) release() []error {
	var errs []error
	if this.conn != nil {
		if err := this.conn.Close(); err != nil && err != sql.ErrConnDone {
			errs = append(errs, err)
		}
		this.conn = nil
	}
	if this.db != nil {
		if err := this.db.Close(); err != nil {
			errs = append(errs, err)
		}
		this.db = nil
	}
	return errs
}

func (this *ManagedConnection) setState(s ConnState) {
	this.mu.Lock()
	from := this.state
	this.state = s
	this.mu.Unlock()

	if hlogger.IsDebugEnabled() {
		hlogger.WithFields(map[string]interface{}{
			"conn": this.id,
			"from": from.String(),
			"to":   s.String(),
		}).Debug("mysql connection state changed")
	}
}
