package hmysqlplugin

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/drharryhe/hasmysql/common/herrors"
	"github.com/drharryhe/hasmysql/common/htypes"
)

var rowStatements = map[string]bool{
	"SELECT":   true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"EXPLAIN":  true,
	"WITH":     true,
	"CALL":     true,
	"VALUES":   true,
	"TABLE":    true,
}

// ResultSet 一个完整读出的结果集。行的形态由dictionary决定：htypes.Map 或 []htypes.Any
type ResultSet struct {
	Columns []string
	Rows    []htypes.Any
}

func (this *ResultSet) FetchAll() []htypes.Any {
	return this.Rows
}

// Cursor 注入到路由处理函数中的游标，语句都在请求事务内执行
type Cursor struct {
	conn            *ManagedConnection
	dictionary      bool
	buffered        bool
	raiseOnWarnings bool

	columns   []string
	rows      *sql.Rows
	buffer    []htypes.Any
	hasResult bool
	pos       int
	rowCount  int64
	lastRowID int64
	stored    []*ResultSet
	closed    bool
}

func newCursor(conn *ManagedConnection, conf *EffectiveConfig) *Cursor {
	return &Cursor{
		conn:            conn,
		dictionary:      conf.Dictionary,
		buffered:        conf.Buffered,
		raiseOnWarnings: conf.RaiseOnWarnings,
		rowCount:        -1,
	}
}

// Connection 返回游标所属的连接，autocommit关闭时用于手动提交或回滚
func (this *Cursor) Connection() *ManagedConnection {
	return this.conn
}

func (this *Cursor) Dictionary() bool {
	return this.dictionary
}

func (this *Cursor) Buffered() bool {
	return this.buffered
}

func (this *Cursor) Columns() []string {
	return this.columns
}

func (this *Cursor) LastRowID() int64 {
	return this.lastRowID
}

// RowCount 写语句为影响行数；buffered查询为结果行数；非buffered查询为已读取行数；尚未执行语句时为-1
func (this *Cursor) RowCount() int64 {
	return this.rowCount
}

func (this *Cursor) Execute(query string, args ...interface{}) *herrors.Error {
	if this.closed {
		return herrors.ErrDBQuery.New(strCursorClosed).D(strCursorClosed)
	}
	if this.rows != nil {
		return herrors.ErrDBQuery.New(strUnreadResult).D(strUnreadResult)
	}
	this.reset()

	tx, herr := this.conn.queryer()
	if herr != nil {
		return herr
	}
	ctx := this.conn.Context()

	if !returnsRows(query) {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return classify(err)
		}
		if id, err := res.LastInsertId(); err == nil {
			this.lastRowID = id
		}
		if n, err := res.RowsAffected(); err == nil {
			this.rowCount = n
		}
		return this.checkWarnings(tx)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	if this.columns, err = rows.Columns(); err != nil {
		_ = rows.Close()
		return classify(err)
	}
	this.hasResult = true

	if !this.buffered {
		this.rows = rows
		this.rowCount = 0
		return nil
	}

	this.buffer, herr = this.scanAll(rows, this.columns)
	_ = rows.Close()
	if herr != nil {
		return herr
	}
	this.rowCount = int64(len(this.buffer))
	return this.checkWarnings(tx)
}

// ExecuteMany 对每组参数执行一次语句，RowCount为累计影响行数
func (this *Cursor) ExecuteMany(query string, argsList [][]interface{}) *herrors.Error {
	var total int64
	for _, args := range argsList {
		if err := this.Execute(query, args...); err != nil {
			return err
		}
		if this.rows != nil {
			this.discard()
		}
		if this.rowCount > 0 {
			total += this.rowCount
		}
	}
	this.rowCount = total
	return nil
}

// FetchOne 返回下一行，没有更多行时返回nil
func (this *Cursor) FetchOne() (htypes.Any, *herrors.Error) {
	if this.closed {
		return nil, herrors.ErrDBQuery.New(strCursorClosed).D(strCursorClosed)
	}
	if !this.hasResult {
		return nil, herrors.ErrDBQuery.New(strNoResultSet).D(strNoResultSet)
	}

	if this.rows == nil {
		if this.pos >= len(this.buffer) {
			return nil, nil
		}
		row := this.buffer[this.pos]
		this.pos++
		return row, nil
	}

	if !this.rows.Next() {
		err := this.rows.Err()
		this.discard()
		if err != nil {
			return nil, classify(err)
		}
		// 结果集读完后告警才完整
		if this.raiseOnWarnings {
			tx, herr := this.conn.queryer()
			if herr != nil {
				return nil, herr
			}
			return nil, this.checkWarnings(tx)
		}
		return nil, nil
	}

	row, err := scanRow(this.rows, this.columns, this.dictionary)
	if err != nil {
		this.discard()
		return nil, classify(err)
	}
	this.rowCount++
	return row, nil
}

// FetchMany 最多返回size行
func (this *Cursor) FetchMany(size int) ([]htypes.Any, *herrors.Error) {
	var res []htypes.Any
	for i := 0; i < size; i++ {
		row, err := this.FetchOne()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		res = append(res, row)
	}
	return res, nil
}

// FetchAll 返回剩余的所有行
func (this *Cursor) FetchAll() ([]htypes.Any, *herrors.Error) {
	var res []htypes.Any
	for {
		row, err := this.FetchOne()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return res, nil
		}
		res = append(res, row)
	}
}

// CallProc 调用存储过程，结果集通过StoredResults取得
func (this *Cursor) CallProc(name string, args ...interface{}) *herrors.Error {
	if this.closed {
		return herrors.ErrDBQuery.New(strCursorClosed).D(strCursorClosed)
	}
	if !procNameRe.MatchString(name) {
		return herrors.ErrDBQuery.New("procedure [%s]", name).D(strInvalidProcName)
	}
	if this.rows != nil {
		return herrors.ErrDBQuery.New(strUnreadResult).D(strUnreadResult)
	}
	this.reset()

	tx, herr := this.conn.queryer()
	if herr != nil {
		return herr
	}

	marks := make([]string, len(args))
	for i := range marks {
		marks[i] = "?"
	}
	rows, err := tx.QueryContext(this.conn.Context(), fmt.Sprintf("CALL %s(%s)", name, strings.Join(marks, ", ")), args...)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	for {
		cols, err := rows.Columns()
		if err != nil {
			return classify(err)
		}
		set := &ResultSet{Columns: cols}
		if set.Rows, herr = this.scanAll(rows, cols); herr != nil {
			return herr
		}
		if len(cols) > 0 {
			this.stored = append(this.stored, set)
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return classify(err)
	}
	return nil
}

// StoredResults 最近一次CallProc产生的结果集
func (this *Cursor) StoredResults() []*ResultSet {
	return this.stored
}

func (this *Cursor) Close() {
	this.discard()
	this.closed = true
}

func (this *Cursor) Closed() bool {
	return this.closed
}

// discard 关闭未读完的结果集
func (this *Cursor) discard() {
	if this.rows != nil {
		_ = this.rows.Close()
		this.rows = nil
	}
}

func (this *Cursor) reset() {
	this.columns = nil
	this.buffer = nil
	this.hasResult = false
	this.pos = 0
	this.rowCount = -1
	this.lastRowID = 0
	this.stored = nil
}

func (this *Cursor) scanAll(rows *sql.Rows, cols []string) ([]htypes.Any, *herrors.Error) {
	var res []htypes.Any
	for rows.Next() {
		row, err := scanRow(rows, cols, this.dictionary)
		if err != nil {
			return nil, classify(err)
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return res, nil
}

// checkWarnings raise_on_warnings开启时，将语句产生的告警作为DataError返回
func (this *Cursor) checkWarnings(tx *sql.Tx) *herrors.Error {
	if !this.raiseOnWarnings {
		return nil
	}

	rows, err := tx.QueryContext(this.conn.Context(), "SHOW WARNINGS")
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return classify(err)
	}

	var warnings []string
	for rows.Next() {
		row, err := scanRow(rows, cols, false)
		if err != nil {
			return classify(err)
		}
		var parts []string
		for _, v := range row.([]htypes.Any) {
			parts = append(parts, fmt.Sprint(v))
		}
		warnings = append(warnings, strings.Join(parts, " "))
	}
	if err := rows.Err(); err != nil {
		return classify(err)
	}

	if len(warnings) > 0 {
		return herrors.ErrDBData.New("%s", strings.Join(warnings, "; ")).D(strWarningRaised)
	}
	return nil
}

func scanRow(rows *sql.Rows, cols []string, dictionary bool) (htypes.Any, error) {
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	for i, v := range values {
		if bs, ok := v.([]byte); ok {
			values[i] = string(bs)
		}
	}

	if dictionary {
		m := make(htypes.Map, len(cols))
		for i, c := range cols {
			m[c] = values[i]
		}
		return m, nil
	}

	res := make([]htypes.Any, len(values))
	for i, v := range values {
		res[i] = v
	}
	return res, nil
}

func returnsRows(query string) bool {
	q := skipComments(query)
	end := strings.IndexAny(q, " \t\r\n(;")
	if end >= 0 {
		q = q[:end]
	}
	return rowStatements[strings.ToUpper(q)]
}

// skipComments 跳过语句开头的空白、括号与注释
func skipComments(query string) string {
	q := query
	for {
		q = strings.TrimLeft(q, " \t\r\n(")
		switch {
		case strings.HasPrefix(q, "/*"):
			end := strings.Index(q[2:], "*/")
			if end < 0 {
				return ""
			}
			q = q[end+4:]
		case strings.HasPrefix(q, "#"), isDashComment(q):
			end := strings.IndexByte(q, '\n')
			if end < 0 {
				return ""
			}
			q = q[end+1:]
		default:
			return q
		}
	}
}

// isDashComment "--"后须跟空白才是注释
func isDashComment(q string) bool {
	return len(q) > 2 && strings.HasPrefix(q, "--") && strings.ContainsRune(" \t\r\n", rune(q[2]))
}
