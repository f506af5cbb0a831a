package booking

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
)

// recordedCall один запрос, дошедший до драйвера
type recordedCall struct {
	query string
	args  []interface{}
}

// fakeConn драйвер database/sql, который записывает SQL и отвечает заданными результатами.
// Аргументы передаются без конвертации, чтобы тесты видели исходные значения.
type fakeConn struct {
	execs   []recordedCall
	queries []recordedCall

	execResult func(query string) (driver.Result, error)
	queryRows  func(query string) ([][]driver.Value, error)
}

func newFakeDB(t *testing.T, conn *fakeConn) *sql.DB {
	t.Helper()
	db := sql.OpenDB(fakeConnector{conn: conn})
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeConnector struct {
	conn *fakeConn
}

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c fakeConnector) Driver() driver.Driver                        { return c }
func (c fakeConnector) Open(string) (driver.Conn, error)             { return c.conn, nil }

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("fakeConn: prepared statements are not supported")
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakeConn: transactions are not supported")
}

func (c *fakeConn) CheckNamedValue(*driver.NamedValue) error { return nil }

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, recordedCall{query: query, args: plainArgs(args)})
	if c.execResult == nil {
		return driver.RowsAffected(1), nil
	}
	return c.execResult(query)
}

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.queries = append(c.queries, recordedCall{query: query, args: plainArgs(args)})
	var values [][]driver.Value
	if c.queryRows != nil {
		var err error
		if values, err = c.queryRows(query); err != nil {
			return nil, err
		}
	}
	return &fakeRows{values: values}, nil
}

func plainArgs(args []driver.NamedValue) []interface{} {
	res := make([]interface{}, len(args))
	for i, a := range args {
		res[i] = a.Value
	}
	return res
}

type fakeRows struct {
	values [][]driver.Value
	pos    int
}

func (r *fakeRows) Columns() []string {
	if len(r.values) == 0 {
		return []string{"?column?"}
	}
	cols := make([]string, len(r.values[0]))
	for i := range cols {
		cols[i] = "?column?"
	}
	return cols
}

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}

// fakeTx кладёт соединение в контекст как пишущую транзакцию
type fakeTx struct {
	*sql.DB
}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }
