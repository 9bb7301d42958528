package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
)

// fakeState хранит выполненные запросы и заранее заданные ответы одного теста.
type fakeState struct {
	mu         sync.Mutex
	execs      []string
	execArgs   [][]driver.NamedValue
	queries    []string
	onExec     func(query string, args []driver.NamedValue) (driver.Result, error)
	onQuery    func(query string, args []driver.NamedValue) (driver.Rows, error)
	committed  bool
	rolledBack bool
}

var (
	fakeMu     sync.Mutex
	fakeStates = map[string]*fakeState{}
	fakeSeq    int
)

type fakeDriver struct{}

type fakeConn struct{ st *fakeState }

type fakeTx struct{ st *fakeState }

type fakeResult struct{ affected int64 }

type fakeRows struct {
	columns []string
	data    [][]driver.Value
	idx     int
}

func init() { sql.Register("storageFake", fakeDriver{}) }

// openFake регистрирует состояние под уникальным DSN и открывает по нему БД.
func openFake(t *testing.T, st *fakeState) *DB {
	t.Helper()
	fakeMu.Lock()
	fakeSeq++
	dsn := fmt.Sprintf("fake-%d", fakeSeq)
	fakeStates[dsn] = st
	fakeMu.Unlock()

	conn, err := sql.Open("storageFake", dsn)
	if err != nil {
		t.Fatalf("не удалось открыть фейковую БД: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &DB{Conn: conn}
}

func (fakeDriver) Open(name string) (driver.Conn, error) {
	fakeMu.Lock()
	defer fakeMu.Unlock()
	st, ok := fakeStates[name]
	if !ok {
		return nil, errors.New("неизвестный DSN")
	}
	return &fakeConn{st: st}, nil
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return &fakeTx{st: c.st}, nil }

func (c *fakeConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.st.mu.Lock()
	c.st.execs = append(c.st.execs, query)
	c.st.execArgs = append(c.st.execArgs, args)
	c.st.mu.Unlock()
	if c.st.onExec != nil {
		return c.st.onExec(query, args)
	}
	return fakeResult{affected: 1}, nil
}

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.st.mu.Lock()
	c.st.queries = append(c.st.queries, query)
	c.st.mu.Unlock()
	if c.st.onQuery != nil {
		return c.st.onQuery(query, args)
	}
	return nil, errors.New("unexpected query")
}

func (tx *fakeTx) Commit() error {
	tx.st.mu.Lock()
	tx.st.committed = true
	tx.st.mu.Unlock()
	return nil
}

func (tx *fakeTx) Rollback() error {
	tx.st.mu.Lock()
	tx.st.rolledBack = true
	tx.st.mu.Unlock()
	return nil
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

func (r *fakeRows) Columns() []string { return r.columns }
func (r *fakeRows) Close() error      { return nil }
func (r *fakeRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.idx])
	r.idx++
	return nil
}
