package sending

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"testing"

	"tg_sender/pkg/storage"
)

// tableRows — ответ фейковой БД на один запрос.
type tableRows struct {
	columns []string
	data    [][]driver.Value
}

// fakeDB отвечает на запросы функцией respond.
type fakeDB struct {
	respond func(query string, args []driver.NamedValue) tableRows
}

type fakeConn struct{ db *fakeDB }

type fakeRows struct {
	tableRows
	idx int
}

var fakeSeq int

func openFakeDB(t *testing.T, respond func(query string, args []driver.NamedValue) tableRows) *storage.DB {
	t.Helper()
	fakeSeq++
	name := fmt.Sprintf("sendingFake%d", fakeSeq)
	sql.Register(name, &fakeDB{respond: respond})
	conn, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("не удалось открыть фейковую БД: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return storage.NewDB(conn)
}

func (d *fakeDB) Open(string) (driver.Conn, error) { return fakeConn{d}, nil }

func (c fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (c fakeConn) Close() error                        { return nil }
func (c fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not implemented") }

func (c fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return &fakeRows{tableRows: c.db.respond(query, args)}, nil
}

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

var (
	groupCols    = []string{"id", "kind", "access_hash", "name", "username", "client_number", "tags", "custom_templates"}
	topicCols    = []string{"group_id", "topic_id", "access_hash", "name", "client_number", "tags", "custom_templates"}
	templateCols = []string{"name", "text", "params"}
)

func groupRow(id int64, name string) []driver.Value {
	return []driver.Value{id, "chat", int64(0), name, "", "1", []byte("{vip}"), nil}
}

func topicRow(groupID, topicID int64, name string) []driver.Value {
	return []driver.Value{groupID, topicID, int64(9), name, "2", []byte("{vip}"), nil}
}
