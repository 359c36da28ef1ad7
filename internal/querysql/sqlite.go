package querysql

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDriver is the database/sql driver name under which OpenSQLite
// registers go-sqlite3 with the regexp function installed.
const SQLiteDriver = "sqlite3_typica"

var registerOnce sync.Once

// OpenSQLite opens a SQLite database whose connections understand the
// REGEXP operator the SQLite flavor emits. An in-memory dsn is limited to
// one connection, since each :memory: connection is a separate database.
func OpenSQLite(dsn string) (*sql.DB, error) {
	registerOnce.Do(func() {
		sql.Register(SQLiteDriver, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("regexp", RegexpFunc, true)
			},
		})
	})

	db, err := sql.Open(SQLiteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
