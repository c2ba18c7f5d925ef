// Package sqlite provides the SQLite dialect of the bitstream resolver, the store that
// binds lookups to a connection or transaction, and DDL generation for the content tables.
package sqlite

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by this package. It is the stock
// go-sqlite3 driver with the lob_compare function installed on every connection.
const DriverName = "sqlite3_lob"

// lobCompareFunc is the SQL name of lobCompare.
const lobCompareFunc = "lob_compare"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(lobCompareFunc, lobCompare, true)
		},
	})
}

// Open opens a database with the lob_compare enabled driver.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open(DriverName, dsn)
}

// lobCompare mirrors a large-object compare: 0 when both operands hold exactly the same
// bytes, negative or positive otherwise. A NULL operand never compares equal.
func lobCompare(a, b any) int64 {
	left, lok := lobBytes(a)
	right, rok := lobBytes(b)
	if !lok || !rok {
		return -1
	}
	return int64(bytes.Compare(left, right))
}

// lobBytes converts a function argument to bytes. go-sqlite3 hands NULL over as a nil
// byte slice.
func lobBytes(v any) ([]byte, bool) {
	switch val := v.(type) {
	case string:
		return []byte(val), true
	case []byte:
		if val == nil {
			return nil, false
		}
		return val, true
	case nil:
		return nil, false
	default:
		return []byte(fmt.Sprint(val)), true
	}
}
