package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     any
		expected int64
	}{
		{name: "equal strings", a: "ORIGINAL", b: "ORIGINAL", expected: 0},
		{name: "equal bytes", a: []byte("thesis.pdf"), b: "thesis.pdf", expected: 0},
		{name: "empty strings", a: "", b: "", expected: 0},
		{name: "case differs", a: "original", b: "ORIGINAL", expected: 1},
		{name: "trailing whitespace", a: "ORIGINAL ", b: "ORIGINAL", expected: 1},
		{name: "prefix", a: "ORIG", b: "ORIGINAL", expected: -1},
		{name: "integer operand", a: int64(42), b: "42", expected: 0},
		{name: "null left", a: nil, b: "ORIGINAL", expected: -1},
		{name: "null right", a: "ORIGINAL", b: nil, expected: -1},
		{name: "null bytes", a: []byte(nil), b: []byte(nil), expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lobCompare(tt.a, tt.b))
		})
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDriver_LobCompareFunction(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "CREATE TABLE doc (id INTEGER PRIMARY KEY, body TEXT)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO doc (id, body) VALUES (1, 'ORIGINAL'), (2, 'original'), (3, 'ORIGINAL '), (4, NULL)")
	require.NoError(t, err)

	var id int
	err = db.QueryRowContext(ctx, "SELECT id FROM doc WHERE lob_compare(body, ?) = 0", "ORIGINAL").Scan(&id)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM doc WHERE lob_compare(body, ?) = 0", "ORIGINAL").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM doc WHERE lob_compare(body, NULL) = 0").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count, "NULL never compares equal")
}

func TestDialect(t *testing.T) {
	d := Dialect{}

	assert.Equal(t, "sqlite", d.Name())
	assert.Equal(t, "?", d.Placeholder(1))
	assert.Equal(t, "?", d.Placeholder(3))
	assert.Equal(t, "lob_compare(MD1.text_value, ?) = 0", d.TextEquals("MD1.text_value", "?"))
}
