// Package database backs the 데이터베이스_연결/질의 built-ins: database/sql
// over four blank-imported drivers, dialed lazily on first connect.
// Grounded on the teacher's internal/database/database.go (same sql.Open
// call, same rows.Columns/rows.Scan row-to-map loop in its ExecuteQuery)
// but trimmed to a plain connect-and-query client — the teacher's
// credential-scanning, SQL-injection-testing, and vulnerability-check
// machinery has no SPEC_FULL.md component to serve (this is a scripting
// language's database access built-in, not a security scanner) and is not
// carried over.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Conn is an open database handle, named by driver the way 데이터베이스_연결
// receives it ("mysql", "postgres", "sqlite3", "mssql").
type Conn struct {
	driver string
	db     *sql.DB
}

// Connect opens a connection using driver and dsn, verifying it with a
// Ping so connection errors surface at 데이터베이스_연결 rather than on the
// first 질의.
func Connect(driver, dsn string) (*Conn, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &Conn{driver: driver, db: db}, nil
}

// Row is one result row, column name to stringified value — matching how
// Value has no room for arbitrary interface{} scan results, every column
// is rendered to a string (or left empty for NULL) before crossing into
// the language's Dictionary representation.
type Row map[string]string

// Query runs a read/write statement and, for SELECT-shaped statements,
// returns every row as a string-keyed map.
func (c *Conn) Query(query string, args ...interface{}) ([]Row, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = stringifyColumn(values[i])
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func stringifyColumn(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Close releases the underlying connection pool.
func (c *Conn) Close() error {
	return c.db.Close()
}
