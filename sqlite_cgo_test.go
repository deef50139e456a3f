//go:build cgo_sqlite

package stencil_test

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func openSQLite(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite3", dataSource)
}
