//go:build !cgo_sqlite

package stencil_test

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

func openSQLite(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite", dataSource)
}
