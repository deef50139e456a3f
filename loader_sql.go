package stencil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
)

var _ Loader = SQLLoader{}

// SQLLoader reads templates from a database table with one row per
// template, keyed by the resolved template path.
//
// The table and column names are interpolated into the query as-is and must
// come from trusted configuration.
type SQLLoader struct {
	DB *sql.DB

	// Table defaults to "templates".
	Table string

	// PathColumn defaults to "path".
	PathColumn string

	// SourceColumn defaults to "source".
	SourceColumn string
}

func (l SQLLoader) query() string {
	table, pathCol, sourceCol := l.Table, l.PathColumn, l.SourceColumn
	if table == "" {
		table = "templates"
	}
	if pathCol == "" {
		pathCol = "path"
	}
	if sourceCol == "" {
		sourceCol = "source"
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", sourceCol, table, pathCol) // #nosec G201
}

// Load returns the source stored for name. A missing row is reported as an
// error matching fs.ErrNotExist.
func (l SQLLoader) Load(ctx context.Context, name string) (string, error) {
	var source string
	err := l.DB.QueryRowContext(ctx, l.query(), name).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &fs.PathError{Op: "select", Path: name, Err: fs.ErrNotExist}
	}
	if err != nil {
		return "", fmt.Errorf("error querying template %q: %w", name, err)
	}
	return source, nil
}
