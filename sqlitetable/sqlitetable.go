// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

// Package sqlitetable adapts a live SQLite database file to the table
// reading capability of the searchindex package. It reads through the
// SQLite library, so it sees the committed database state only. Raw page
// and WAL checkpoint access needs a byte level parser and is not provided
// here; databases opened through this package are processed without WAL
// replay.
package sqlitetable

import (
	"fmt"

	"crawshaw.io/sqlite"
	"github.com/pkg/errors"

	"github.com/forensicanalysis/searchindex"
)

// Database is a read-only SQLite backed searchindex.Database.
type Database struct {
	conn *sqlite.Conn
}

// Open opens a SQLite database file read-only.
func Open(path string) (*Database, error) {
	conn, err := sqlite.OpenConn(path, sqlite.SQLITE_OPEN_READONLY)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}
	return &Database{conn: conn}, nil
}

// Table returns a lazy view on the named table or searchindex.ErrNoTable.
func (db *Database) Table(name string) (searchindex.Table, error) {
	stmt, err := db.conn.Prepare("SELECT name FROM sqlite_master WHERE type='table' AND name=?")
	if err != nil {
		return nil, err
	}
	stmt.BindText(1, name)
	hasRow, err := stmt.Step()
	if ferr := stmt.Finalize(); err == nil {
		err = ferr
	}
	if err != nil {
		return nil, err
	}
	if !hasRow {
		return nil, errors.Wrap(searchindex.ErrNoTable, name)
	}

	columns, err := db.tableColumns(name)
	if err != nil {
		return nil, err
	}
	return &table{conn: db.conn, name: name, columns: columns}, nil
}

// Page always reports a missing page, base pages are not reachable through
// the SQLite library.
func (db *Database) Page(int) (searchindex.Page, bool) {
	return nil, false
}

// Close closes the database connection.
func (db *Database) Close() error {
	return db.conn.Close()
}

func (db *Database) tableColumns(name string) ([]string, error) {
	stmt, err := db.conn.Prepare(fmt.Sprintf("PRAGMA table_info (\"%s\")", name))
	if err != nil {
		return nil, err
	}

	var columns []string
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}
		columns = append(columns, stmt.GetText("name"))
	}
	return columns, stmt.Finalize()
}

type table struct {
	conn    *sqlite.Conn
	name    string
	columns []string
}

func (t *table) Columns() []string {
	return t.columns
}

// Rows starts a new table scan. The returned iterator is forward-only and
// restartable by calling Rows again.
func (t *table) Rows() (searchindex.RowIter, error) {
	stmt, err := t.conn.Prepare(fmt.Sprintf("SELECT * FROM \"%s\"", t.name)) // #nosec
	if err != nil {
		return nil, err
	}
	return &rowIter{stmt: stmt, columns: t.columns}, nil
}

type rowIter struct {
	stmt    *sqlite.Stmt
	columns []string
	done    bool
}

func (it *rowIter) Next() (searchindex.Row, bool) {
	if it.done {
		return nil, false
	}
	hasRow, err := it.stmt.Step()
	if err != nil || !hasRow {
		it.done = true
		_ = it.stmt.Finalize()
		return nil, false
	}

	values := make(map[string]interface{}, len(it.columns))
	for i, column := range it.columns {
		values[column] = columnValue(it.stmt, i)
	}
	return row(values), true
}

func columnValue(stmt *sqlite.Stmt, i int) interface{} {
	switch stmt.ColumnType(i) {
	case sqlite.SQLITE_INTEGER:
		return stmt.ColumnInt64(i)
	case sqlite.SQLITE_FLOAT:
		return stmt.ColumnFloat(i)
	case sqlite.SQLITE_TEXT:
		return stmt.ColumnText(i)
	case sqlite.SQLITE_BLOB:
		b := make([]byte, stmt.ColumnLen(i))
		stmt.ColumnBytes(i, b)
		return b
	}
	return nil
}

type row map[string]interface{}

func (r row) Get(name string) (interface{}, bool) {
	v, ok := r[name]
	return v, ok
}
