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

package searchindex

import "github.com/pkg/errors"

// ErrUnsupported is returned when a database file does not contain the
// required tables. It signals a skip to the caller, not a parse failure.
var ErrUnsupported = errors.New("unsupported database file")

// ErrNoTable is returned by Database.Table for missing tables.
var ErrNoTable = errors.New("table does not exist")

// Row is one table row. Get returns the decoded value of a named field and
// whether the field is present. Both the ESE and the SQLite adapter satisfy
// this interface, the pipeline never sees format specific row types.
type Row interface {
	Get(name string) (interface{}, bool)
}

// RowIter is a forward-only iterator over table rows. Iteration is lazy,
// reopening the table reproduces the same sequence.
type RowIter interface {
	Next() (Row, bool)
}

// Table is a lazy view on one database table.
type Table interface {
	// Columns returns the declared column names in table order.
	Columns() []string
	// Rows starts a new scan over the table.
	Rows() (RowIter, error)
}

// Cell is one logical row inside a page, decoded into an ordered value
// tuple. Freed or truncated cells report a size of zero or less.
type Cell interface {
	Values() []interface{}
	Size() int
}

// Page is a single database page.
type Page interface {
	Cells() []Cell
}

// Database is a read-only view of one property store database file.
type Database interface {
	// Table returns the named table or ErrNoTable.
	Table(name string) (Table, error)
	// Page returns the current base page with the given number. The second
	// return value is false if the page does not exist or has the wrong
	// structural type.
	Page(number int) (Page, bool)
	Close() error
}

// Frame is a page image captured inside a WAL checkpoint.
type Frame interface {
	PageNumber() int
	// Page decodes the checkpoint-time page image. An error means the frame
	// is unreadable and contributes no changes.
	Page() (Page, error)
}

// Checkpoint is a captured WAL state. Indices are strictly increasing
// within one WAL.
type Checkpoint interface {
	Index() int
	Frames() []Frame
}

// WAL provides ordered access to the checkpoints of a write-ahead log.
type WAL interface {
	Checkpoints() ([]Checkpoint, error)
}

// User is a resolved user context, usually derived from a profile path or
// a security identifier.
type User struct {
	Name string `json:"name,omitempty" structs:"name,omitempty"`
	SID  string `json:"sid,omitempty" structs:"sid,omitempty"`
	Home string `json:"home,omitempty" structs:"home,omitempty"`
}

// UserResolver resolves security identifiers to users.
type UserResolver interface {
	Find(sid string) (*User, bool)
}
