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

type fakeRow map[string]interface{}

func (r fakeRow) Get(name string) (interface{}, bool) {
	v, ok := r[name]
	return v, ok
}

type fakeIter struct {
	rows []fakeRow
	pos  int
}

func (it *fakeIter) Next() (Row, bool) {
	if it.pos >= len(it.rows) {
		return nil, false
	}
	row := it.rows[it.pos]
	it.pos++
	return row, true
}

type fakeTable struct {
	columns []string
	rows    []fakeRow
}

func (t *fakeTable) Columns() []string { return t.columns }

func (t *fakeTable) Rows() (RowIter, error) {
	return &fakeIter{rows: t.rows}, nil
}

type fakeCell struct {
	values []interface{}
	size   int
}

func (c fakeCell) Values() []interface{} { return c.values }
func (c fakeCell) Size() int             { return c.size }

func cell(values ...interface{}) fakeCell {
	return fakeCell{values: values, size: len(values)}
}

func freedCell(values ...interface{}) fakeCell {
	return fakeCell{values: values, size: 0}
}

type fakePage struct {
	cells []Cell
}

func (p *fakePage) Cells() []Cell { return p.cells }

func page(cells ...Cell) *fakePage { return &fakePage{cells: cells} }

type fakeFrame struct {
	number int
	page   Page
	err    error
}

func (f fakeFrame) PageNumber() int { return f.number }

func (f fakeFrame) Page() (Page, error) { return f.page, f.err }

type fakeCheckpoint struct {
	index  int
	frames []Frame
}

func (c fakeCheckpoint) Index() int      { return c.index }
func (c fakeCheckpoint) Frames() []Frame { return c.frames }

type fakeWAL struct {
	checkpoints []Checkpoint
	err         error
}

func (w *fakeWAL) Checkpoints() ([]Checkpoint, error) { return w.checkpoints, w.err }

type fakeDB struct {
	tables map[string]*fakeTable
	pages  map[int]Page
}

func (db *fakeDB) Table(name string) (Table, error) {
	if table, ok := db.tables[name]; ok {
		return table, nil
	}
	return nil, errors.Wrap(ErrNoTable, name)
}

func (db *fakeDB) Page(number int) (Page, bool) {
	page, ok := db.pages[number]
	return page, ok
}

func (db *fakeDB) Close() error { return nil }

type fakeResolver map[string]*User

func (r fakeResolver) Find(sid string) (*User, bool) {
	user, ok := r[sid]
	return user, ok
}

// propertyDB builds a fake database with the standard metadata and
// property store tables.
func propertyDB(metadata []fakeRow, properties []fakeRow) *fakeDB {
	return &fakeDB{
		tables: map[string]*fakeTable{
			MetadataTable: {
				columns: []string{"Id", "UniqueKey"},
				rows:    metadata,
			},
			PropertyStoreTable: {
				columns: []string{"WorkId", "ColumnId", "Value"},
				rows:    properties,
			},
		},
		pages: map[int]Page{},
	}
}
