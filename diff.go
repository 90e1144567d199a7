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

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Change is one (WorkID, ColumnID, Value) triple recovered from a WAL
// checkpoint that differs from the current base database state.
type Change struct {
	WorkID   int64
	ColumnID int64
	Value    interface{}
}

// PageSource provides access to the current base pages of a database.
type PageSource interface {
	Page(number int) (Page, bool)
}

// CheckpointChanges computes the cell tuples present in a checkpoint's page
// images but absent from the current base pages at the same page numbers.
// The comparison is a set difference over decoded value tuples: cell
// positions within a page are irrelevant and tuples present on both sides
// are excluded regardless of position. A missing or structurally invalid
// base page contributes an empty cell set, so every checkpoint cell on that
// page counts as changed. An unreadable checkpoint page contributes no
// changes. Freed and zero-size cells are excluded on both sides.
func CheckpointChanges(db PageSource, checkpoint Checkpoint, log zerolog.Logger) []Change {
	var changes []Change
	emitted := map[string]bool{}

	for _, frame := range checkpoint.Frames() {
		base := map[string]bool{}
		if page, ok := db.Page(frame.PageNumber()); ok && page != nil {
			for _, cell := range page.Cells() {
				if cell.Size() <= 0 {
					continue
				}
				base[tupleKey(cell.Values())] = true
			}
		}

		page, err := frame.Page()
		if err != nil || page == nil {
			log.Debug().
				Int("page", frame.PageNumber()).
				Int("checkpoint", checkpoint.Index()).
				Msg("unreadable checkpoint page")
			continue
		}

		for _, cell := range page.Cells() {
			if cell.Size() <= 0 {
				continue
			}
			values := cell.Values()
			key := tupleKey(values)
			if base[key] || emitted[key] {
				continue
			}
			emitted[key] = true

			change, ok := decodeChange(values)
			if !ok {
				continue
			}
			changes = append(changes, change)
		}
	}

	return changes
}

// ValidateLeadingColumns checks once per file that the property store table
// starts with the key columns the differencer assumes for decoded cells.
func ValidateLeadingColumns(table Table, catalog *Catalog) error {
	lead := catalog.LeadingColumns()
	columns := table.Columns()
	if len(columns) < 2 || columns[0] != lead[0] || columns[1] != lead[1] {
		return errors.Errorf("property store columns %v do not start with %v", columns, lead)
	}
	return nil
}

// decodeChange interprets a cell tuple as (WorkID, ColumnID, Value) per the
// property store format contract.
func decodeChange(values []interface{}) (Change, bool) {
	if len(values) < 2 {
		return Change{}, false
	}
	workID, ok := asInt(values[0])
	if !ok {
		return Change{}, false
	}
	columnID, ok := asInt(values[1])
	if !ok {
		return Change{}, false
	}
	change := Change{WorkID: workID, ColumnID: columnID}
	if len(values) > 2 {
		change.Value = values[2]
	}
	return change, true
}

// tupleKey builds a stable fingerprint of a decoded cell tuple. Values of
// different types never collide because of the type prefix.
func tupleKey(values []interface{}) string {
	var b strings.Builder
	for _, v := range values {
		switch v := v.(type) {
		case nil:
			b.WriteString("n;")
		case []byte:
			fmt.Fprintf(&b, "b%x;", v)
		case string:
			fmt.Fprintf(&b, "s%q;", v)
		default:
			fmt.Fprintf(&b, "%T%v;", v, v)
		}
	}
	return b.String()
}
