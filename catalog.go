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
	"strconv"
	"strings"
)

// leadingColumns is the declared order of the property store key columns.
// Decoded page cells start with these two values by format contract.
var leadingColumns = [2]string{"WorkId", "ColumnId"}

// Catalog resolves numeric column ids of a property store to canonical
// property names.
type Catalog struct {
	names       map[int64]string
	passthrough bool
}

// BuildCatalog reads the property store metadata table. The metadata rows
// carry the numeric id and a versioned property key like
// "15F-System.DateModified"; the canonical name is the part after the final
// separator, with dots normalized to underscores.
func BuildCatalog(table Table) (*Catalog, error) {
	c := &Catalog{names: map[int64]string{}}

	it, err := table.Rows()
	if err != nil {
		return nil, err
	}

	for {
		row, ok := it.Next()
		if !ok {
			break
		}

		id, ok := asInt(value(row, "Id"))
		if !ok {
			continue
		}

		key, ok := asString(value(row, "UniqueKey"))
		if !ok || key == "" {
			key, _ = asString(value(row, "PropertyId"))
		}
		if key == "" {
			continue
		}

		c.names[id] = canonicalName(key)
	}

	return c, nil
}

// PassthroughCatalog is used when the metadata table is absent. All column
// ids resolve to their stringified numeric form.
func PassthroughCatalog() *Catalog {
	return &Catalog{names: map[int64]string{}, passthrough: true}
}

// Name resolves a column id. Unknown ids are retained under their numeric
// form rather than dropped.
func (c *Catalog) Name(columnID int64) string {
	if name, ok := c.names[columnID]; ok {
		return name
	}
	return strconv.FormatInt(columnID, 10)
}

// Passthrough reports whether the catalog was built without metadata.
func (c *Catalog) Passthrough() bool {
	return c.passthrough
}

// LeadingColumns returns the declared property store key columns.
func (c *Catalog) LeadingColumns() [2]string {
	return leadingColumns
}

func canonicalName(key string) string {
	if i := strings.LastIndex(key, "-"); i >= 0 {
		key = key[i+1:]
	}
	return strings.ReplaceAll(key, ".", "_")
}

func value(row Row, name string) interface{} {
	v, _ := row.Get(name)
	return v
}
