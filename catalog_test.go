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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalog(t *testing.T) {
	metadata := &fakeTable{
		columns: []string{"Id", "UniqueKey"},
		rows: []fakeRow{
			{"Id": int64(3), "UniqueKey": "15F-System.DateModified"},
			{"Id": int64(4), "UniqueKey": "566-System.Activity.AppDisplayName"},
			{"Id": int64(5), "UniqueKey": "System.Size"},
			{"Id": int64(6), "PropertyId": "System.ItemType"},
			{"Id": "broken"},
		},
	}

	catalog, err := BuildCatalog(metadata)
	require.NoError(t, err)

	assert.False(t, catalog.Passthrough())
	assert.Equal(t, "System_DateModified", catalog.Name(3))
	assert.Equal(t, "System_Activity_AppDisplayName", catalog.Name(4))
	assert.Equal(t, "System_Size", catalog.Name(5))
	assert.Equal(t, "System_ItemType", catalog.Name(6))
	// Unknown ids resolve to their numeric form, they are never dropped.
	assert.Equal(t, "4711", catalog.Name(4711))
}

func TestPassthroughCatalog(t *testing.T) {
	catalog := PassthroughCatalog()
	assert.True(t, catalog.Passthrough())
	assert.Equal(t, "42", catalog.Name(42))
	assert.Equal(t, [2]string{"WorkId", "ColumnId"}, catalog.LeadingColumns())
}
