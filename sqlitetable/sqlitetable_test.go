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

package sqlitetable

import (
	"path/filepath"
	"testing"

	"crawshaw.io/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicanalysis/searchindex"
)

func createTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Windows.db")

	conn, err := sqlite.OpenConn(path, 0)
	require.NoError(t, err)
	defer conn.Close()

	statements := []string{
		"CREATE TABLE SystemIndex_1_PropertyStore (WorkId INTEGER, ColumnId INTEGER, Value)",
		"INSERT INTO SystemIndex_1_PropertyStore VALUES (1, 3, 'C:\\Users\\alice\\notes.txt')",
		"INSERT INTO SystemIndex_1_PropertyStore VALUES (1, 8, 1024)",
		"INSERT INTO SystemIndex_1_PropertyStore VALUES (2, 3, x'deadbeef')",
	}
	for _, statement := range statements {
		stmt, err := conn.Prepare(statement)
		require.NoError(t, err)
		_, err = stmt.Step()
		require.NoError(t, err)
		require.NoError(t, stmt.Finalize())
	}
	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	db, err := Open(createTestDB(t))
	require.NoError(t, err)
	defer db.Close()

	table, err := db.Table("SystemIndex_1_PropertyStore")
	require.NoError(t, err)
	assert.Equal(t, []string{"WorkId", "ColumnId", "Value"}, table.Columns())

	_, err = db.Table("SystemIndex_1_PropertyStore_Metadata")
	assert.ErrorIs(t, err, searchindex.ErrNoTable)
}

func TestRows(t *testing.T) {
	db, err := Open(createTestDB(t))
	require.NoError(t, err)
	defer db.Close()

	table, err := db.Table("SystemIndex_1_PropertyStore")
	require.NoError(t, err)

	it, err := table.Rows()
	require.NoError(t, err)

	var rows []searchindex.Row
	for {
		row, ok := it.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	require.Len(t, rows, 3)

	workID, ok := rows[0].Get("WorkId")
	require.True(t, ok)
	assert.Equal(t, int64(1), workID)

	value, _ := rows[0].Get("Value")
	assert.Equal(t, `C:\Users\alice\notes.txt`, value)

	size, _ := rows[1].Get("Value")
	assert.Equal(t, int64(1024), size)

	blob, _ := rows[2].Get("Value")
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, blob)

	// The iterator is exhausted, a fresh scan starts over.
	_, ok = it.Next()
	assert.False(t, ok)

	it, err = table.Rows()
	require.NoError(t, err)
	_, ok = it.Next()
	assert.True(t, ok)
}

func TestPageUnavailable(t *testing.T) {
	db, err := Open(createTestDB(t))
	require.NoError(t, err)
	defer db.Close()

	_, ok := db.Page(1)
	assert.False(t, ok)
}
