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

package evidencestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/forensicanalysis/searchindex"
)

func memStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewAndOpen(t *testing.T) {
	dir := t.TempDir()
	url := filepath.Join(dir, "search.db")

	store, err := New(url)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = New(url)
	assert.ErrorIs(t, err, ErrStoreExists)

	store, err = Open(url)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(filepath.Join(dir, "missing.db"))
	assert.ErrorIs(t, err, ErrStoreNotExists)
}

func TestOpenRejectsForeignFile(t *testing.T) {
	url := filepath.Join(t.TempDir(), "foreign.db")
	require.NoError(t, os.WriteFile(url, []byte("not a store"), 0o600))

	_, err := Open(url)
	assert.Error(t, err)
}

func TestInsertStruct(t *testing.T) {
	store := memStore(t)

	modified := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	size := int64(1024)
	id, err := store.InsertStruct(&searchindex.FileIndexRecord{
		Type:         searchindex.TypeFileIndex,
		WorkID:       42,
		Filename:     "C:/Users/alice/notes.txt",
		Size:         &size,
		DateModified: &modified,
		Source:       "Windows.db",
		Latest:       true,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, searchindex.TypeFileIndex+"--"))

	element, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), gjson.GetBytes(element, "workid").Int())
	assert.Equal(t, "C:/Users/alice/notes.txt", gjson.GetBytes(element, "filename").String())
	assert.Equal(t, int64(1024), gjson.GetBytes(element, "size").Int())
	assert.True(t, gjson.GetBytes(element, "latest").Bool())
	assert.Contains(t, gjson.GetBytes(element, "date_modified").String(), "2023-04-01")
}

func TestInsertStructBrowserHistory(t *testing.T) {
	store := memStore(t)

	id, err := store.InsertStruct(&searchindex.BrowserHistoryRecord{
		Type:    searchindex.TypeBrowserHistory,
		Browser: "edge",
		URL:     "https://example.com/page",
		Host:    "example.com",
		Source:  "Windows.db",
		User:    &searchindex.User{Name: "alice", SID: "S-1-5-21-1-2-3-1001"},
	})
	require.NoError(t, err)

	element, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "edge", gjson.GetBytes(element, "browser").String())
	assert.Equal(t, "alice", gjson.GetBytes(element, "user.name").String())
}

func TestInsertValidation(t *testing.T) {
	store := memStore(t)

	_, err := store.Insert([]byte(`{"workid": 1}`))
	assert.Error(t, err, "missing type discriminator")

	_, err = store.Insert([]byte(`{"type": "windows-search-file", "workid": 1}`))
	assert.Error(t, err, "missing required source")

	_, err = store.Insert([]byte(`{"type": "windows-search-file", "workid": "one", "source": "Windows.db"}`))
	assert.Error(t, err, "workid must be an integer")

	id, err := store.Insert([]byte(`{"type": "windows-search-file", "workid": 1, "source": "Windows.db"}`))
	assert.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestSelect(t *testing.T) {
	store := memStore(t)

	_, err := store.InsertStruct(&searchindex.FileIndexRecord{
		Type: searchindex.TypeFileIndex, WorkID: 1, Source: "Windows.db",
	})
	require.NoError(t, err)
	_, err = store.InsertStruct(&searchindex.BrowserHistoryRecord{
		Type: searchindex.TypeBrowserHistory, Browser: "edge",
		URL: "https://example.com", Source: "Windows.db",
	})
	require.NoError(t, err)

	files, err := store.Select([]map[string]string{{"type": searchindex.TypeFileIndex}})
	require.NoError(t, err)
	assert.Len(t, files, 1)

	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := store.Select([]map[string]string{{"type": "unknown"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch(t *testing.T) {
	store := memStore(t)

	_, err := store.InsertStruct(&searchindex.FileIndexRecord{
		Type: searchindex.TypeFileIndex, WorkID: 1,
		Filename: "C:/Users/alice/notes.txt", Source: "Windows.db",
	})
	require.NoError(t, err)

	hits, err := store.Search(`"Windows.db"`)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestInsertStructBatch(t *testing.T) {
	store := memStore(t)

	ids, err := store.InsertStructBatch([]interface{}{
		&searchindex.FileIndexRecord{Type: searchindex.TypeFileIndex, WorkID: 1, Source: "a.db"},
		&searchindex.FileIndexRecord{Type: searchindex.TypeFileIndex, WorkID: 2, Source: "a.db"},
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
