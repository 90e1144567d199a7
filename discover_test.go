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
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fsys afero.Fs, name, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	require.NoError(t, fsys.Chtimes(name, mtime, mtime))
}

func TestDiscoverSystemDatabase(t *testing.T) {
	fsys := afero.NewMemMapFs()
	mtime := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	writeFile(t, fsys, "ProgramData/Microsoft/Search/Data/Applications/Windows/Windows.db", "sqlite", mtime)

	artifacts := Discover(fsys, nil, nil, zerolog.Nop())
	require.Len(t, artifacts, 1)
	assert.Equal(t, "ProgramData/Microsoft/Search/Data/Applications/Windows/Windows.db", artifacts[0].Path)
	assert.Nil(t, artifacts[0].User)
}

func TestDiscoverDataDirs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	mtime := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	writeFile(t, fsys, "Custom/Search/Applications/Windows/Windows.edb", "ese", mtime)

	artifacts := Discover(fsys, []string{"Custom/Search"}, nil, zerolog.Nop())
	require.Len(t, artifacts, 1)
	assert.Equal(t, "Custom/Search/Applications/Windows/Windows.edb", artifacts[0].Path)
}

func TestDiscoverDeduplicates(t *testing.T) {
	fsys := afero.NewMemMapFs()
	mtime := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)

	// The same database reachable through the well known path and through a
	// data directory pointing at it.
	writeFile(t, fsys, "ProgramData/Microsoft/Search/Data/Applications/Windows/Windows.db", "sqlite", mtime)
	writeFile(t, fsys, "Mirror/Applications/Windows/Windows.db", "sqlite", mtime)

	artifacts := Discover(fsys, []string{"Mirror"}, nil, zerolog.Nop())
	assert.Len(t, artifacts, 1)
}

func TestDiscoverDistinctFilesKept(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "ProgramData/Microsoft/Search/Data/Applications/Windows/Windows.db", "sqlite",
		time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC))
	writeFile(t, fsys, "Mirror/Applications/Windows/Windows.db", "sqlite older",
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))

	artifacts := Discover(fsys, []string{"Mirror"}, nil, zerolog.Nop())
	assert.Len(t, artifacts, 2)
}

func TestDiscoverUserProfiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	mtime := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	writeFile(t, fsys,
		"Users/alice/AppData/Roaming/Microsoft/Search/Data/Applications/S-1-5-21-1-2-3-1001/S-1-5-21-1-2-3-1001.db",
		"user index", mtime)

	users := []User{{Name: "alice", SID: "S-1-5-21-1-2-3-1001", Home: "Users/alice"}}
	artifacts := Discover(fsys, nil, users, zerolog.Nop())
	require.Len(t, artifacts, 1)
	require.NotNil(t, artifacts[0].User)
	assert.Equal(t, "alice", artifacts[0].User.Name)
}

func TestDiscoverEmpty(t *testing.T) {
	artifacts := Discover(afero.NewMemMapFs(), nil, []User{{Name: "nohome"}}, zerolog.Nop())
	assert.Empty(t, artifacts)
}
