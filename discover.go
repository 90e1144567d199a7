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
	"path"

	"github.com/forensicanalysis/fsdoublestar"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Artifact is one discovered search index database file.
type Artifact struct {
	Path string
	// User is set for databases found inside a user profile.
	User *User
}

// Well known locations of the system wide search index database, relative
// to the mounted system volume.
var systemPaths = []string{
	// Windows 11 22H2 (SQLite)
	"ProgramData/Microsoft/Search/Data/Applications/Windows/Windows.db",
	// Windows Vista and Windows 10 (ESE)
	"ProgramData/Microsoft/Search/Data/Applications/Windows/Windows.edb",
	// Windows XP (ESE)
	"Documents and Settings/All Users/Application Data/Microsoft/Search/Data/Applications/Windows/Windows.edb",
}

// Windows 10 Server roaming indexes, relative to a user home.
const userGlob = "AppData/Roaming/Microsoft/Search/Data/Applications/S-1-*/*.*db"

// Discover locates search index database files on a mounted system volume.
// dataDirs holds extra data directories, usually the resolved DataDirectory
// registry value of the Windows Search service. users drives the per-user
// roaming database search. Databases are deduplicated by name, size and
// modification time. No candidates is not an error, the caller treats an
// empty result as an unsupported artifact.
func Discover(fsys afero.Fs, dataDirs []string, users []User, log zerolog.Logger) []Artifact {
	var artifacts []Artifact
	seen := map[string]bool{}

	keep := func(p string, user *User) {
		info, err := fsys.Stat(p)
		if err != nil || info.IsDir() {
			return
		}
		digest := fmt.Sprintf("%s|%d|%d", info.Name(), info.Size(), info.ModTime().UnixNano())
		if seen[digest] {
			return
		}
		seen[digest] = true
		artifacts = append(artifacts, Artifact{Path: p, User: user})
	}

	paths := append([]string{}, systemPaths...)
	for _, dataDir := range dataDirs {
		paths = append(paths,
			path.Join(dataDir, "Applications/Windows/Windows.db"),
			path.Join(dataDir, "Applications/Windows/Windows.edb"),
		)
	}
	for _, p := range paths {
		keep(p, nil)
	}

	iofs := afero.NewIOFS(fsys)
	for i := range users {
		user := &users[i]
		if user.Home == "" {
			continue
		}
		matches, err := fsdoublestar.Glob(iofs, path.Join(user.Home, userGlob))
		if err != nil {
			log.Warn().Err(err).Str("user", user.Name).Msg("cannot glob user profile")
			continue
		}
		for _, match := range matches {
			keep(match, user)
		}
	}

	return artifacts
}
