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

// Package cmd implements the searchindex command line subcommands.
package cmd

import (
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forensicanalysis/searchindex"
	"github.com/forensicanalysis/searchindex/evidencestore"
	"github.com/forensicanalysis/searchindex/sqlitetable"
)

// Extract is the searchindex extract commandline subcommand. It discovers
// the search index databases on a mounted system volume and writes the
// reconstructed records into an evidence store.
func Extract(log zerolog.Logger) *cobra.Command {
	extractCommand := &cobra.Command{
		Use:   "extract <image-dir>",
		Short: "Extract search index records from a mounted system volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageDir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			fsys := afero.NewBasePathFs(afero.NewOsFs(), imageDir)

			artifacts := searchindex.Discover(fsys, viper.GetStringSlice("data_dirs"), nil, log)
			if len(artifacts) == 0 {
				log.Warn().Str("image", imageDir).Msg("no search index databases found")
				return nil
			}

			records := searchindex.Process(artifacts, openers(fsys, imageDir, log), viper.GetInt("workers"), log)

			store, err := evidencestore.New(viper.GetString("store"))
			if err != nil {
				return errors.Wrap(err, "cannot create evidence store")
			}
			defer store.Close()

			for _, record := range records {
				if _, err := store.InsertStruct(record); err != nil {
					log.Warn().Err(err).Msg("cannot insert record")
				}
			}
			log.Info().Int("records", len(records)).Str("store", viper.GetString("store")).Msg("extraction done")
			return nil
		},
	}

	extractCommand.Flags().String("store", "searchindex.db", "output evidence store")
	extractCommand.Flags().StringSlice("data-dirs", nil, "additional Windows Search data directories")
	extractCommand.Flags().Bool("latest-only", false, "emit only the latest version per WorkID")
	extractCommand.Flags().Int("workers", runtime.NumCPU(), "database files processed in parallel")
	_ = viper.BindPFlag("store", extractCommand.Flags().Lookup("store"))
	_ = viper.BindPFlag("data_dirs", extractCommand.Flags().Lookup("data-dirs"))
	_ = viper.BindPFlag("latest_only", extractCommand.Flags().Lookup("latest-only"))
	_ = viper.BindPFlag("workers", extractCommand.Flags().Lookup("workers"))

	return extractCommand
}

func openers(fsys afero.Fs, imageDir string, log zerolog.Logger) map[string]searchindex.Opener {
	return map[string]searchindex.Opener{
		".db": func(artifact searchindex.Artifact) (*searchindex.Extractor, error) {
			db, err := sqlitetable.Open(filepath.Join(imageDir, artifact.Path))
			if err != nil {
				return nil, err
			}
			extractor := &searchindex.Extractor{
				Database:   db,
				Source:     artifact.Path,
				User:       artifact.User,
				LatestOnly: viper.GetBool("latest_only"),
				Logger:     log,
			}
			attachGather(extractor, fsys, imageDir, artifact, log)
			return extractor, nil
		},
		".edb": func(artifact searchindex.Artifact) (*searchindex.Extractor, error) {
			// The ESE parser is an external capability and not bundled.
			return nil, errors.Wrap(searchindex.ErrUnsupported, "no ESE parser available")
		},
	}
}

// attachGather wires the sibling Windows-gather.db into the extractor when
// it exists next to the property store database.
func attachGather(extractor *searchindex.Extractor, fsys afero.Fs, imageDir string, artifact searchindex.Artifact, log zerolog.Logger) {
	gatherPath := filepath.Join(filepath.Dir(artifact.Path), "Windows-gather.db")
	if ok, err := afero.Exists(fsys, gatherPath); err != nil || !ok {
		return
	}
	gatherDB, err := sqlitetable.Open(filepath.Join(imageDir, gatherPath))
	if err != nil {
		log.Warn().Err(err).Str("path", gatherPath).Msg("cannot open gather database")
		return
	}
	gather, err := gatherDB.Table(searchindex.GatherTable)
	if err != nil {
		log.Warn().Err(err).Str("path", gatherPath).Msg("no gather table")
		_ = gatherDB.Close()
		return
	}
	extractor.Gather = gather
}
