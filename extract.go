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
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// Property store table names of the SQLite variant. The ESE variant uses
// SystemIndex_PropertyStore without the schema version infix; adapters for
// it expose their tables under these names as well.
const (
	PropertyStoreTable = "SystemIndex_1_PropertyStore"
	MetadataTable      = "SystemIndex_1_PropertyStore_Metadata"
	GatherTable        = "SystemIndex_Gthr"
)

// Extractor runs the reconstruction pipeline for a single database file:
// catalog, base scan, WAL replay, timeline, classification. The pipeline is
// strictly sequential, WAL diffing needs the fully built base state and the
// timeline needs ordered checkpoint replay.
type Extractor struct {
	// Database is the property store database. Required.
	Database Database
	// WAL is the database's write-ahead log, nil if none exists.
	WAL WAL
	// Gather is the SystemIndex_Gthr table of the gather database, nil if
	// none exists.
	Gather Table
	// GatherBigEndian marks the ESE variant whose gather timestamps are
	// stored big endian.
	GatherBigEndian bool

	// Source is the database file path recorded in every output record.
	Source string
	// User is the ambient user of the source path, nil for the system
	// wide database.
	User *User
	// Resolver resolves SIDs found in browser store items.
	Resolver UserResolver
	// LatestOnly drops retained historical versions from the output.
	LatestOnly bool

	Logger zerolog.Logger
}

// Records reconstructs and classifies all snapshot versions of the
// database. A missing property store table returns ErrUnsupported; failures
// local to one row, page or checkpoint never escalate.
func (e *Extractor) Records() ([]Record, error) {
	catalog := e.buildCatalog()

	table, err := e.Database.Table(PropertyStoreTable)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupported, "no property store in %s", e.Source)
	}
	rows, err := table.Rows()
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupported, "cannot scan property store in %s", e.Source)
	}

	base := AggregateBase(rows, catalog)

	if e.Gather != nil {
		gatherRows, err := e.Gather.Rows()
		if err != nil {
			e.Logger.Warn().Err(err).Str("source", e.Source).Msg("cannot scan gather table")
		} else {
			MergeGather(base, gatherRows, e.GatherBigEndian, e.Logger)
		}
	}

	timeline := NewTimeline(catalog)
	timeline.Seed(base)

	e.replayWAL(timeline, table, catalog)

	classifier := &Classifier{
		Source:   e.Source,
		Resolver: e.Resolver,
		User:     e.User,
		Logger:   e.Logger,
	}

	var records []Record
	for _, version := range timeline.Versions() {
		if e.LatestOnly && !version.Latest {
			continue
		}
		if record, ok := classifier.Classify(version); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

func (e *Extractor) buildCatalog() *Catalog {
	metadata, err := e.Database.Table(MetadataTable)
	if err == nil {
		catalog, err := BuildCatalog(metadata)
		if err == nil {
			return catalog
		}
		e.Logger.Warn().Err(err).Str("source", e.Source).Msg("cannot read metadata table")
	} else {
		e.Logger.Warn().Str("source", e.Source).Msg("no metadata table, keeping numeric column ids")
	}
	return PassthroughCatalog()
}

func (e *Extractor) replayWAL(timeline *Timeline, table Table, catalog *Catalog) {
	if e.WAL == nil {
		return
	}

	// The cell tuple contract is validated once per file, not per row.
	if err := ValidateLeadingColumns(table, catalog); err != nil {
		e.Logger.Warn().Err(err).Str("source", e.Source).Msg("skipping WAL replay")
		return
	}

	checkpoints, err := e.WAL.Checkpoints()
	if err != nil {
		e.Logger.Warn().Err(err).Str("source", e.Source).Msg("cannot read WAL")
		return
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].Index() < checkpoints[j].Index()
	})

	for _, checkpoint := range checkpoints {
		changes := CheckpointChanges(e.Database, checkpoint, e.Logger)
		timeline.Apply(checkpoint.Index(), changes)
	}
}

// Opener opens one discovered database file and assembles an Extractor for
// it. Openers are registered per file extension.
type Opener func(artifact Artifact) (*Extractor, error)

// Process extracts records from independent database files, optionally in
// parallel. Results are merged in artifact order. A file that fails to open
// or has an unknown extension yields zero records and one logged warning
// and does not affect the other files.
func Process(artifacts []Artifact, openers map[string]Opener, workers int, log zerolog.Logger) []Record {
	if workers < 1 {
		workers = 1
	}

	results := make([][]Record, len(artifacts))

	p := pool.New().WithMaxGoroutines(workers)
	for i, artifact := range artifacts {
		i, artifact := i, artifact
		p.Go(func() {
			results[i] = processOne(artifact, openers, log)
		})
	}
	p.Wait()

	var merged []Record
	for _, records := range results {
		merged = append(merged, records...)
	}
	return merged
}

func processOne(artifact Artifact, openers map[string]Opener, log zerolog.Logger) []Record {
	ext := strings.ToLower(path.Ext(artifact.Path))
	opener, ok := openers[ext]
	if !ok {
		log.Warn().Str("path", artifact.Path).Msg("unknown search index database file")
		return nil
	}

	extractor, err := opener(artifact)
	if err != nil {
		log.Warn().Err(err).Str("path", artifact.Path).Msg("cannot open search index database")
		return nil
	}
	defer extractor.Database.Close()

	records, err := extractor.Records()
	if err != nil {
		log.Warn().Err(err).Str("path", artifact.Path).Msg("cannot extract search index records")
		return nil
	}
	return records
}
