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
	"github.com/imdario/mergo"
	"github.com/rs/zerolog"
)

// Snapshot is the reconstructed property state of one WorkID at one
// checkpoint index. Base table snapshots are stamped with index 0.
type Snapshot struct {
	WorkID     int64
	Checkpoint int
	Latest     bool
	Props      map[string]interface{}
}

// Get returns a named property value.
func (s *Snapshot) Get(name string) (interface{}, bool) {
	v, ok := s.Props[name]
	return v, ok
}

// Clone returns a deep enough copy for timeline versioning. Property values
// themselves are never mutated after aggregation, so they are shared.
func (s *Snapshot) Clone() *Snapshot {
	props := make(map[string]interface{}, len(s.Props))
	for k, v := range s.Props {
		props[k] = v
	}
	return &Snapshot{WorkID: s.WorkID, Checkpoint: s.Checkpoint, Props: props}
}

// AggregateBase merges a full table scan of (WorkId, ColumnId, Value) rows
// into one snapshot per WorkID. When multiple rows target the same property
// the later row in scan order wins. Rows with a column id unknown to the
// catalog are retained under the numeric key. Memory use is bounded by the
// number of distinct WorkIDs, not by the number of rows.
func AggregateBase(it RowIter, catalog *Catalog) map[int64]*Snapshot {
	snapshots := map[int64]*Snapshot{}

	for {
		row, ok := it.Next()
		if !ok {
			break
		}

		workID, ok := asInt(value(row, "WorkId"))
		if !ok {
			continue
		}
		columnID, ok := asInt(value(row, "ColumnId"))
		if !ok {
			continue
		}

		snapshot, ok := snapshots[workID]
		if !ok {
			snapshot = &Snapshot{WorkID: workID, Props: map[string]interface{}{}}
			snapshots[workID] = snapshot
		}
		snapshot.Props[catalog.Name(columnID)] = value(row, "Value")
	}

	return snapshots
}

// MergeGather folds rows of the SystemIndex_Gthr table into the base
// snapshots. The gather table is keyed by DocumentID, which corresponds to
// the property store WorkID, and carries the crawled file name, the record
// modification time and the security descriptor id. The ESE variant stores
// LastModified big endian, the SQLite variant little endian.
func MergeGather(snapshots map[int64]*Snapshot, it RowIter, bigEndian bool, log zerolog.Logger) {
	for {
		row, ok := it.Next()
		if !ok {
			break
		}

		documentID, ok := asInt(value(row, "DocumentID"))
		if !ok {
			continue
		}

		props := map[string]interface{}{}
		if name, ok := asString(value(row, "FileName")); ok && name != "" {
			props["FileName"] = name
		}
		if raw, ok := row.Get("LastModified"); ok && raw != nil {
			if bigEndian {
				props["LastModified"] = winTimestampBE(raw)
			} else {
				props["LastModified"] = winTimestamp(raw)
			}
		}
		if sdid, ok := asInt(value(row, "SDID")); ok {
			props["SDID"] = sdid
		}
		if len(props) == 0 {
			continue
		}

		snapshot, ok := snapshots[documentID]
		if !ok {
			// The gather table can reference documents that never made it
			// into the property store.
			snapshots[documentID] = &Snapshot{WorkID: documentID, Props: props}
			continue
		}

		// Property store values win over gather values for shared keys.
		if err := mergo.Merge(&snapshot.Props, props); err != nil {
			log.Warn().Err(err).Int64("workid", documentID).Msg("cannot merge gather row")
		}
	}
}
