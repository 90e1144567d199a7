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

import "sort"

// Timeline reconstructs per-WorkID version histories by replaying WAL
// checkpoint changes against base snapshots. Version lists are append-only,
// appended versions always carry a strictly larger checkpoint index than
// their predecessor.
type Timeline struct {
	catalog  *Catalog
	versions map[int64][]*Snapshot
}

// NewTimeline creates a timeline that resolves change column ids through
// the given catalog.
func NewTimeline(catalog *Catalog) *Timeline {
	return &Timeline{catalog: catalog, versions: map[int64][]*Snapshot{}}
}

// Seed installs the base snapshots as the checkpoint 0 versions.
func (t *Timeline) Seed(base map[int64]*Snapshot) {
	for workID, snapshot := range base {
		snapshot.Checkpoint = 0
		t.versions[workID] = []*Snapshot{snapshot}
	}
}

// Apply replays one checkpoint's changes. Checkpoints must be applied in
// ascending index order. A WorkID first seen in the WAL gets a fresh
// snapshot stamped with the checkpoint index. A WorkID whose most recent
// version is older than the checkpoint is cloned, re-stamped and updated,
// the prior version stays retained and immutable. Re-applying the same
// checkpoint mutates the already stamped version in place, which makes
// replay idempotent.
func (t *Timeline) Apply(index int, changes []Change) {
	for _, change := range changes {
		name := t.catalog.Name(change.ColumnID)

		versions := t.versions[change.WorkID]
		if len(versions) == 0 {
			t.versions[change.WorkID] = []*Snapshot{{
				WorkID:     change.WorkID,
				Checkpoint: index,
				Props:      map[string]interface{}{name: change.Value},
			}}
			continue
		}

		last := versions[len(versions)-1]
		if last.Checkpoint < index {
			next := last.Clone()
			next.Checkpoint = index
			next.Props[name] = change.Value
			t.versions[change.WorkID] = append(versions, next)
			continue
		}

		last.Props[name] = change.Value
	}
}

// Versions returns all retained snapshot versions ordered by WorkID and
// checkpoint index. Exactly one version per WorkID is marked latest: the
// one holding the maximum checkpoint index observed for that WorkID.
func (t *Timeline) Versions() []*Snapshot {
	workIDs := make([]int64, 0, len(t.versions))
	for workID := range t.versions {
		workIDs = append(workIDs, workID)
	}
	sort.Slice(workIDs, func(i, j int) bool { return workIDs[i] < workIDs[j] })

	var all []*Snapshot
	for _, workID := range workIDs {
		versions := t.versions[workID]
		max := 0
		for i, version := range versions {
			version.Latest = false
			if version.Checkpoint >= versions[max].Checkpoint {
				max = i
			}
		}
		versions[max].Latest = true
		all = append(all, versions...)
	}
	return all
}
