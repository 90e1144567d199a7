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

// Package searchindex reconstructs forensic evidence records from Windows
// Search Index databases (Windows.edb and Windows.db).
//
// The Windows Search Index is a property store keyed by (WorkID, ColumnID).
// Every indexed object (a file, an activity history event, a browser history
// item) is one WorkID; its indexed properties are stored as one row per
// ColumnID. The SQLite variant of the database additionally keeps a
// write-ahead log whose checkpoints contain page images that were written
// after the base file was last flushed. Replaying these checkpoints against
// the base file recovers property values that were modified later, which
// makes it possible to reconstruct multiple historical versions of a single
// indexed object.
//
// The reconstruction pipeline for one database file is strictly sequential:
//   - resolve the column catalog (numeric ColumnID to property name),
//   - aggregate the base table scan into one snapshot per WorkID,
//   - diff each WAL checkpoint against the current base pages,
//   - replay the diffs in checkpoint order into per-WorkID version timelines,
//   - classify every retained version into a file index, activity or
//     browser history record.
//
// Byte level parsing of the ESE and SQLite container formats is not part of
// this package. Databases are accessed through the capability interfaces in
// source.go, which parser implementations have to satisfy.
package searchindex
