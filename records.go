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

import "time"

// Record type discriminators.
const (
	TypeFileIndex      = "windows-search-file"
	TypeActivity       = "windows-search-activity"
	TypeBrowserHistory = "windows-search-browser-history"
)

// Record is one classified output record. It is one of FileIndexRecord,
// ActivityRecord or BrowserHistoryRecord.
type Record interface {
	RecordType() string
}

// FileIndexRecord is the reconstructed index state of a filesystem item.
type FileIndexRecord struct {
	Type               string     `json:"type" structs:"type"`
	WorkID             int64      `json:"workid" structs:"workid"`
	RecordLastModified *time.Time `json:"record_last_modified,omitempty" structs:"record_last_modified,omitempty,omitnested"`
	Filename           string     `json:"filename,omitempty" structs:"filename,omitempty"`
	GatherTime         *time.Time `json:"gathertime,omitempty" structs:"gathertime,omitempty,omitnested"`
	SDID               *int64     `json:"sdid,omitempty" structs:"sdid,omitempty"`
	Size               *int64     `json:"size,omitempty" structs:"size,omitempty"`
	DateModified       *time.Time `json:"date_modified,omitempty" structs:"date_modified,omitempty,omitnested"`
	DateCreated        *time.Time `json:"date_created,omitempty" structs:"date_created,omitempty,omitnested"`
	DateAccessed       *time.Time `json:"date_accessed,omitempty" structs:"date_accessed,omitempty,omitnested"`
	Owner              string     `json:"owner,omitempty" structs:"owner,omitempty"`
	ItemType           string     `json:"item_type,omitempty" structs:"item_type,omitempty"`
	FileAttributes     string     `json:"file_attributes,omitempty" structs:"file_attributes,omitempty"`
	AutoSummary        string     `json:"auto_summary,omitempty" structs:"auto_summary,omitempty"`
	Source             string     `json:"source" structs:"source"`
	Latest             bool       `json:"latest" structs:"latest"`
	CheckpointIndex    int        `json:"checkpoint_index" structs:"checkpoint_index"`
}

// RecordType implements Record.
func (r *FileIndexRecord) RecordType() string { return TypeFileIndex }

// ActivityRecord is one reconstructed activity history event.
type ActivityRecord struct {
	Type            string     `json:"type" structs:"type"`
	WorkID          int64      `json:"workid" structs:"workid"`
	StartTime       *time.Time `json:"start_time,omitempty" structs:"start_time,omitempty,omitnested"`
	EndTime         *time.Time `json:"end_time,omitempty" structs:"end_time,omitempty,omitnested"`
	Duration        *int64     `json:"duration,omitempty" structs:"duration,omitempty"`
	AppName         string     `json:"app_name,omitempty" structs:"app_name,omitempty"`
	AppID           string     `json:"app_id,omitempty" structs:"app_id,omitempty"`
	ActivityID      string     `json:"activity_id,omitempty" structs:"activity_id,omitempty"`
	ContentURI      string     `json:"content_uri,omitempty" structs:"content_uri,omitempty"`
	Description     string     `json:"description,omitempty" structs:"description,omitempty"`
	DisplayText     string     `json:"display_text,omitempty" structs:"display_text,omitempty"`
	Source          string     `json:"source" structs:"source"`
	Latest          bool       `json:"latest" structs:"latest"`
	CheckpointIndex int        `json:"checkpoint_index" structs:"checkpoint_index"`
}

// RecordType implements Record.
func (r *ActivityRecord) RecordType() string { return TypeActivity }

// BrowserHistoryRecord is one browser history item recovered from the
// search index of a browser store.
type BrowserHistoryRecord struct {
	Type      string     `json:"type" structs:"type"`
	Timestamp *time.Time `json:"timestamp,omitempty" structs:"timestamp,omitempty,omitnested"`
	Browser   string     `json:"browser" structs:"browser"`
	URL       string     `json:"url" structs:"url"`
	Title     string     `json:"title,omitempty" structs:"title,omitempty"`
	Host      string     `json:"host,omitempty" structs:"host,omitempty"`
	Source    string     `json:"source" structs:"source"`
	User      *User      `json:"user,omitempty" structs:"user,omitempty"`
}

// RecordType implements Record.
func (r *BrowserHistoryRecord) RecordType() string { return TypeBrowserHistory }
