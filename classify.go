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
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// reItemURL matches browser store item urls of the shape scheme://{sid}/url.
var reItemURL = regexp.MustCompile(`^(?P<store>.+)://\{(?P<sid>.+)\}/(?P<url>.+)$`)

// browserNames maps known browser store discriminators to browser names.
var browserNames = map[string]string{
	"iehistory": "internet-explorer",
	"winrt":     "edge",
}

// Classifier converts reconstructed snapshot versions into typed records.
// Rules are evaluated in fixed priority order: activity history items
// first, then browser store items, everything else is a file index record.
type Classifier struct {
	// Source is the path of the database file the snapshots came from.
	Source string
	// Resolver resolves security identifiers found in browser item urls.
	Resolver UserResolver
	// User is the ambient user of the source path, used when SID
	// resolution fails. Nil for the system wide database.
	User *User

	Logger zerolog.Logger
}

type rule struct {
	matches func(*Snapshot) bool
	build   func(*Classifier, *Snapshot) (Record, bool)
}

var rules = []rule{
	{matchesActivity, (*Classifier).activityRecord},
	{matchesBrowserStore, (*Classifier).browserRecord},
	{func(*Snapshot) bool { return true }, (*Classifier).fileIndexRecord},
}

func matchesActivity(s *Snapshot) bool {
	itemType, _ := asString(snapshotValue(s, "System_ItemType"))
	return itemType == "ActivityHistoryItem"
}

func matchesBrowserStore(s *Snapshot) bool {
	store, _ := asString(snapshotValue(s, "System_Search_Store"))
	_, known := browserNames[store]
	return known
}

// Classify yields exactly one record per snapshot, or none on an
// unrecoverable classification or decoding failure. Failures are logged
// with context and never escalate past this boundary.
func (c *Classifier) Classify(s *Snapshot) (record Record, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.Logger.Warn().
				Interface("panic", r).
				Int64("workid", s.WorkID).
				Str("source", c.Source).
				Msg("cannot decode record")
			record, ok = nil, false
		}
	}()

	for _, rule := range rules {
		if rule.matches(s) {
			return rule.build(c, s)
		}
	}
	return nil, false
}

func (c *Classifier) activityRecord(s *Snapshot) (Record, bool) {
	return &ActivityRecord{
		Type:            TypeActivity,
		WorkID:          s.WorkID,
		StartTime:       winTimestamp(snapshotValue(s, "System_ActivityHistory_StartTime")),
		EndTime:         winTimestamp(snapshotValue(s, "System_ActivityHistory_EndTime")),
		Duration:        optionalInt(snapshotValue(s, "System_ActivityHistory_ActiveDuration")),
		AppName:         stringValue(s, "System_Activity_AppDisplayName"),
		AppID:           stringValue(s, "System_ActivityHistory_AppId"),
		ActivityID:      stringValue(s, "System_ActivityHistory_AppActivityId"),
		ContentURI:      stringValue(s, "System_Activity_ContentUri"),
		Description:     stringValue(s, "System_Activity_Description"),
		DisplayText:     stringValue(s, "System_Activity_DisplayText"),
		Source:          c.Source,
		Latest:          s.Latest,
		CheckpointIndex: s.Checkpoint,
	}, true
}

func (c *Classifier) browserRecord(s *Snapshot) (Record, bool) {
	itemURL := stringValue(s, "System_ItemUrl")

	match := reItemURL.FindStringSubmatch(itemURL)
	if match == nil {
		c.Logger.Warn().
			Str("item_url", itemURL).
			Int64("workid", s.WorkID).
			Str("source", c.Source).
			Msg("cannot parse item url")
		return nil, false
	}
	store, sid, itemPath := match[1], match[2], match[3]

	browser, ok := browserNames[store]
	if !ok {
		c.Logger.Warn().
			Str("store", store).
			Str("source", c.Source).
			Msg("unknown browser store")
		return nil, false
	}

	user := c.User
	if c.Resolver != nil {
		if resolved, found := c.Resolver.Find(sid); found {
			user = resolved
		}
	}

	targetURL := stringValue(s, "System_Link_TargetUrl")
	recordURL := targetURL
	if recordURL == "" {
		recordURL = itemPath
	}

	var host string
	if parsed, err := url.Parse(targetURL); err == nil {
		host = parsed.Hostname()
	}

	return &BrowserHistoryRecord{
		Type:      TypeBrowserHistory,
		Timestamp: winTimestamp(snapshotValue(s, "System_Link_DateVisited")),
		Browser:   browser,
		URL:       recordURL,
		Title:     stringValue(s, "System_Title"),
		Host:      host,
		Source:    c.Source,
		User:      user,
	}, true
}

func (c *Classifier) fileIndexRecord(s *Snapshot) (Record, bool) {
	filename := strings.ReplaceAll(stringValue(s, "System_ItemPathDisplay"), "\\", "/")
	if filename == "" {
		filename = stringValue(s, "FileName")
	}

	var autoSummary string
	if raw, ok := s.Get("System_Search_AutoSummary"); ok {
		if b, ok := raw.([]byte); ok {
			autoSummary = hex.EncodeToString(b)
		} else if str, ok := asString(raw); ok {
			autoSummary = hex.EncodeToString([]byte(str))
		}
	}

	// The content type is the first match among several fallback
	// properties, item types from newer schema versions come first.
	itemType := stringValue(s, "System_MIMEType")
	if itemType == "" {
		itemType = stringValue(s, "System_ContentType")
	}
	if itemType == "" {
		itemType = stringValue(s, "System_ItemType")
	}
	if itemType == "" {
		itemType = stringValue(s, "System_ItemTypeText")
	}

	var attributes string
	if raw, ok := s.Get("System_FileAttributes"); ok {
		attributes = fileAttributes(raw)
	}

	return &FileIndexRecord{
		Type:               TypeFileIndex,
		WorkID:             s.WorkID,
		RecordLastModified: winTimestamp(snapshotValue(s, "LastModified")),
		Filename:           filename,
		GatherTime:         winTimestamp(snapshotValue(s, "System_Search_GatherTime")),
		SDID:               optionalInt(snapshotValue(s, "SDID")),
		Size:               optionalInt(snapshotValue(s, "System_Size")),
		DateModified:       winTimestamp(snapshotValue(s, "System_DateModified")),
		DateCreated:        winTimestamp(snapshotValue(s, "System_DateCreated")),
		DateAccessed:       winTimestamp(snapshotValue(s, "System_DateAccessed")),
		Owner:              stringValue(s, "System_FileOwner"),
		ItemType:           itemType,
		FileAttributes:     attributes,
		AutoSummary:        autoSummary,
		Source:             c.Source,
		Latest:             s.Latest,
		CheckpointIndex:    s.Checkpoint,
	}, true
}

func snapshotValue(s *Snapshot, name string) interface{} {
	v, _ := s.Get(name)
	return v
}

func stringValue(s *Snapshot, name string) string {
	str, _ := asString(snapshotValue(s, name))
	return str
}

func optionalInt(v interface{}) *int64 {
	if v == nil {
		return nil
	}
	i, ok := asInt(v)
	if !ok {
		return nil
	}
	return &i
}
