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
	"encoding/json"

	"github.com/qri-io/jsonschema"
)

// recordSchemas holds the validation schema per record type. Elements of
// unknown types are stored without validation.
var recordSchemas = map[string]*jsonschema.Schema{}

var schemaSources = map[string]string{
	"windows-search-file": `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"title": "windows-search-file",
		"type": "object",
		"required": ["type", "workid", "source"],
		"properties": {
			"type": {"type": "string", "const": "windows-search-file"},
			"workid": {"type": "integer"},
			"record_last_modified": {"type": "string"},
			"filename": {"type": "string"},
			"gathertime": {"type": "string"},
			"sdid": {"type": "integer"},
			"size": {"type": "integer"},
			"date_modified": {"type": "string"},
			"date_created": {"type": "string"},
			"date_accessed": {"type": "string"},
			"owner": {"type": "string"},
			"item_type": {"type": "string"},
			"file_attributes": {"type": "string"},
			"auto_summary": {"type": "string"},
			"source": {"type": "string"},
			"latest": {"type": "boolean"},
			"checkpoint_index": {"type": "integer"}
		}
	}`,
	"windows-search-activity": `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"title": "windows-search-activity",
		"type": "object",
		"required": ["type", "workid", "source"],
		"properties": {
			"type": {"type": "string", "const": "windows-search-activity"},
			"workid": {"type": "integer"},
			"start_time": {"type": "string"},
			"end_time": {"type": "string"},
			"duration": {"type": "integer"},
			"app_name": {"type": "string"},
			"app_id": {"type": "string"},
			"activity_id": {"type": "string"},
			"content_uri": {"type": "string"},
			"description": {"type": "string"},
			"display_text": {"type": "string"},
			"source": {"type": "string"},
			"latest": {"type": "boolean"},
			"checkpoint_index": {"type": "integer"}
		}
	}`,
	"windows-search-browser-history": `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"title": "windows-search-browser-history",
		"type": "object",
		"required": ["type", "browser", "url", "source"],
		"properties": {
			"type": {"type": "string", "const": "windows-search-browser-history"},
			"timestamp": {"type": "string"},
			"browser": {"type": "string"},
			"url": {"type": "string"},
			"title": {"type": "string"},
			"host": {"type": "string"},
			"source": {"type": "string"},
			"user": {"type": "object"}
		}
	}`,
}

func init() {
	for name, source := range schemaSources {
		schema := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(source), schema); err != nil {
			panic("invalid record schema " + name + ": " + err.Error())
		}
		recordSchemas[name] = schema
	}
}
