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
	"encoding/binary"
	"strings"
	"time"
)

// Seconds between 1601-01-01 and 1970-01-01.
const windowsEpochOffset = 11644473600

// asInt decodes a raw column value into an integer. Byte values are
// interpreted little endian, which is how the property store serializes
// integers.
func asInt(v interface{}) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	case []byte:
		if len(v) == 0 || len(v) > 8 {
			return 0, false
		}
		return int64(leUint64(v)), true
	}
	return 0, false
}

// asString decodes a raw column value into a string.
func asString(v interface{}) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func leUint64(b []byte) uint64 {
	var buf [8]byte
	copy(buf[:], b)
	return binary.LittleEndian.Uint64(buf[:])
}

func beUint64(b []byte) uint64 {
	var buf [8]byte
	copy(buf[8-len(b):], b)
	return binary.BigEndian.Uint64(buf[:])
}

// winTimestampTicks converts 100ns ticks since 1601-01-01 into a UTC
// timestamp. Zero ticks decode to nil, they mark unset values in the
// property store.
func winTimestampTicks(ticks uint64) *time.Time {
	if ticks == 0 {
		return nil
	}
	t := time.Unix(int64(ticks/1e7)-windowsEpochOffset, int64(ticks%1e7)*100).UTC()
	return &t
}

// winTimestamp decodes a little endian Windows FILETIME property value.
// Absent, empty or all-zero values decode to nil, never to an error.
func winTimestamp(v interface{}) *time.Time {
	switch v := v.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 || len(v) > 8 {
			return nil
		}
		return winTimestampTicks(leUint64(v))
	case time.Time:
		return &v
	case *time.Time:
		return v
	default:
		if i, ok := asInt(v); ok && i > 0 {
			return winTimestampTicks(uint64(i))
		}
	}
	return nil
}

// winTimestampBE decodes a big endian FILETIME, the byte order used by the
// LastModified column of the ESE gather table.
func winTimestampBE(v interface{}) *time.Time {
	b, ok := v.([]byte)
	if !ok || len(b) == 0 || len(b) > 8 {
		return winTimestamp(v)
	}
	return winTimestampTicks(beUint64(b))
}

// NTFS file attribute bits as indexed by the System_FileAttributes property.
var fileAttributeNames = []struct {
	bit  uint64
	name string
}{
	{0x1, "READONLY"},
	{0x2, "HIDDEN"},
	{0x4, "SYSTEM"},
	{0x10, "DIRECTORY"},
	{0x20, "ARCHIVE"},
	{0x40, "DEVICE"},
	{0x80, "NORMAL"},
	{0x100, "TEMPORARY"},
	{0x200, "SPARSE_FILE"},
	{0x400, "REPARSE_POINT"},
	{0x800, "COMPRESSED"},
	{0x1000, "OFFLINE"},
	{0x2000, "NOT_CONTENT_INDEXED"},
	{0x4000, "ENCRYPTED"},
	{0x8000, "INTEGRITY_STREAM"},
	{0x10000, "VIRTUAL"},
	{0x20000, "NO_SCRUB_DATA"},
	{0x40000, "RECALL_ON_OPEN"},
	{0x400000, "RECALL_ON_DATA_ACCESS"},
}

// fileAttributes decodes a raw attribute bitmask into a comma joined list
// of symbolic attribute names. Unknown bits are dropped.
func fileAttributes(v interface{}) string {
	mask, ok := asInt(v)
	if !ok || mask == 0 {
		return ""
	}
	var names []string
	for _, attr := range fileAttributeNames {
		if uint64(mask)&attr.bit != 0 {
			names = append(names, attr.name)
		}
	}
	return strings.Join(names, ",")
}
