package persistence

import (
	"encoding/json"
	"time"
)

// parseTime tolerates both parseTime=True driver output and raw []byte
// timestamps (sqlmock and some managed MySQL flavors return the latter).
func parseTime(val interface{}) time.Time {
	if val == nil {
		return time.Time{}
	}
	switch v := val.(type) {
	case time.Time:
		return v
	case []uint8:
		str := string(v)
		if t, err := time.Parse("2006-01-02 15:04:05", str); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, str); err == nil {
			return t
		}
	}
	return time.Time{}
}

// marshalOrDefault marshals v, returning def when v is nil or marshaling
// fails. Used for JSON columns that must never be SQL NULL.
func marshalOrDefault(v interface{}, def string) string {
	if v == nil {
		return def
	}
	data, err := json.Marshal(v)
	if err != nil {
		return def
	}
	return string(data)
}
