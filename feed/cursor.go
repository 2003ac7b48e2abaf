package feed

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/strandhq/strand/status"
)

// cursorVersion tags the encoded record so a future sort-key change fails
// closed on already-issued cursors instead of silently mis-paginating.
const cursorVersion = 1

// SortKey is the tie-broken position of a row under the active ordering
// (CreatedAt DESC, Id DESC).
type SortKey struct {
	CreatedAt time.Time
	Id        string
}

type cursorRecord struct {
	V  int    `json:"v"`
	T  int64  `json:"t"`
	Id string `json:"id"`
}

// EncodeCursor encodes an opaque pagination cursor from the sort key of the
// last row kept on a page. CreatedAt is truncated to microseconds, matching
// Postgres timestamp resolution.
func EncodeCursor(key SortKey) string {
	record := cursorRecord{
		V:  cursorVersion,
		T:  key.CreatedAt.UnixMicro(),
		Id: key.Id,
	}
	raw, _ := json.Marshal(record)
	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a cursor back into a sort key. An empty cursor means
// start of stream and decodes to nil. Any cursor that is not a well-formed
// record of the current version is rejected as CURSOR_MISMATCH.
func DecodeCursor(cursor string) (*SortKey, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, status.Validationf("CURSOR_MISMATCH: cursor is not valid base64")
	}
	var record cursorRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, status.Validationf("CURSOR_MISMATCH: cursor record is malformed")
	}
	if record.V != cursorVersion {
		return nil, status.Validationf("CURSOR_MISMATCH: unsupported cursor version %d", record.V)
	}
	if record.Id == "" {
		return nil, status.Validationf("CURSOR_MISMATCH: cursor record is incomplete")
	}
	return &SortKey{
		CreatedAt: time.UnixMicro(record.T).UTC(),
		Id:        record.Id,
	}, nil
}
