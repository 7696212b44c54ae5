package entity

import (
	"encoding/base64"
	"strconv"
)

// Cursors are opaque to callers but are internally a base64url-encoded
// decimal offset into the filtered result set. Offset cursors are not
// stable when the underlying set mutates between pages; acceptable for
// the low-write listings this service serves.

// EncodeCursor renders an offset as an opaque cursor. The first page
// needs no cursor, so offsets <= 0 encode to "".
func EncodeCursor(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// DecodeCursor recovers the offset from a cursor. Absent or malformed
// input restarts pagination at 0 rather than failing the request.
func DecodeCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
