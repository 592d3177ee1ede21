package bunx

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewObjectID returns a 24 hex character document id.
//
// The id is the first 12 bytes of a UUIDv7: a 48-bit millisecond timestamp followed
// by random bits, so ids sort by creation time the way document-store ids do.
// Panics only if the entropy source fails.
func NewObjectID() string {
	u := uuid.Must(uuid.NewV7())
	return hex.EncodeToString(u[:12])
}
