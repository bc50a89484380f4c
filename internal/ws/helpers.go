package ws

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// newConnID labels one inbox subscription across its lifecycle events and
// logs. Random when possible, time-derived as a fallback; never empty.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "conn-" + strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)
}
