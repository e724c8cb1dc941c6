// Package tracer generates call identifiers and timestamps for audit
// events.
package tracer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewCallID generates an identifier for one gated action call.
func NewCallID() string {
	return prefixedID("c", 12)
}

// UTCNowISO returns the current UTC time in ISO format with Z suffix.
func UTCNowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func prefixedID(prefix string, hexLen int) string {
	b := make([]byte, (hexLen+1)/2)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based ID if crypto/rand fails
		return fmt.Sprintf("%s-%x", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(b)[:hexLen])
}
