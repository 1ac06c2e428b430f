// Package idempotency derives deterministic dedup keys for the audit
// trail: a consumer reading the Kafka topics can use this key to recognize
// a redelivered event instead of double-counting it.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Key hashes an event's identity (kind, subject, amount, moment) into a
// stable hex string.
func Key(kind, subject string, amountCents int64, at time.Time) string {
	data := fmt.Sprintf("%s:%s:%d:%d", kind, subject, amountCents, at.UnixNano())
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
