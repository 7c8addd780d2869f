// apps/go-server/internal/daily/daily.go
//
// Daily challenge: one map and one dice sequence per UTC day.
// The seed is HMAC-SHA256(salt, YYYY-MM-DD), so players on the same day
// share a game while the schedule stays unguessable without the salt.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed derives the day's random seed.
func Seed(t time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// MapFor picks the day's map from ids. It returns "" when ids is empty.
func MapFor(t time.Time, salt string, ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("map:" + DateKey(t)))
	sum := h.Sum(nil)
	n := binary.BigEndian.Uint64(sum[24:])
	return ids[n%uint64(len(ids))]
}
