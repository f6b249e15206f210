// Package daily derives the shared "code of the day" and stores results.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SecretFor returns the deterministic secret code for the UTC date of t:
// peg i is byte i of HMAC-SHA256(salt, YYYY-MM-DD) modulo the palette size.
func SecretFor(t time.Time, salt string) game.Code {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)

	var code game.Code
	p := game.DefaultPalette
	for i := range code {
		code[i] = p[int(sum[i])%len(p)]
	}
	return code
}
