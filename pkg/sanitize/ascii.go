// Package sanitize filters model output before it reaches a messaging
// channel. Downstream gateways only handle 7-bit ASCII reliably, so
// everything else is dropped rather than re-encoded.
package sanitize

import "strings"

// Clean removes every rune outside printable 7-bit ASCII. Newlines and
// tabs survive as formatting. Emojis and non-Latin scripts are stripped
// as a side effect; callers rely on that behavior, so keep it.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if r >= 0x20 && r <= 0x7E {
			b.WriteRune(r)
		}
	}
	return b.String()
}
