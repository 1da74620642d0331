// Package keys derives deterministic cache keys from call arguments.
package keys

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// maxLen bounds rendered keys; longer keys collapse to a hashed form so
// stores with key-size limits stay happy.
const maxLen = 200

// Canonical renders "ns:op(arg1,arg2,...)" with %v argument formatting.
// The same (ns, op, args) always yields the same key; keys exceeding
// maxLen are replaced by a sha256 short-hash form.
func Canonical(ns, op string, args []any) string {
	var b strings.Builder
	b.WriteString(ns)
	b.WriteByte(':')
	b.WriteString(op)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%v", a)
	}
	b.WriteByte(')')

	s := b.String()
	if len(s) <= maxLen {
		return s
	}
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%s:%s(#%x)", ns, op, sum[:8])
}
