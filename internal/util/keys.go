package util

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// QueryKey returns a deterministic key for an ordered list of query parts with a short hash.
// Parts are length-prefixed so ("ab","c") and ("a","bc") differ.
func QueryKey(prefix string, parts []string) string {
	h := sha256.New()
	var u4 [4]byte
	for _, p := range parts {
		binary.BigEndian.PutUint32(u4[:], uint32(len(p)))
		h.Write(u4[:])
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return fmt.Sprintf("%s:%x", prefix, sum[:8]) // prefix + ":" + 16 hex chars
}
