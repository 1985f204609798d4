package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Group builds the invalidation group tag for an (operation, user) pair.
// Groups are what the invalidation coordinator enumerates and deletes.
func Group(operation, userID string) string {
	return operation + ":" + userID
}

// Key builds a deterministic cache key from an operation, a user, and the
// operation's normalized arguments. Identical inputs always produce the
// same key, which is what makes invalidation-by-enumeration possible.
func Key(operation, userID string, args ...string) string {
	h := md5.Sum([]byte(strings.Join(args, "|")))
	return Group(operation, userID) + ":" + hex.EncodeToString(h[:])
}
