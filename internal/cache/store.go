// Package cache stores parsed documents behind a pluggable key-value store.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/dgallion1/docoutline/internal/anchor"
)

// Store is a byte-oriented key-value store with per-entry expiry.
// A ttl of zero means the entry does not expire.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

const keyPrefix = "outline_"

// Key identifies one parsed document under one set of outline options:
// outline_<doc>_<mode>_<depth>_<0|1>, where <doc> is the hex SHA-256 of the
// raw document id. Ids that differ in any byte get different keys.
func Key(documentID, mode string, depth int, numbering bool) string {
	n := "0"
	if numbering {
		n = "1"
	}
	return keyPrefix + documentKey(documentID) + "_" + anchor.SanitizeKey(mode) + "_" + strconv.Itoa(depth) + "_" + n
}

// IndexKey names the entry listing every key stored for a document.
func IndexKey(documentID string) string {
	return keyPrefix + "keys_" + documentKey(documentID)
}

func documentKey(documentID string) string {
	sum := sha256.Sum256([]byte(documentID))
	return hex.EncodeToString(sum[:])
}
