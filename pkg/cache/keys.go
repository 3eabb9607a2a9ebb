package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/launchmap/launchmap/pkg/layout"
)

// hashKey builds a cache key from a prefix and the SHA-256 hash of its
// parts. Full 64-hex-char digests keep collisions out of the picture.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// LayoutKey derives the cache key for a laid-out graph. Any input that
// influences coordinates must appear here, so the full option set is
// hashed alongside the graph content hash: direction, separations, node
// extents, and per-node height overrides.
func LayoutKey(graphHash string, opts layout.Options) string {
	return hashKey("layout", graphHash, opts)
}

// GraphKey derives the cache key for a derived (pre-layout) graph from the
// snapshot hash and the build inputs that shape it. Focus is not part of
// the key; dimming is applied per request on top of the cached graph.
func GraphKey(snapshotHash, rootLabel, grouping, viewMode, search, statusFilter string) string {
	return hashKey("graph", snapshotHash, rootLabel, grouping, viewMode, search, statusFilter)
}

// Hash returns the full hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
