package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// artifactKey joins the entry type, the format and the content hash, e.g.
// "artifact:svg:9f86d0...". Format names never contain ':'.
func artifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return strings.Join([]string{"artifact", strings.ToLower(opts.Format), dotHash}, ":")
}
