package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ItemID computes the deterministic identity of an entry: link, else guid,
// else title plus publication date. The same logical article maps to the same
// identifier regardless of which feed cycle observed it.
func ItemID(entry Entry) string {
	key := entry.Link
	if key == "" {
		key = entry.GUID
	}
	if key == "" {
		key = entry.Title + "|" + entry.PublishedRaw
	}

	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// ContentHash detects whether a re-seen item actually changed. Stored for
// diagnostics; it does not gate the upsert.
func ContentHash(entry Entry) string {
	content := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		entry.Title,
		entry.Link,
		entry.Summary,
		entry.Content,
		entry.Author,
		entry.PublishedRaw)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
