package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// maxIDLength caps the stable ID so it fits the store's key column.
const maxIDLength = 50

// Fingerprint hashes the identifying fields used for deduplication:
// lowercase(name)|street|city|state. Zip and phone are deliberately excluded;
// two distinct facilities sharing a building address will collapse. That
// mirrors the documented directory behavior and is flagged as an open
// question rather than silently changed.
func Fingerprint(name, street, city, state string) string {
	key := strings.ToLower(name) + "|" + street + "|" + city + "|" + state
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// StableID derives the deterministic primary key: lowercase state prefix, a
// slug of the name, and an 8-hex-char hash of state-city-name, capped at 50
// characters. The same (name, city, state) always yields the same ID, so
// repeated runs upsert the same row.
func StableID(name, city, state string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s-%s-%s", state, city, name))
	hash := hex.EncodeToString(sum[:])[:8]

	prefix := strings.ToLower(state)
	slug := slugify(name)

	// prefix + "-" + slug + "-" + hash must fit maxIDLength.
	maxSlug := maxIDLength - len(prefix) - len(hash) - 2
	if len(slug) > maxSlug {
		slug = strings.TrimRight(slug[:maxSlug], "-")
	}
	if slug == "" {
		return prefix + "-" + hash
	}

	return prefix + "-" + slug + "-" + hash
}

// slugify lowercases and reduces a name to [a-z0-9-].
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
			}
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
