package models

// Fingerprint is the content identity of a single file: extension, exact byte
// size, and the hex SHA-256 digest of the full content. It is a value type,
// computed on demand and never cached between traversals; computing it twice
// for an unmodified file yields an identical value.
type Fingerprint struct {
	// Extension is the filename extension including the leading dot
	// (empty when the name has none)
	Extension string

	// Size is the exact byte count on disk at read time
	Size int64

	// Hash is the hex-encoded SHA-256 digest over the full content
	Hash string
}

// Equal reports whether two fingerprints are identical. All three fields
// must match; the hash alone is not enough for the identity contract.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Extension == other.Extension &&
		f.Size == other.Size &&
		f.Hash == other.Hash
}
