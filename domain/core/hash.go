package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// LogHash fingerprints an elimination log. Two runs over identical inputs must
// produce equal LogHash values; the workflow result records it so historical
// outputs can be audited without re-running the correction.
type LogHash Hash

// NewLogHash creates a LogHash from serialized log lines
func NewLogHash(data []byte) LogHash {
	return LogHash(NewHash(data))
}

// String returns the string representation
func (h LogHash) String() string { return Hash(h).String() }
