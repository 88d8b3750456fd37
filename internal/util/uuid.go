package util

import "github.com/google/uuid"

// GenerateUUID returns a random v4 UUID string. Services keep this behind
// an injectable field so tests can substitute deterministic ids.
func GenerateUUID() string {
	return uuid.NewString()
}
