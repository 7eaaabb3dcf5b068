package utils

import (
	"github.com/gofrs/uuid"
)

// RandomUUID returns a new random UUID with an optionally provided ns.
func RandomUUID(ns string) uuid.UUID {
	randUUID, err := uuid.NewV4()
	switch {
	case err != nil:
		// Fallback, should practically never happen.
		return uuid.NewV5(uuid.NamespaceOID, ns)
	case ns != "":
		// Mix ns into the UUID.
		return uuid.NewV5(randUUID, ns)
	default:
		return randUUID
	}
}
