package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ProductID is the content-derived identifier of a product: the hex-encoded
// SHA-256 digest of the product name. Two products share an ID iff they share
// a name, so the catalog treats the ID as effectively collision-free.
type ProductID string

// Account is an opaque identifier of a store participant. The ledger never
// inspects it beyond comparing for equality.
type Account string

// DeriveID computes the ProductID for a product name. It is a pure function:
// identical names always yield the identical ID.
func DeriveID(name string) ProductID {
	sum := sha256.Sum256([]byte(name))
	return ProductID(hex.EncodeToString(sum[:]))
}

// ParseID validates the textual form of a ProductID and canonicalizes it to
// lowercase hex. Returns an error if the value is not a hex SHA-256 digest.
func ParseID(s string) (ProductID, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != sha256.Size {
		return "", fmt.Errorf("malformed product id %q", s)
	}
	return ProductID(hex.EncodeToString(raw)), nil
}
