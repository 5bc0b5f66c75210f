package cache

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"
)

// Key builds a cache key from a namespace and a content digest of payload.
// Strings and byte slices are hashed as-is; anything else is hashed in its
// JSON encoding, which is deterministic for structs and sorted maps.
func Key(namespace string, payload any) (string, error) {
	var data []byte
	switch p := payload.(type) {
	case string:
		data = []byte(p)
	case []byte:
		data = p
	default:
		encoded, err := json.Marshal(p)
		if err != nil {
			return "", err
		}
		data = encoded
	}

	sum := blake3.Sum256(data)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}
