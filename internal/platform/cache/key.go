package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key derives a stable cache key from a model identifier and arbitrary prompt
// and parameter values: sha256(model \x00 canonical(prompt) \x00 canonical(params)).
// encoding/json marshals map keys in sorted order, which makes the JSON form
// canonical for the value shapes used here.
func Key(model string, prompt any, params any) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write(canonicalJSON(prompt))
	h.Write([]byte{0})
	h.Write(canonicalJSON(params))
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}
