package util

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
)

// HexToBytes decodes a hex string to bytes, returning an error if invalid.
func HexToBytes(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// BytesToHex encodes bytes to a hex string.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// CanonicalJSON re-marshals v with object keys sorted lexicographically and
// no extraneous whitespace, as required for transaction and block digests
// (spec.md §4.5). encoding/json already sorts map keys, but a struct's
// field order is whatever it was declared with, so v is first marshaled
// normally, decoded into a generic map, and re-marshaled — guaranteeing
// sorted-key output regardless of how the Go struct orders its fields.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}
