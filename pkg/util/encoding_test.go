package util

import (
	"testing"
)

func TestHexConversion(t *testing.T) {
	original := []byte{0xde, 0xad, 0xbe, 0xef}
	hexStr := BytesToHex(original)
	if hexStr != "deadbeef" {
		t.Errorf("BytesToHex = %s, want deadbeef", hexStr)
	}

	decoded, err := HexToBytes(hexStr)
	if err != nil {
		t.Errorf("HexToBytes error: %v", err)
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("HexToBytes byte %d = %x, want %x", i, decoded[i], original[i])
		}
	}

	if _, err = HexToBytes("zzzz"); err == nil {
		t.Error("HexToBytes should fail on invalid hex")
	}
}

func TestCanonicalJSONSortsKeys(t *testing.T) {
	type payload struct {
		Zebra   int    `json:"zebra"`
		Amount  int    `json:"amount"`
		Comment string `json:"comment"`
	}

	out, err := CanonicalJSON(payload{Zebra: 1, Amount: 2, Comment: "hi"})
	if err != nil {
		t.Fatalf("CanonicalJSON error: %v", err)
	}
	want := `{"amount":2,"comment":"hi","zebra":1}`
	if string(out) != want {
		t.Errorf("CanonicalJSON = %s, want %s", out, want)
	}
}

func TestCanonicalJSONDeterministic(t *testing.T) {
	type nested struct {
		B int `json:"b"`
		A int `json:"a"`
	}
	type payload struct {
		Inner nested `json:"inner"`
		Name  string `json:"name"`
	}

	a, err1 := CanonicalJSON(payload{Inner: nested{B: 1, A: 2}, Name: "x"})
	b, err2 := CanonicalJSON(payload{Inner: nested{B: 1, A: 2}, Name: "x"})
	if err1 != nil || err2 != nil {
		t.Fatalf("errors: %v %v", err1, err2)
	}
	if string(a) != string(b) {
		t.Errorf("CanonicalJSON not deterministic: %s != %s", a, b)
	}
	if string(a) != `{"inner":{"a":2,"b":1},"name":"x"}` {
		t.Errorf("nested keys not sorted: %s", a)
	}
}
