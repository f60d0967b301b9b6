package security

import "testing"

func TestIPHasher_Hash(t *testing.T) {
	h := NewIPHasher("pepper")

	a := h.Hash("203.0.113.7")
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64", len(a))
	}
	if a != h.Hash("203.0.113.7") {
		t.Fatal("hash is not deterministic")
	}
	if a == h.Hash("203.0.113.8") {
		t.Fatal("different IPs produced the same hash")
	}
	if a == NewIPHasher("other").Hash("203.0.113.7") {
		t.Fatal("salt does not affect the hash")
	}
}
