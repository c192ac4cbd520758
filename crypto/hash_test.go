package crypto

import "testing"

func TestHasherIncrementalMatchesOneShot(t *testing.T) {
	a := []byte("hello ")
	b := []byte("world")

	incremental := NewHasher().Update(a).Update(b).Sum()
	oneShot := HashAll(a, b)

	if incremental != oneShot {
		t.Fatalf("incremental hash %x != one-shot hash %x", incremental, oneShot)
	}

	concatenated := HashAll(append(append([]byte{}, a...), b...))
	if incremental != concatenated {
		t.Fatalf("hash not consistent with concatenation: %x != %x", incremental, concatenated)
	}
}

func TestHasherDeterministic(t *testing.T) {
	data := []byte("shuffle round transcript")
	h1 := HashAll(data)
	h2 := HashAll(data)
	if h1 != h2 {
		t.Fatal("hashing is not deterministic")
	}
}

func TestHasherDiffersOnDifferentInput(t *testing.T) {
	if HashAll([]byte("a")) == HashAll([]byte("b")) {
		t.Fatal("expected different digests for different inputs")
	}
}
