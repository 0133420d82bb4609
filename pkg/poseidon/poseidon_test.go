package poseidon

import (
	"testing"

	"github.com/MuriData/maci-core/pkg/field"
)

func TestHashIsDeterministic(t *testing.T) {
	a := field.FromInt64(1)
	b := field.FromInt64(2)

	h1 := Hash(a, b)
	h2 := Hash(a, b)
	if !field.Equal(h1, h2) {
		t.Fatalf("Hash(a,b) is not deterministic: %s != %s", h1.String(), h2.String())
	}
}

func TestHashIsSensitiveToOrderAndArity(t *testing.T) {
	a := field.FromInt64(1)
	b := field.FromInt64(2)

	if field.Equal(Hash(a, b), Hash(b, a)) {
		t.Fatalf("Hash(a,b) should differ from Hash(b,a)")
	}
	if field.Equal(Hash(a, b), Hash(a, b, field.Zero())) {
		t.Fatalf("Hash(a,b) should differ from Hash(a,b,0): arity changes the digest")
	}
}

func TestHashOneMatchesHash(t *testing.T) {
	x := field.FromInt64(42)
	if !field.Equal(HashOne(x), Hash(x)) {
		t.Fatalf("HashOne(x) should equal Hash(x)")
	}
}
