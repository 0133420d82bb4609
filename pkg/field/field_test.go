package field

import (
	"math/big"
	"testing"
)

func TestAddSubRoundTrip(t *testing.T) {
	a := FromInt64(17)
	b := FromInt64(42)

	sum := Add(a, b)
	back := Sub(sum, b)
	if !Equal(back, a) {
		t.Fatalf("Sub(Add(a,b),b) = %s, want %s", back.String(), a.String())
	}
}

func TestMulByZeroIsZero(t *testing.T) {
	a := FromInt64(12345)
	if !Mul(a, Zero()).IsZero() {
		t.Fatalf("Mul(a, 0) should be zero")
	}
}

func TestNegCancels(t *testing.T) {
	a := FromInt64(7)
	if !Add(a, Neg(a)).IsZero() {
		t.Fatalf("a + (-a) should be zero")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	a := FromInt64(999999)
	raw := a.Bytes()
	b := FromBytes(raw[:])
	if !Equal(a, b) {
		t.Fatalf("FromBytes(a.Bytes()) = %s, want %s", b.String(), a.String())
	}
}

func TestFromBigIntReducesModP(t *testing.T) {
	p := Modulus()
	x := new(big.Int).Add(p, big.NewInt(5))
	e := FromBigInt(x)
	if e.String() != "5" {
		t.Fatalf("FromBigInt(p+5) = %s, want 5", e.String())
	}
}

func TestRandomIsNotTriviallyRepeating(t *testing.T) {
	a, err := Random()
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	b, err := Random()
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if Equal(a, b) {
		t.Fatalf("two independent Random() draws collided, overwhelmingly unlikely")
	}
}

func TestCmpOrdersByCanonicalValue(t *testing.T) {
	a := FromInt64(3)
	b := FromInt64(5)
	if Cmp(a, b) >= 0 {
		t.Fatalf("Cmp(3, 5) should be negative")
	}
	if Cmp(b, a) <= 0 {
		t.Fatalf("Cmp(5, 3) should be positive")
	}
	if Cmp(a, a) != 0 {
		t.Fatalf("Cmp(a, a) should be zero")
	}
}
