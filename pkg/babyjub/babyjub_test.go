package babyjub

import (
	"testing"

	"github.com/MuriData/maci-core/pkg/field"
)

func TestPublicKeyMatchesScalarMulBase(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	want := scalarMulBase(prune(kp.Priv.Element()))
	if !kp.Pub.Equal(want) {
		t.Fatalf("Public() disagrees with scalarMulBase(prune(priv))")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	msg := field.FromInt64(12345)
	sig := Sign(kp.Priv, msg)

	if !Verify(kp.Pub, msg, sig) {
		t.Fatalf("Verify should accept a freshly produced signature")
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	msg := field.FromInt64(12345)
	sig := Sign(kp.Priv, msg)

	tampered := field.FromInt64(12346)
	if Verify(kp.Pub, tampered, sig) {
		t.Fatalf("Verify should reject a tampered message")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	msg := field.FromInt64(12345)
	sig := Sign(kp.Priv, msg)
	sig.S = field.Add(sig.S, field.FromInt64(1))

	if Verify(kp.Pub, msg, sig) {
		t.Fatalf("Verify should reject a tampered S")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	kp1, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	kp2, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	msg := field.FromInt64(12345)
	sig := Sign(kp1.Priv, msg)

	if Verify(kp2.Pub, msg, sig) {
		t.Fatalf("Verify should reject a signature under a different key")
	}
}

func TestECDHSymmetry(t *testing.T) {
	a, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	b, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}

	ab := SharedKey(a.Priv, b.Pub)
	ba := SharedKey(b.Priv, a.Pub)

	if !field.Equal(ab, ba) {
		t.Fatalf("SharedKey(a,b) = %s, SharedKey(b,a) = %s, want equal", ab.String(), ba.String())
	}
}

func TestZeroPubKeyIsZero(t *testing.T) {
	blank := PubKey{X: field.Zero(), Y: field.Zero()}
	if !blank.IsZero() {
		t.Fatalf("(0,0) should report IsZero")
	}
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	if kp.Pub.IsZero() {
		t.Fatalf("a freshly generated public key should not be (0,0)")
	}
}
