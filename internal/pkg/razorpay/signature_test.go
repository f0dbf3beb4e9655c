package razorpay

import "testing"

func TestComputeSignature_Deterministic(t *testing.T) {
	a := ComputeSignature("order_123", "pay_456", "secret")
	b := ComputeSignature("order_123", "pay_456", "secret")
	if a != b {
		t.Fatalf("signature not deterministic: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestComputeSignature_InputsMatter(t *testing.T) {
	base := ComputeSignature("order_123", "pay_456", "secret")

	if ComputeSignature("order_124", "pay_456", "secret") == base {
		t.Fatal("different order id must change the signature")
	}
	if ComputeSignature("order_123", "pay_457", "secret") == base {
		t.Fatal("different payment id must change the signature")
	}
	if ComputeSignature("order_123", "pay_456", "other") == base {
		t.Fatal("different secret must change the signature")
	}
	// The pipe separator must be unambiguous: shifting a character across it
	// changes the digest.
	if ComputeSignature("order_123p", "ay_456", "secret") == base {
		t.Fatal("separator ambiguity detected")
	}
}

func TestVerifySignature(t *testing.T) {
	sig := ComputeSignature("order_123", "pay_456", "secret")

	if !VerifySignature(sig, sig) {
		t.Fatal("expected matching signatures to verify")
	}
	if !VerifySignature(sig, "  "+sig+" ") {
		t.Fatal("expected whitespace-trimmed comparison")
	}
	if VerifySignature(sig, sig[:len(sig)-1]+"0") {
		t.Fatal("expected tampered signature to fail")
	}
	if VerifySignature(sig, "") {
		t.Fatal("expected empty signature to fail")
	}
	if VerifySignature("", "") {
		t.Fatal("expected two empty signatures to fail")
	}
}

func TestVerifySignature_CaseInsensitive(t *testing.T) {
	if !VerifySignature("aBcD12", "ABcd12") {
		t.Fatal("expected case-insensitive constant-time comparison")
	}
}
