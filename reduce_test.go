package parfor

import "testing"

func TestCustomOp_RejectsNonCommutativeOperators(t *testing.T) {
	_, err := CustomOp(func(a, b int) int { return a - b }, 0, NotCommutative)
	if err == nil {
		t.Fatal("expected an error for a reduction not declared Commutative")
	}
}

func TestCustomOp_AcceptsCommutativeOperators(t *testing.T) {
	max, err := CustomOp(func(a, b int) int {
		if a > b {
			return a
		}
		return b
	}, 0, Commutative)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if max.fn(3, 7) != 7 {
		t.Errorf("expected max(3, 7) = 7")
	}
}

func TestSum_IdentityIsZero(t *testing.T) {
	r := Sum[int]()
	if r.identity != 0 {
		t.Errorf("expected identity 0, got %d", r.identity)
	}
}

func TestProduct_IdentityIsOne(t *testing.T) {
	r := Product[int]()
	if r.identity != 1 {
		t.Errorf("expected identity 1, got %d", r.identity)
	}
}

func TestAnd_IdentityIsAllOnes(t *testing.T) {
	r := And[uint8]()
	if r.identity != 0xFF {
		t.Errorf("expected identity 0xFF, got %#x", r.identity)
	}
}

func TestLogicalAnd_IdentityIsTrue(t *testing.T) {
	if !LogicalAnd().identity {
		t.Error("expected identity true")
	}
}

func TestLogicalOr_IdentityIsFalse(t *testing.T) {
	if LogicalOr().identity {
		t.Error("expected identity false")
	}
}
