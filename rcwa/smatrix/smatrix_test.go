package smatrix

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-rcwa/internal/cmat"
	"github.com/cwbudde/algo-rcwa/internal/testutil"
)

func randomBlock(seed int64, n int, scale complex128) *cmat.Dense {
	return cmat.Scale(scale, cmat.NewFromData(n, n, testutil.DeterministicComplex(seed, n*n)))
}

func randomMatrix(seed int64, n int) *Matrix {
	return &Matrix{
		S11: randomBlock(seed, n, 0.2),
		S12: randomBlock(seed+1, n, 0.5),
		S21: randomBlock(seed+2, n, 0.5),
		S22: randomBlock(seed+3, n, 0.2),
	}
}

func TestUnity(t *testing.T) {
	u := Unity(4)
	if u.Dim() != 4 {
		t.Fatalf("Dim = %d, want 4", u.Dim())
	}
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !cmat.EqualApprox(u.S12, cmat.Identity(4), 0) || !cmat.EqualApprox(u.S11, cmat.New(4, 4), 0) {
		t.Fatal("unity blocks are wrong")
	}
}

func TestStarWithUnityIsIdentity(t *testing.T) {
	m := randomMatrix(10, 6)
	u := Unity(6)

	left, err := Star(u, m)
	if err != nil {
		t.Fatalf("Star(u, m): %v", err)
	}
	right, err := Star(m, u)
	if err != nil {
		t.Fatalf("Star(m, u): %v", err)
	}

	if d := MaxAbsDiff(left, m); d > 1e-12 {
		t.Fatalf("u ★ m differs from m by %g", d)
	}
	if d := MaxAbsDiff(right, m); d > 1e-12 {
		t.Fatalf("m ★ u differs from m by %g", d)
	}
}

func TestStarIsAssociative(t *testing.T) {
	a := randomMatrix(20, 5)
	b := randomMatrix(30, 5)
	c := randomMatrix(40, 5)

	ab, err := Star(a, b)
	if err != nil {
		t.Fatal(err)
	}
	abc1, err := Star(ab, c)
	if err != nil {
		t.Fatal(err)
	}
	bc, err := Star(b, c)
	if err != nil {
		t.Fatal(err)
	}
	abc2, err := Star(a, bc)
	if err != nil {
		t.Fatal(err)
	}

	if d := MaxAbsDiff(abc1, abc2); d > 1e-10 {
		t.Fatalf("(a★b)★c differs from a★(b★c) by %g", d)
	}
}

func TestStarIsNotCommutative(t *testing.T) {
	a := randomMatrix(50, 3)
	b := randomMatrix(60, 3)

	ab, err := Star(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Star(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if d := MaxAbsDiff(ab, ba); d < 1e-6 {
		t.Fatalf("a★b and b★a agree to %g", d)
	}
}

func TestStarDimensionMismatch(t *testing.T) {
	_, err := Star(Unity(2), Unity(4))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}

	broken := Unity(2)
	broken.S21 = cmat.Identity(3)
	if _, err := Star(broken, Unity(2)); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestStarSingular(t *testing.T) {
	// I - B.S11·A.S22 = 0
	a := Unity(2)
	a.S22 = cmat.Identity(2)
	b := Unity(2)
	b.S11 = cmat.Identity(2)

	if _, err := Star(a, b); !errors.Is(err, cmat.ErrSingular) {
		t.Fatalf("err = %v, want cmat.ErrSingular", err)
	}
}

func TestCascadeMatchesNestedStar(t *testing.T) {
	a := randomMatrix(70, 4)
	b := randomMatrix(80, 4)
	c := randomMatrix(90, 4)

	got, err := Cascade(a, b, c)
	if err != nil {
		t.Fatal(err)
	}
	ab, _ := Star(a, b)
	want, _ := Star(ab, c)

	if d := MaxAbsDiff(got, want); d > 1e-14 {
		t.Fatalf("Cascade differs from nested Star by %g", d)
	}

	if _, err := Cascade(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := randomMatrix(100, 2)
	c := m.Clone()
	c.S11.Set(0, 0, 42)
	if m.S11.At(0, 0) == 42 {
		t.Fatal("Clone shares storage with the original")
	}
}
