package linalg

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"
	"testing"

	"github.com/san-kum/bifsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

func randomMatrix(rng *rand.Rand, n int) Matrix {
	m := NewMatrix(n, n)
	for i := range m {
		for j := range m[i] {
			m[i][j] = rng.Float64()*2 - 1
		}
	}
	return m
}

func diagonallyDominant(rng *rand.Rand, n int) Matrix {
	m := randomMatrix(rng, n)
	for i := range m {
		m[i][i] += float64(n) + 1
	}
	return m
}

func toDense(m Matrix) *mat.Dense {
	n := len(m)
	data := make([]float64, 0, n*m.Cols())
	for _, row := range m {
		data = append(data, row...)
	}
	return mat.NewDense(n, m.Cols(), data)
}

func sortComplex(v []complex128) []complex128 {
	out := append([]complex128(nil), v...)
	sort.Slice(out, func(i, j int) bool {
		if math.Abs(real(out[i])-real(out[j])) > 1e-9 {
			return real(out[i]) < real(out[j])
		}
		return imag(out[i]) < imag(out[j])
	})
	return out
}

func TestSolveRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n <= 8; n++ {
		for trial := 0; trial < 5; trial++ {
			a := diagonallyDominant(rng, n)
			b := make([]float64, n)
			for i := range b {
				b[i] = rng.Float64()*10 - 5
			}

			x, err := Solve(a, b)
			if err != nil {
				t.Fatalf("n=%d: solve failed: %v", n, err)
			}
			ax := a.MulVec(x)
			for i := range b {
				if math.Abs(ax[i]-b[i]) > 1e-10 {
					t.Errorf("n=%d: (Ax)[%d] = %.12f, want %.12f", n, i, ax[i], b[i])
				}
			}
		}
	}
}

func TestSolveMatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := randomMatrix(rng, 6)
	b := []float64{1, -2, 3, -4, 5, -6}

	x, err := Solve(a, b)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	var want mat.VecDense
	if err := want.SolveVec(toDense(a), mat.NewVecDense(len(b), b)); err != nil {
		t.Fatalf("gonum solve failed: %v", err)
	}
	for i := range x {
		if math.Abs(x[i]-want.AtVec(i)) > 1e-8 {
			t.Errorf("x[%d] = %.10f, gonum %.10f", i, x[i], want.AtVec(i))
		}
	}
}

func TestSolveDoesNotModifyInputs(t *testing.T) {
	a := Matrix{{0, 1}, {2, 3}}
	b := []float64{1, 5}
	orig := a.Clone()

	if _, err := Solve(a, b); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if a.MaxAbsDiff(orig) != 0 || b[0] != 1 || b[1] != 5 {
		t.Error("Solve modified its inputs")
	}
}

func TestSolveSingular(t *testing.T) {
	tests := []struct {
		name string
		a    Matrix
	}{
		{"zero", Matrix{{0, 0}, {0, 0}}},
		{"dependent rows", Matrix{{1, 2}, {2, 4}}},
		{"tiny pivot", Matrix{{1e-16, 0}, {0, 1e-17}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.a, []float64{1, 1})
			if !errors.Is(err, dynamo.ErrSingularJacobian) {
				t.Errorf("expected ErrSingularJacobian, got %v", err)
			}
		})
	}
}

func TestSolveDimensionMismatch(t *testing.T) {
	_, err := Solve(Matrix{{1, 2}, {3, 4}}, []float64{1})
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestQROrthogonalityAndReconstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for n := 1; n <= 8; n++ {
		a := randomMatrix(rng, n)
		q, r := QR(a)

		if d := q.Transpose().Mul(q).MaxAbsDiff(Identity(n)); d > 1e-10 {
			t.Errorf("n=%d: QᵀQ deviates from I by %e", n, d)
		}
		if d := q.Mul(r).MaxAbsDiff(a); d > 1e-10 {
			t.Errorf("n=%d: QR deviates from A by %e", n, d)
		}
		for i := 1; i < n; i++ {
			for j := 0; j < i; j++ {
				if r[i][j] != 0 {
					t.Errorf("n=%d: R[%d][%d] = %e, want 0", n, i, j, r[i][j])
				}
			}
		}
	}
}

func TestQRRankDeficient(t *testing.T) {
	a := Matrix{{1, 2, 3}, {2, 4, 6}, {1, 0, 1}}
	q, r := QR(a)

	if d := q.Transpose().Mul(q).MaxAbsDiff(Identity(3)); d > 1e-10 {
		t.Errorf("QᵀQ deviates from I by %e", d)
	}
	if d := q.Mul(r).MaxAbsDiff(a); d > 1e-10 {
		t.Errorf("QR deviates from A by %e", d)
	}
}

func TestEigenvaluesSmall(t *testing.T) {
	tests := []struct {
		name string
		a    Matrix
		want []complex128
	}{
		{"empty", Matrix{}, nil},
		{"scalar", Matrix{{-3}}, []complex128{-3}},
		{"diagonal", Matrix{{2, 0}, {0, 3}}, []complex128{2, 3}},
		{"rotation", Matrix{{0, -1}, {1, 0}}, []complex128{complex(0, -1), complex(0, 1)}},
		{"repeated", Matrix{{1, 1}, {0, 1}}, []complex128{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sortComplex(Eigenvalues(tt.a))
			want := sortComplex(tt.want)
			if len(got) != len(want) {
				t.Fatalf("got %d eigenvalues, want %d", len(got), len(want))
			}
			for i := range got {
				if cmplx.Abs(got[i]-want[i]) > 1e-12 {
					t.Errorf("eigenvalue %d = %v, want %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestEigenvaluesMatchGonum(t *testing.T) {
	tests := []struct {
		name string
		a    Matrix
	}{
		{"symmetric tridiagonal", Matrix{{2, 1, 0}, {1, 3, 1}, {0, 1, 4}}},
		{"upper triangular", Matrix{{1, 5, -2}, {0, -2, 3}, {0, 0, 4}}},
		{"complex block", Matrix{{-1, -2, 0}, {2, -1, 0}, {0, 0, -5}}},
		{"symmetric 4x4", Matrix{{4, 1, 0, 0}, {1, 3, 1, 0}, {0, 1, 2, 1}, {0, 0, 1, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var eig mat.Eigen
			if ok := eig.Factorize(toDense(tt.a), mat.EigenNone); !ok {
				t.Fatal("gonum eigen factorization failed")
			}
			want := sortComplex(eig.Values(nil))
			got := sortComplex(Eigenvalues(tt.a))

			if len(got) != len(tt.a) {
				t.Fatalf("got %d eigenvalues for %d rows", len(got), len(tt.a))
			}
			for i := range got {
				if cmplx.Abs(got[i]-want[i]) > 1e-6 {
					t.Errorf("eigenvalue %d = %v, gonum %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestEigenvaluesConjugatePairs(t *testing.T) {
	a := Matrix{{-1, -2, 0}, {2, -1, 0}, {0, 0, -5}}
	eigs := Eigenvalues(a)

	var complexOnes []complex128
	for _, e := range eigs {
		if imag(e) != 0 {
			complexOnes = append(complexOnes, e)
		}
	}
	if len(complexOnes) != 2 {
		t.Fatalf("expected one conjugate pair, got %v", eigs)
	}
	if real(complexOnes[0]) != real(complexOnes[1]) || imag(complexOnes[0]) != -imag(complexOnes[1]) {
		t.Errorf("pair is not conjugate: %v", complexOnes)
	}
}

func TestParseMatrix(t *testing.T) {
	m, err := ParseMatrix("1, 2; 3,4")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.MaxAbsDiff(Matrix{{1, 2}, {3, 4}}) != 0 {
		t.Errorf("parsed %v", m)
	}

	if _, err := ParseMatrix("1,x"); err == nil {
		t.Error("expected error for bad entry")
	}
}

func TestEigenvaluesRotatedComplexBlock(t *testing.T) {
	c, s := math.Cos(0.7), math.Sin(0.7)
	p := Matrix{{c, -s, 0}, {0.6 * s, 0.6 * c, 0.8}, {0.8 * s, 0.8 * c, -0.6}}
	d := Matrix{{-1, -2, 0}, {2, -1, 0}, {0, 0, -5}}
	a := p.Mul(d).Mul(p.Transpose())

	got := sortComplex(Eigenvalues(a))
	want := []complex128{-5, complex(-1, -2), complex(-1, 2)}
	for i := range want {
		if cmplx.Abs(got[i]-want[i]) > 1e-8 {
			t.Errorf("eigenvalue %d = %v, want %v", i, got[i], want[i])
		}
	}
}
