package linalg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Matrix is a dense row-major matrix.
type Matrix [][]float64

// NewMatrix returns a zero rows x cols matrix.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m[i][i] = 1.0
	}
	return m
}

func (m Matrix) Rows() int { return len(m) }

func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// IsSquare reports whether every row has exactly Rows() entries.
func (m Matrix) IsSquare() bool {
	n := len(m)
	for _, row := range m {
		if len(row) != n {
			return false
		}
	}
	return true
}

func (m Matrix) Clone() Matrix {
	c := make(Matrix, len(m))
	for i, row := range m {
		c[i] = make([]float64, len(row))
		copy(c[i], row)
	}
	return c
}

// Mul returns m·o. Callers guarantee m.Cols() == o.Rows().
func (m Matrix) Mul(o Matrix) Matrix {
	res := NewMatrix(m.Rows(), o.Cols())
	for i := range m {
		for k, mik := range m[i] {
			if mik == 0 {
				continue
			}
			for j := range o[k] {
				res[i][j] += mik * o[k][j]
			}
		}
	}
	return res
}

// MulVec returns m·v.
func (m Matrix) MulVec(v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		sum := 0.0
		for j, a := range row {
			if j < len(v) {
				sum += a * v[j]
			}
		}
		out[i] = sum
	}
	return out
}

func (m Matrix) Transpose() Matrix {
	res := NewMatrix(m.Cols(), m.Rows())
	for i := range m {
		for j := range m[i] {
			res[j][i] = m[i][j]
		}
	}
	return res
}

// MaxAbsDiff returns the largest entrywise difference between m and o.
func (m Matrix) MaxAbsDiff(o Matrix) float64 {
	worst := 0.0
	for i := range m {
		for j := range m[i] {
			if d := math.Abs(m[i][j] - o[i][j]); d > worst {
				worst = d
			}
		}
	}
	return worst
}

func (m Matrix) String() string {
	var sb strings.Builder
	for _, row := range m {
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%12.6g", v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseMatrix reads "a,b;c,d" into a matrix.
func ParseMatrix(s string) (Matrix, error) {
	rows := strings.Split(strings.TrimSpace(s), ";")
	m := make(Matrix, 0, len(rows))
	for i, r := range rows {
		fields := strings.Split(r, ",")
		row := make([]float64, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad entry %q: %w", i, f, err)
			}
			row = append(row, v)
		}
		m = append(m, row)
	}
	return m, nil
}
