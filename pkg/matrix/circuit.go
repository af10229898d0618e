// Package matrix wraps the sparse LU solver for complex nodal systems.
//
// An n-unknown complex system A x = b is solved as the real 2n system
//
//	[ Re(A)  -Im(A) ] [ Re(x) ]   [ Re(b) ]
//	[ Im(A)   Re(A) ] [ Im(x) ] = [ Im(b) ]
//
// so only the real factorization path of the solver is used.
package matrix

import (
	"fmt"
	"io"

	"github.com/edp1096/sparse"
)

type CircuitMatrix struct {
	Size     int // complex unknowns
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	config   *sparse.Configuration
}

func NewMatrix(size int) (*CircuitMatrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("matrix size must be positive, got %d", size)
	}

	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               true,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(2*size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	vectorSize := 2*size + 1 // 1-based indexing
	return &CircuitMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, vectorSize),
		solution: make([]float64, vectorSize),
		config:   config,
	}, nil
}

func (m *CircuitMatrix) inBounds(i, j int) bool {
	return i > 0 && j > 0 && i <= m.Size && j <= m.Size
}

func (m *CircuitMatrix) AddComplexElement(i, j int, real, imag float64) {
	if !m.inBounds(i, j) {
		return
	}
	n := m.Size
	if real != 0 {
		m.matrix.GetElement(int64(i), int64(j)).Real += real
		m.matrix.GetElement(int64(i+n), int64(j+n)).Real += real
	}
	if imag != 0 {
		m.matrix.GetElement(int64(i), int64(j+n)).Real -= imag
		m.matrix.GetElement(int64(i+n), int64(j)).Real += imag
	}
}

func (m *CircuitMatrix) AddComplexRHS(i int, real, imag float64) {
	if !m.inBounds(i, i) {
		return
	}
	m.rhs[i] += real
	m.rhs[i+m.Size] += imag
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

func (m *CircuitMatrix) Solve() error {
	var err error

	m.matrix.MNAPreorder()
	err = m.matrix.Factor()
	if err != nil {
		return fmt.Errorf("matrix factorization failed: %w", err)
	}

	m.solution, err = m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}
	return nil
}

// GetComplexSolution returns unknown i of the complex system.
func (m *CircuitMatrix) GetComplexSolution(i int) (float64, float64) {
	if i <= 0 || i > m.Size || len(m.solution) <= i+m.Size {
		return 0, 0
	}
	return m.solution[i], m.solution[i+m.Size]
}

// PrintSystem writes the non-zero coefficients of the complex system. Call
// it before Solve; factorization overwrites the coefficients in place.
func (m *CircuitMatrix) PrintSystem(w io.Writer) {
	n := m.Size
	fmt.Fprintf(w, "Circuit equations (%dx%d complex):\n", n, n)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(w, "  eq %d:", i)
		for j := 1; j <= n; j++ {
			re := m.matrix.GetElement(int64(i), int64(j)).Real
			im := m.matrix.GetElement(int64(i+n), int64(j)).Real
			if re == 0 && im == 0 {
				continue
			}
			fmt.Fprintf(w, " (%g%+gj)*x%d", re, im, j)
		}
		fmt.Fprintf(w, " = %g%+gj\n", m.rhs[i], m.rhs[i+n])
	}
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
