package basis

import (
	"fmt"
	"strings"
)

// Family identifies the trial/test function space of a Galerkin operator
type Family uint8

const (
	Chebyshev  Family = iota // T_k, no boundary conditions
	Dirichlet                // T_k - T_{k+2}
	Neumann                  // T_k - (k/(k+2))^2 T_{k+2}
	Biharmonic               // T_k - 2(k+2)/(k+3) T_{k+2} + (k+1)/(k+3) T_{k+4}
)

// Letter returns the single letter used in operator names (BDD, CTD, ...)
func (f Family) Letter() string {
	switch f {
	case Chebyshev:
		return "T"
	case Dirichlet:
		return "D"
	case Neumann:
		return "N"
	case Biharmonic:
		return "B"
	}
	return "?"
}

func (f Family) String() string {
	switch f {
	case Chebyshev:
		return "Chebyshev"
	case Dirichlet:
		return "Dirichlet"
	case Neumann:
		return "Neumann"
	case Biharmonic:
		return "Biharmonic"
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// ParseFamily accepts either the operator letter or the full name
func ParseFamily(s string) (Family, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "T", "CHEBYSHEV":
		return Chebyshev, nil
	case "D", "DIRICHLET":
		return Dirichlet, nil
	case "N", "NEUMANN":
		return Neumann, nil
	case "B", "BIHARMONIC":
		return Biharmonic, nil
	}
	return 0, fmt.Errorf("basis: unknown family %q", s)
}

// Reduction is the number of modes removed by the boundary conditions
func (f Family) Reduction() int {
	switch f {
	case Dirichlet, Neumann:
		return 2
	case Biharmonic:
		return 4
	}
	return 0
}

// EffectiveSize returns the number of basis functions available from N
// Chebyshev modes.
func (f Family) EffectiveSize(N int) int {
	return N - f.Reduction()
}

// Basis pairs a function family with the quadrature used to project onto it
type Basis struct {
	Family Family
	Quad   Quadrature
}

func (b Basis) String() string {
	return b.Family.String() + "/" + b.Quad.String()
}

func (b Basis) EffectiveSize(N int) int {
	return b.Family.EffectiveSize(N)
}

// InnerProduct describes the weighted inner product (d^k u/dx^k, v)_w
// between a trial and a test basis on N Chebyshev modes.
type InnerProduct struct {
	Trial      Basis
	Derivative int
	Test       Basis
	N          int
	Scale      float64
}

// Shape is (test size, trial size)
func (p InnerProduct) Shape() (rows, cols int) {
	return p.Test.EffectiveSize(p.N), p.Trial.EffectiveSize(p.N)
}

// Name follows the operator naming used throughout the package tree: a
// letter for the derivative order followed by the test and trial letters.
func (p InnerProduct) Name() string {
	var prefix string
	switch p.Derivative {
	case 0:
		prefix = "B"
	case 1:
		prefix = "C"
	case 2:
		prefix = "A"
	case 4:
		prefix = "S"
	default:
		prefix = fmt.Sprintf("D%d", p.Derivative)
	}
	return prefix + p.Test.Family.Letter() + p.Trial.Family.Letter()
}

// Validate checks that both bases keep at least one function and the
// derivative order is sensible.
func (p InnerProduct) Validate() error {
	if p.N < 1 {
		return fmt.Errorf("basis: N must be positive, got %d", p.N)
	}
	if p.Derivative < 0 {
		return fmt.Errorf("basis: negative derivative order %d", p.Derivative)
	}
	rows, cols := p.Shape()
	if rows < 1 || cols < 1 {
		return fmt.Errorf("basis: %s has empty shape (%d,%d) for N=%d",
			p.Name(), rows, cols, p.N)
	}
	return nil
}
