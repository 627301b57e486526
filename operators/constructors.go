package operators

import "github.com/notargets/ShenKernel/basis"

// NewBDD builds the mass matrix (phi_j, phi_k) of the Dirichlet basis.
func NewBDD(N int, quad basis.Quadrature) (*Operator, error) { return New("BDD", N, quad) }

// NewBND builds (phi_j, psi_k) with a Dirichlet trial and a Neumann test basis.
func NewBND(N int, quad basis.Quadrature) (*Operator, error) { return New("BND", N, quad) }

func NewBDN(N int, quad basis.Quadrature) (*Operator, error) { return New("BDN", N, quad) }

// NewBTT builds the Chebyshev mass matrix.
func NewBTT(N int, quad basis.Quadrature) (*Operator, error) { return New("BTT", N, quad) }

// NewBNN builds the mass matrix of the Neumann basis.
func NewBNN(N int, quad basis.Quadrature) (*Operator, error) { return New("BNN", N, quad) }

func NewBDT(N int, quad basis.Quadrature) (*Operator, error) { return New("BDT", N, quad) }

// NewBTD builds (phi_j, T_k) with a Dirichlet trial and a Chebyshev test basis.
func NewBTD(N int, quad basis.Quadrature) (*Operator, error) { return New("BTD", N, quad) }

// NewBTN builds (psi_j, T_k) with a Neumann trial and a Chebyshev test basis.
func NewBTN(N int, quad basis.Quadrature) (*Operator, error) { return New("BTN", N, quad) }

func NewBBB(N int, quad basis.Quadrature) (*Operator, error) { return New("BBB", N, quad) }

// NewBBD builds (phi_j, psi_k) with a Dirichlet trial and a biharmonic test basis.
func NewBBD(N int, quad basis.Quadrature) (*Operator, error) { return New("BBD", N, quad) }

// NewCDN builds (psi_j', phi_k) with a Neumann trial and a Dirichlet test basis.
func NewCDN(N int, quad basis.Quadrature) (*Operator, error) { return New("CDN", N, quad) }

func NewCDD(N int, quad basis.Quadrature) (*Operator, error) { return New("CDD", N, quad) }

// NewCND builds (phi_j', psi_k) with a Dirichlet trial and a Neumann test basis.
func NewCND(N int, quad basis.Quadrature) (*Operator, error) { return New("CND", N, quad) }

// NewCTD builds (phi_j', T_k) with a Dirichlet trial and a Chebyshev test basis.
func NewCTD(N int, quad basis.Quadrature) (*Operator, error) { return New("CTD", N, quad) }

func NewCDT(N int, quad basis.Quadrature) (*Operator, error) { return New("CDT", N, quad) }

// NewCBD builds (phi_j', psi_k) with a Dirichlet trial and a biharmonic test basis.
func NewCBD(N int, quad basis.Quadrature) (*Operator, error) { return New("CBD", N, quad) }

// NewCDB builds (psi_j', phi_k) with a biharmonic trial and a Dirichlet test basis.
func NewCDB(N int, quad basis.Quadrature) (*Operator, error) { return New("CDB", N, quad) }

func NewABB(N int, quad basis.Quadrature) (*Operator, error) { return New("ABB", N, quad) }

// NewADD builds -(phi_j”, phi_k) of the Dirichlet basis.
func NewADD(N int, quad basis.Quadrature) (*Operator, error) { return New("ADD", N, quad) }

// NewANN builds -(psi_j”, psi_k) of the Neumann basis.
func NewANN(N int, quad basis.Quadrature) (*Operator, error) { return New("ANN", N, quad) }

func NewATT(N int, quad basis.Quadrature) (*Operator, error) { return New("ATT", N, quad) }

// NewSBB builds (psi_j””, psi_k) of the biharmonic basis.
func NewSBB(N int, quad basis.Quadrature) (*Operator, error) { return New("SBB", N, quad) }
