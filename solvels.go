// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solve the observation equation using weighted least squares
// - dx = (G^t W G)^-1 G^t W dr
// - Return the error covariance matrix (G^t W G)^-1 as cov
// - W == nil means equal weights
func SolveLS(G mat.Matrix, dr mat.Vector, W mat.Matrix) (dx mat.Vector, cov mat.Matrix, err error) {

	n1, m1 := G.Dims()
	if W == nil {
		W = identity(n1)
	}
	n2, m2 := W.Dims()
	if n1 != n2 {
		return nil, nil, fmt.Errorf("invalid matrix size. G^T(%d x %d), W(%d x %d)", m1, n1, n2, m2)
	}
	l1 := dr.Len()
	if l1 != m2 {
		return nil, nil, fmt.Errorf("invalid matrix size. W(%d x %d), dr(%d x 1)", n2, m2, l1)
	}

	// A（G^t W G)
	var WG mat.Dense
	WG.Mul(W, G)
	var A mat.Dense
	A.Mul(G.T(), &WG)

	// b（G^t W dr）
	var GtW mat.Dense
	GtW.Mul(G.T(), W)
	var b mat.VecDense
	b.MulVec(&GtW, dr)

	// Solve for x (x = A^-1 b)
	var x mat.VecDense
	err = x.SolveVec(&A, &b)
	if err != nil {
		return nil, nil, err
	}
	dx = &x

	// Set (G^T W G)^-1 as the covariance matrix
	var c mat.Dense
	err = c.Inverse(&A)
	if err != nil {
		return nil, nil, err
	}
	cov = &c

	return
}

func identity(n int) mat.Matrix {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1
	}
	return mat.NewDiagDense(n, d)
}

// MatrixRank returns the number of singular values of A greater than tol.
// If tol <= 0, max(m, n) * smax * eps is used.
func MatrixRank(A mat.Matrix, tol float64) int {
	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDNone) {
		return 0
	}

	// Retrieve singular values (descending order)
	s := svd.Values(nil)
	if len(s) == 0 {
		return 0
	}
	if tol <= 0 {
		r, c := A.Dims()
		tol = float64(max(r, c)) * s[0] * eps
	}

	// Count singular values that are greater than tol
	rank := 0
	for _, v := range s {
		if v > tol {
			rank++
		}
	}
	return rank
}

// Machine epsilon for float64
var eps = math.Nextafter(1, 2) - 1

// Dilution of precision
type Dop struct {
	GDOP float64
	PDOP float64
	HDOP float64
	VDOP float64
	TDOP float64
}

// Values in the order GDOP, PDOP, HDOP, VDOP, TDOP
func (d Dop) Slice() []float64 {
	return []float64{d.GDOP, d.PDOP, d.HDOP, d.VDOP, d.TDOP}
}

// CalcDop computes DOP values from the n x 4 design matrix G (X, Y, Z, clock)
func CalcDop(G mat.Matrix) (Dop, error) {
	_, c := G.Dims()
	if c != 4 {
		return Dop{}, fmt.Errorf("invalid matrix size. G has %d columns, want 4", c)
	}
	var GtG mat.Dense
	GtG.Mul(G.T(), G)
	var Q mat.Dense
	if err := Q.Inverse(&GtG); err != nil {
		return Dop{}, fmt.Errorf("failed to calculate inverse of matrix, G^T G: %w", err)
	}
	return Dop{
		GDOP: math.Sqrt(mat.Trace(&Q)),
		PDOP: math.Sqrt(Q.At(0, 0) + Q.At(1, 1) + Q.At(2, 2)),
		HDOP: math.Sqrt(Q.At(0, 0) + Q.At(1, 1)),
		VDOP: math.Sqrt(Q.At(2, 2)),
		TDOP: math.Sqrt(Q.At(3, 3)),
	}, nil
}
