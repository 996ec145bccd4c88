// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// Design matrix with G^T G = diag(2, 2, 2, 6)
func symmetricG() *mat.Dense {
	return mat.NewDense(6, 4, []float64{
		1, 0, 0, 1,
		-1, 0, 0, 1,
		0, 1, 0, 1,
		0, -1, 0, 1,
		0, 0, 1, 1,
		0, 0, -1, 1,
	})
}

func TestCalcDop(t *testing.T) {
	dop, err := CalcDop(symmetricG())
	require.NoError(t, err)

	// Q = diag(1/2, 1/2, 1/2, 1/6)
	assert.InDelta(t, math.Sqrt(1.5+1.0/6), dop.GDOP, 1e-12)
	assert.InDelta(t, math.Sqrt(1.5), dop.PDOP, 1e-12)
	assert.InDelta(t, 1.0, dop.HDOP, 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), dop.VDOP, 1e-12)
	assert.InDelta(t, math.Sqrt(1.0/6), dop.TDOP, 1e-12)
	assert.Equal(t, []float64{dop.GDOP, dop.PDOP, dop.HDOP, dop.VDOP, dop.TDOP}, dop.Slice())
}

func TestCalcDopGeneral(t *testing.T) {
	G := mat.NewDense(5, 4, []float64{
		0.2, -0.5, 0.84, 1,
		-0.7, 0.1, 0.7, 1,
		0.6, 0.6, 0.5, 1,
		-0.1, -0.9, 0.4, 1,
		0.9, -0.2, 0.38, 1,
	})
	dop, err := CalcDop(G)
	require.NoError(t, err)

	// Reference Q by solving (G^T G) Q = I with QR
	var GtG mat.Dense
	GtG.Mul(G.T(), G)
	var qr mat.QR
	qr.Factorize(&GtG)
	var Q mat.Dense
	require.NoError(t, qr.SolveTo(&Q, false, identity(4)))

	assert.InDelta(t, math.Sqrt(Q.At(0, 0)+Q.At(1, 1)+Q.At(2, 2)+Q.At(3, 3)), dop.GDOP, 1e-9)
	assert.InDelta(t, math.Sqrt(Q.At(0, 0)+Q.At(1, 1)+Q.At(2, 2)), dop.PDOP, 1e-9)
	assert.InDelta(t, math.Sqrt(Q.At(0, 0)+Q.At(1, 1)), dop.HDOP, 1e-9)
	assert.InDelta(t, math.Sqrt(Q.At(2, 2)), dop.VDOP, 1e-9)
	assert.InDelta(t, math.Sqrt(Q.At(3, 3)), dop.TDOP, 1e-9)
}

func TestCalcDopInvalid(t *testing.T) {
	_, err := CalcDop(mat.NewDense(4, 3, nil))
	assert.Error(t, err)

	// Singular G^T G
	_, err = CalcDop(mat.NewDense(4, 4, nil))
	assert.Error(t, err)
}

func TestSolveLS(t *testing.T) {
	G := symmetricG()
	x := []float64{1, -2, 3, 4}
	var dr mat.VecDense
	dr.MulVec(G, mat.NewVecDense(4, x))

	dx, cov, err := SolveLS(G, &dr, nil)
	require.NoError(t, err)
	for i := range x {
		assert.InDelta(t, x[i], dx.AtVec(i), 1e-12)
	}
	assert.InDelta(t, 0.5, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0/6, cov.At(3, 3), 1e-12)

	// Equal weights give the same solution
	dx2, _, err := SolveLS(G, &dr, identity(6))
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(dx, dx2, 1e-12))
}

func TestSolveLSInvalidSize(t *testing.T) {
	G := symmetricG()
	_, _, err := SolveLS(G, mat.NewVecDense(6, nil), identity(5))
	assert.Error(t, err)
	_, _, err = SolveLS(G, mat.NewVecDense(5, nil), nil)
	assert.Error(t, err)
}

func TestMatrixRank(t *testing.T) {
	assert.Equal(t, 4, MatrixRank(symmetricG(), 0))
	assert.Equal(t, 3, MatrixRank(symmetricG().Slice(0, 3, 0, 4), 0))

	// Two identical columns
	A := mat.NewDense(5, 4, []float64{
		1, 1, 2, 1,
		2, 2, 0, 1,
		3, 3, 1, 1,
		4, 4, 5, 1,
		5, 5, 3, 1,
	})
	assert.Equal(t, 3, MatrixRank(A, 0))
	assert.Equal(t, 0, MatrixRank(mat.NewDense(4, 4, nil), 0))
	assert.Equal(t, 4, MatrixRank(mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1e-3,
	}), 0))
	assert.Equal(t, 3, MatrixRank(mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1e-3,
	}), 1e-2))
}
