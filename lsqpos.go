// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

// Implements the iterative least squares position fix from pseudoranges.

package lspos

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Errors returned by SolveLsPos
var (
	ErrRankDeficient = errors.New("design matrix is rank deficient")
	ErrInvalidInput  = errors.New("invalid input")
)

// Number of unknowns (X, Y, Z, receiver clock bias)
const NX = 4

// Calculation constants
const (
	NUM_ITERATIONS = 7   // Number of linearization passes
	BOOTSTRAP_TROP = 2.0 // Tropospheric delay placeholder used in the first pass [m]
)

// Earth rotation correction. Returns the satellite position rotated by the
// Earth rotation during the signal transit time [s].
type EarthRotFunc func(travelTime float64, sat PosXYZ) PosXYZ

// Topocentric transform. Returns azimuth [deg], elevation [deg] and range [m]
// of the vector dx seen from the receiver rcv.
type TopoFunc func(rcv PosXYZ, dx PosXYZ) (az, el, dist float64)

// LsOpt contains the options and collaborators of the least squares fix
type LsOpt struct {
	C             float64      // Speed of light [m/s]
	UseTrop       bool         // Apply tropospheric correction
	Iterations    int          // Number of linearization passes (no early exit)
	BootstrapTrop float64      // Tropospheric delay used in the first pass [m]
	Atmos         TropoParams  // Atmosphere for the tropospheric model
	Workers       int          // Number of goroutines for the satellite pass (<=1: sequential)
	EarthRot      EarthRotFunc // Earth rotation correction (nil: EarthRotCorr)
	Topo          TopoFunc     // Topocentric transform (nil: Topocent)
	Tropo         TropoFunc    // Tropospheric delay model (nil: TropoGoad)
}

// NewLsOpt creates a new LsOpt with default values
func NewLsOpt() *LsOpt {
	return &LsOpt{
		C:             C,
		UseTrop:       true,
		Iterations:    NUM_ITERATIONS,
		BootstrapTrop: BOOTSTRAP_TROP,
		Atmos:         StdTropoParams(),
		Workers:       1,
		EarthRot:      EarthRotCorr,
		Topo:          Topocent,
		Tropo:         TropoGoad,
	}
}

// LsSol contains the result of the least squares fix
type LsSol struct {
	Pos   PosXYZ     // Receiver position [m]
	Clk   float64    // Receiver clock bias [m]
	Elev  []float64  // Satellite elevation angles [deg]
	Azim  []float64  // Satellite azimuth angles [deg]
	Dop   Dop        // Dilution of precision
	Res   []float64  // Residuals (observed - computed) of the last pass [m]
	Iter  int        // Number of completed passes
	Valid bool       // Whether the fix succeeded
	G     mat.Matrix // Design matrix of the last pass
}

// Position and clock bias as one vector (X, Y, Z, clock bias)
func (s *LsSol) Xyzdt() [NX]float64 {
	return [NX]float64{s.Pos.X, s.Pos.Y, s.Pos.Z, s.Clk}
}

// SolveLsPos computes the receiver position and clock bias from pseudoranges
// by repeated linearization (Gauss-Newton, fixed number of passes).
//
// Parameters:
//   - satPos: Satellite positions (ECEF) [m]
//   - obs: Pseudoranges, index-aligned with satPos [m]
//   - opt: Options. nil means NewLsOpt()
//
// Returns:
//   - LsSol: Always non-nil for valid input. On rank deficiency Valid is false,
//     position, clock bias and DOP are zero and the angles hold the values
//     computed before the failure
//   - error: ErrRankDeficient or ErrInvalidInput (wrapped)
func SolveLsPos(satPos []PosXYZ, obs []float64, opt *LsOpt) (*LsSol, error) {

	o, err := checkLsInput(satPos, obs, opt)
	if err != nil {
		return nil, err
	}

	n := len(satPos)
	s := &lsSolver{
		satPos: satPos,
		obs:    obs,
		opt:    o,
		elev:   make([]float64, n),
		azim:   make([]float64, n),
	}
	rslt := &LsSol{Elev: s.elev, Azim: s.azim}

	// Receiver position and clock bias (initial value: 0, 0, 0, 0)
	var x [NX]float64

	var G *mat.Dense
	var dr *mat.VecDense

	for loop := 0; loop < o.Iterations; loop++ {

		PrintD(3, "\t--- LOOP: %d ---\n", loop+1)

		// Equations are rebuilt from scratch in every pass
		G = mat.NewDense(n, NX, nil)  // n x 4
		dr = mat.NewVecDense(n, nil) // n x 1
		if err := s.pass(loop, x, G, dr); err != nil {
			return nil, err
		}

		if DBG_ >= 3 {
			for i := range satPos {
				PrintA("\t%3d: elev=%8.3f, azim=%8.3f, psr=%14.3f, omc=%12.3f\n", i, s.elev[i], s.azim[i], obs[i], dr.AtVec(i))
			}
		}
		if DBG_ >= 4 {
			PrintA("G=\n")
			PrintMat(G)
			PrintA("dr=\n")
			PrintMat(dr)
		}

		// The fix is undefined without full column rank
		if rank := MatrixRank(G, 0); rank != NX {
			PrintD(2, "\tLOOP %d: rank(G)=%d < %d\n", loop+1, rank, NX)
			rslt.Res = vecToSlice(dr)
			rslt.G = G
			return rslt, fmt.Errorf("loop %d, rank=%d: %w", loop+1, rank, ErrRankDeficient)
		}

		dx, _, err := SolveLS(G, dr, nil)
		if err != nil {
			PrintD(2, "\tSolveLS() failed., err= %s\n", err.Error())
			rslt.Res = vecToSlice(dr)
			rslt.G = G
			return rslt, fmt.Errorf("loop %d: %v: %w", loop+1, err, ErrRankDeficient)
		}
		if DBG_ >= 4 {
			PrintA("dx=\n")
			PrintMat(dx)
		}

		for j := range x {
			x[j] += dx.AtVec(j)
		}
		rslt.Iter = loop + 1

		PrintD(2, "\tLOOP %d: XYZ= %.3f %.3f %.3f, clk=%.3f, dx=%.3e %.3e %.3e\n", loop+1, x[0], x[1], x[2], x[3], dx.AtVec(0), dx.AtVec(1), dx.AtVec(2))
	}

	// Dilution of precision from the geometry of the last pass
	dop, err := CalcDop(G)
	if err != nil {
		rslt.Res = vecToSlice(dr)
		rslt.G = G
		return rslt, fmt.Errorf("%v: %w", err, ErrRankDeficient)
	}

	rslt.Pos = PosXYZ{X: x[0], Y: x[1], Z: x[2]}
	rslt.Clk = x[3]
	rslt.Dop = dop
	rslt.Res = vecToSlice(dr)
	rslt.G = G
	rslt.Valid = true
	return rslt, nil
}

// checkLsInput validates the input and returns the options with defaults filled
func checkLsInput(satPos []PosXYZ, obs []float64, opt *LsOpt) (*LsOpt, error) {
	if len(satPos) == 0 {
		return nil, fmt.Errorf("no satellites: %w", ErrInvalidInput)
	}
	if len(satPos) != len(obs) {
		return nil, fmt.Errorf("number of satellites (%d) != number of observations (%d): %w", len(satPos), len(obs), ErrInvalidInput)
	}
	for i, pr := range obs {
		if math.IsNaN(pr) || math.IsInf(pr, 0) || pr <= 0 {
			return nil, fmt.Errorf("pseudorange[%d]=%v: %w", i, pr, ErrInvalidInput)
		}
	}

	// Copy so that the caller's options are never modified
	var o LsOpt
	if opt == nil {
		o = *NewLsOpt()
	} else {
		o = *opt
	}
	if o.C <= 0 {
		return nil, fmt.Errorf("speed of light=%v: %w", o.C, ErrInvalidInput)
	}
	if o.Iterations < 1 {
		return nil, fmt.Errorf("iterations=%d: %w", o.Iterations, ErrInvalidInput)
	}
	if o.EarthRot == nil {
		o.EarthRot = EarthRotCorr
	}
	if o.Topo == nil {
		o.Topo = Topocent
	}
	if o.Tropo == nil {
		o.Tropo = TropoGoad
	}
	return &o, nil
}

// lsSolver holds the read-only input and the angle buffers of one fix
type lsSolver struct {
	satPos []PosXYZ
	obs    []float64
	opt    *LsOpt
	elev   []float64
	azim   []float64
}

// pass sets up the design matrix and residual vector for all satellites.
// Rows are independent, so they may be computed concurrently. The function
// returns after all rows are written.
func (s *lsSolver) pass(loop int, x [NX]float64, G *mat.Dense, dr *mat.VecDense) error {
	if s.opt.Workers <= 1 {
		for i := range s.satPos {
			s.linearize(loop, i, x, G, dr)
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(s.opt.Workers)
	for i := range s.satPos {
		i := i
		g.Go(func() error {
			s.linearize(loop, i, x, G, dr)
			return nil
		})
	}
	return g.Wait()
}

// linearize sets row i of G and element i of dr for the estimate x
func (s *lsSolver) linearize(loop, i int, x [NX]float64, G *mat.Dense, dr *mat.VecDense) {
	upos := PosXYZ{X: x[0], Y: x[1], Z: x[2]}
	psr := s.obs[i]

	var rpos PosXYZ // Satellite position rotated to reception time
	var trop float64
	if loop == 0 {
		// No receiver position yet, so no angles or atmospheric delay
		rpos = s.satPos[i]
		trop = s.opt.BootstrapTrop
	} else {
		// Signal transit time
		tau := EucDist(&s.satPos[i], &upos) / s.opt.C

		// Earth rotation during the transit
		rpos = s.opt.EarthRot(tau, s.satPos[i])

		s.azim[i], s.elev[i], _ = s.opt.Topo(upos, rpos.Sub(upos))

		if s.opt.UseTrop {
			trop = s.opt.Tropo(math.Sin(ToRad(s.elev[i])), s.opt.Atmos)
		}
	}

	// Residual vector (observed minus computed)
	los := rpos.Sub(upos)
	dr.SetVec(i, psr-los.Norm()-x[3]-trop)

	// Design matrix. Line of sight is normalized by the pseudorange, which is
	// close to the geometric range once the estimate has converged.
	G.Set(i, 0, -los.X/psr)
	G.Set(i, 1, -los.Y/psr)
	G.Set(i, 2, -los.Z/psr)
	G.Set(i, 3, 1)
}

func vecToSlice(v mat.Vector) []float64 {
	d := make([]float64, v.Len())
	for i := range d {
		d[i] = v.AtVec(i)
	}
	return d
}
