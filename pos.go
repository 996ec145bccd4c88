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
	"strconv"
	"strings"
)

//-------------------------------------------------------------------
// PosLLH
//-------------------------------------------------------------------

// Geodetic position. Lat and Lon are in radians, Hei is the ellipsoidal height [m]
type PosLLH struct {
	Lat float64
	Lon float64
	Hei float64
}

func NewPosLLH(lat, lon, hei float64) *PosLLH {
	return &PosLLH{
		Lat: lat,
		Lon: lon,
		Hei: hei,
	}
}

func (llh *PosLLH) ToXYZ() PosXYZ {
	// Ellipsoid parameters
	f := Fe                     // Flattening
	a := Re                     // Semi-major axis
	e := math.Sqrt(f * (2 - f)) // Eccentricity

	// Conversion to Cartesian coordinates
	n := a / math.Sqrt(1-e*e*math.Sin(llh.Lat)*math.Sin(llh.Lat))
	return PosXYZ{
		X: (n + llh.Hei) * math.Cos(llh.Lat) * math.Cos(llh.Lon),
		Y: (n + llh.Hei) * math.Cos(llh.Lat) * math.Sin(llh.Lon),
		Z: (n*(1-e*e) + llh.Hei) * math.Sin(llh.Lat),
	}
}

// Read from string "lat lon hei" (degrees, degrees, meters)
func (llh *PosLLH) Set(s string) error {
	f := strings.Fields(s)
	if len(f) != 3 {
		return fmt.Errorf("invalid position %q, expected \"lat lon hei\"", s)
	}
	var v [3]float64
	for i := range v {
		x, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return err
		}
		v[i] = x
	}
	llh.Lat = ToRad(v[0])
	llh.Lon = ToRad(v[1])
	llh.Hei = v[2]
	return nil
}

// Convert to string (degrees)
func (llh *PosLLH) String() string {
	return fmt.Sprintf("%.8f %.8f %.4f", ToDeg(llh.Lat), ToDeg(llh.Lon), llh.Hei)
}

//-------------------------------------------------------------------
// PosXYZ
//-------------------------------------------------------------------

// ECEF position or vector [m]
type PosXYZ struct {
	X float64
	Y float64
	Z float64
}

func NewPosXYZ(x, y, z float64) *PosXYZ {
	return &PosXYZ{
		X: x,
		Y: y,
		Z: z,
	}
}

func (pos PosXYZ) Add(b PosXYZ) PosXYZ {
	return PosXYZ{X: pos.X + b.X, Y: pos.Y + b.Y, Z: pos.Z + b.Z}
}

func (pos PosXYZ) Sub(b PosXYZ) PosXYZ {
	return PosXYZ{X: pos.X - b.X, Y: pos.Y - b.Y, Z: pos.Z - b.Z}
}

// Euclidean norm
func (pos PosXYZ) Norm() float64 {
	return math.Sqrt(SQ(pos.X) + SQ(pos.Y) + SQ(pos.Z))
}

func (pos PosXYZ) IsZero() bool {
	return pos.X == 0 && pos.Y == 0 && pos.Z == 0
}

func (pos *PosXYZ) ToLLH() PosLLH {
	// In case of origin
	if pos.IsZero() {
		return PosLLH{Lat: 0, Lon: 0, Hei: -Re}
	}

	// Ellipsoid parameters
	f := Fe                     // Flattening
	a := Re                     // Semi-major axis
	b := a * (1 - f)            // Semi-minor axis
	e := math.Sqrt(f * (2 - f)) // Eccentricity

	// Parameters for coordinate transformation (Bowring)
	h := a*a - b*b
	p := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y)
	t := math.Atan2(pos.Z*a, p*b)
	sint := math.Sin(t)
	cost := math.Cos(t)

	lat := math.Atan2(pos.Z+h/b*sint*sint*sint, p-h/a*cost*cost*cost)
	lon := math.Atan2(pos.Y, pos.X)
	n := a / math.Sqrt(1-e*e*math.Sin(lat)*math.Sin(lat)) // Radius of curvature in the prime vertical
	hei := p/math.Cos(lat) - n
	return PosLLH{Lat: lat, Lon: lon, Hei: hei}
}

// Rotate the ECEF vector dx into the local horizon of base
func (dx PosXYZ) RotENU(base PosXYZ) PosENU {
	llh := base.ToLLH()
	s1 := math.Sin(llh.Lon)
	c1 := math.Cos(llh.Lon)
	s2 := math.Sin(llh.Lat)
	c2 := math.Cos(llh.Lat)
	return PosENU{
		E: -dx.X*s1 + dx.Y*c1,
		N: -dx.X*c1*s2 - dx.Y*s1*s2 + dx.Z*c2,
		U: dx.X*c1*c2 + dx.Y*s1*c2 + dx.Z*s2,
	}
}

// Position relative to base in ENU coordinates
func (pos *PosXYZ) ToENU(base PosXYZ) PosENU {
	return pos.Sub(base).RotENU(base)
}

func (pos PosXYZ) String() string {
	return fmt.Sprintf("%.4f %.4f %.4f", pos.X, pos.Y, pos.Z)
}

//-------------------------------------------------------------------
// PosENU
//-------------------------------------------------------------------

// Local horizon vector [m]
type PosENU struct {
	E float64
	N float64
	U float64
}

func NewPosENU(e, n, u float64) *PosENU {
	return &PosENU{
		E: e,
		N: n,
		U: u,
	}
}

// Convert the ENU vector relative to base into an ECEF position
func (enu *PosENU) ToXYZ(base PosXYZ) PosXYZ {
	llh := base.ToLLH()
	s1 := math.Sin(llh.Lon)
	c1 := math.Cos(llh.Lon)
	s2 := math.Sin(llh.Lat)
	c2 := math.Cos(llh.Lat)

	// Rotate the ENU coordinates to convert to relative position
	return PosXYZ{
		X: base.X - enu.E*s1 - enu.N*c1*s2 + enu.U*c1*c2,
		Y: base.Y + enu.E*c1 - enu.N*s1*s2 + enu.U*s1*c2,
		Z: base.Z + enu.N*c2 + enu.U*s2,
	}
}

// Horizontal distance
func (enu *PosENU) Hor() float64 {
	return math.Sqrt(enu.E*enu.E + enu.N*enu.N)
}

func (enu *PosENU) Elevation() float64 {
	return math.Atan2(enu.U, enu.Hor())
}

func (enu *PosENU) Azimuth() float64 {
	return math.Atan2(enu.E, enu.N)
}
