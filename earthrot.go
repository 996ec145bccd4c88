// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

import "math"

// EarthRotCorr returns the satellite position rotated into the ECEF frame at
// signal reception time. The Earth turns by OmegaE * travelTime about the Z axis
// while the signal is in transit.
func EarthRotCorr(travelTime float64, sat PosXYZ) PosXYZ {
	wt := OmegaE * travelTime
	s := math.Sin(wt)
	c := math.Cos(wt)
	return PosXYZ{
		X: c*sat.X + s*sat.Y,
		Y: -s*sat.X + c*sat.Y,
		Z: sat.Z,
	}
}
