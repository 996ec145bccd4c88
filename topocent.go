// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

import "math"

// Topocent transforms the vector dx (satellite - receiver, ECEF) into the
// local horizon of the receiver rcv.
//
// Returns:
//   - az: Azimuth [deg], 0 to 360 clockwise from north
//   - el: Elevation [deg]
//   - dist: Length of dx [m]
func Topocent(rcv PosXYZ, dx PosXYZ) (az, el, dist float64) {
	enu := dx.RotENU(rcv)
	if enu.Hor() < 1e-20 {
		az = 0
		el = 90
	} else {
		az = ToDeg(enu.Azimuth())
		el = ToDeg(enu.Elevation())
	}
	if az < 0 {
		az += 360
	}
	dist = math.Sqrt(SQ(dx.X) + SQ(dx.Y) + SQ(dx.Z))
	return
}
