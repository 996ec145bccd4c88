// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

const (
	PI     = 3.1415926535897932  // Pi
	C      = 2.99792458e8        // Speed of light [m/s]
	Re     = 6378137.0           // Earth's radius [m]
	Fe     = 1.0 / 298.257223563 // Earth's flattening
	OmegaE = 7.292115147e-5      // Earth rotation rate [rad/s]
)

// Standard atmosphere used for the tropospheric correction
const (
	STD_PRESSURE    = 1013.0 // [mbar]
	STD_TEMPERATURE = 293.0  // [K]
	STD_HUMIDITY    = 50.0   // [%]
)
