// This code is adapted from RTKLIB and SoftGNSS.
// The author gratefully acknowledges T.Takasu for his outstanding contribution in developing RTKLIB.
//
// Last modified: 2025.10.12
//

package lspos

import (
	"fmt"
	"math"
)

// Atmosphere parameters for the tropospheric delay models.
// Heights are in km as in the SoftGNSS interface.
type TropoParams struct {
	Hsta     float64 // Station height [km]
	Pressure float64 // Atmospheric pressure [mbar]
	Temp     float64 // Surface temperature [K]
	Humidity float64 // Relative humidity [%]
	Hp       float64 // Height of pressure measurement [km]
	Htkel    float64 // Height of temperature measurement [km]
	Hhum     float64 // Height of humidity measurement [km]
	Lat      float64 // Station latitude [rad] (Saastamoinen only)
}

// Standard atmosphere at sea level
func StdTropoParams() TropoParams {
	return TropoParams{
		Pressure: STD_PRESSURE,
		Temp:     STD_TEMPERATURE,
		Humidity: STD_HUMIDITY,
	}
}

// Tropospheric delay model. sinEl is the sine of the satellite elevation, the
// result is the slant delay [m].
type TropoFunc func(sinEl float64, p TropoParams) float64

// Select a tropospheric model by name ("goad" or "saastamoinen")
func TropoModelByName(name string) (TropoFunc, error) {
	switch name {
	case "", "goad":
		return TropoGoad, nil
	case "saastamoinen":
		return TropoSaastamoinen, nil
	default:
		return nil, fmt.Errorf("unknown tropospheric model %q", name)
	}
}

// TropoGoad computes the slant tropospheric delay with the modified Hopfield
// model of Goad and Goodman (1974).
func TropoGoad(sinEl float64, p TropoParams) float64 {
	const (
		a_e    = 6378.137    // Semi-major axis [km]
		b0     = 7.839257e-5
		tlapse = -6.5        // Temperature lapse rate [K/km]
	)
	tkhum := p.Temp + tlapse*(p.Hhum-p.Htkel)
	atkel := 7.5 * (tkhum - 273.15) / (237.3 + tkhum - 273.15)
	e0 := 0.0611 * p.Humidity * math.Pow(10, atkel)
	tksea := p.Temp - tlapse*p.Htkel
	em := -978.77 / (2.8704e6 * tlapse * 1.0e-5)
	tkelh := tksea + tlapse*p.Hhum
	e0sea := e0 * math.Pow(tksea/tkelh, 4*em)
	tkelp := tksea + tlapse*p.Hp
	psea := p.Pressure * math.Pow(tksea/tkelp, em)

	if sinEl < 0 {
		sinEl = 0
	}

	// Dry component first, then wet component
	tropo := 0.0
	refsea := 77.624e-6 / tksea
	htop := 1.1385e-5 / refsea
	refsea *= psea
	ref := refsea * math.Pow((htop-p.Hsta)/htop, 4)
	for k := 0; k < 2; k++ {
		rtop := SQ(a_e+htop) - SQ(a_e+p.Hsta)*(1-SQ(sinEl))
		if rtop < 0 {
			rtop = 0
		}
		rtop = math.Sqrt(rtop) - (a_e+p.Hsta)*sinEl
		a := -sinEl / (htop - p.Hsta)
		b := -b0 * (1 - SQ(sinEl)) / (htop - p.Hsta)

		alpha := [8]float64{
			2 * a,
			2*a*a + 4*b/3,
			a * (a*a + 3*b),
			math.Pow(a, 4)/5 + 2.4*a*a*b + 1.2*b*b,
			2 * a * b * (a*a + 3*b) / 3,
			b * b * (6*a*a + 4*b) * 1.428571e-1,
			0,
			0,
		}
		if b*b > 1.0e-35 {
			alpha[6] = a * b * b * b / 2
			alpha[7] = math.Pow(b, 4) / 9
		}
		dr := rtop
		for i := range alpha {
			dr += alpha[i] * math.Pow(rtop, float64(i+2))
		}
		tropo += dr * ref * 1000

		refsea = (371900.0e-6/tksea - 12.92e-6) / tksea
		htop = 1.1385e-5 * (1255/tksea + 0.05) / refsea
		ref = refsea * e0sea * math.Pow((htop-p.Hsta)/htop, 4)
	}
	return tropo
}

// TropoSaastamoinen computes the slant tropospheric delay with the
// Saastamoinen model using the given surface meteorology.
func TropoSaastamoinen(sinEl float64, p TropoParams) float64 {
	if sinEl <= 0 {
		return 0
	}
	hgt := p.Hsta * 1e3
	if hgt < -100.0 || 1e4 < hgt {
		return 0
	}
	if hgt < 0 {
		hgt = 0
	}
	temp := p.Temp
	humi := p.Humidity / 100
	e := 6.108 * humi * math.Exp((17.15*temp-4684.0)/(temp-38.45))
	// cos(z) == sin(el)
	trph := 0.0022768 * p.Pressure / (1.0 - 0.00266*math.Cos(2.0*p.Lat) - 0.00028*hgt/1e3) / sinEl
	trpw := 0.002277 * (1255.0/temp + 0.05) * e / sinEl
	return trph + trpw
}
