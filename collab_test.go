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
)

func TestEarthRotCorr(t *testing.T) {
	assert := assert.New(t)
	sat := PosXYZ{X: 2.0e7, Y: 0, Z: 1.0e7}

	r := EarthRotCorr(0, sat)
	assert.Equal(sat, r)

	tau := 0.075
	r = EarthRotCorr(tau, sat)
	wt := OmegaE * tau
	assert.InDelta(2.0e7*math.Cos(wt), r.X, 1e-6)
	assert.InDelta(-2.0e7*math.Sin(wt), r.Y, 1e-6)
	assert.Equal(sat.Z, r.Z)
	assert.InDelta(sat.Norm(), r.Norm(), 1e-6)
	assert.Less(r.Y, 0.0)
}

func TestTopocent(t *testing.T) {
	assert := assert.New(t)

	// ENU axes coincide with +Y, +Z, +X on the equator at longitude 0
	rcv := PosXYZ{X: Re}

	az, el, d := Topocent(rcv, PosXYZ{Z: 1000})
	assert.InDelta(0.0, az, 1e-9)
	assert.InDelta(0.0, el, 1e-9)
	assert.InDelta(1000.0, d, 1e-9)

	az, el, _ = Topocent(rcv, PosXYZ{Y: 1000})
	assert.InDelta(90.0, az, 1e-9)
	assert.InDelta(0.0, el, 1e-9)

	// Negative azimuth is wrapped to 0..360
	az, _, _ = Topocent(rcv, PosXYZ{Y: -1000})
	assert.InDelta(270.0, az, 1e-9)

	az, el, _ = Topocent(rcv, PosXYZ{Y: 1000, Z: 1000, X: math.Sqrt2 * 1000})
	assert.InDelta(45.0, az, 1e-9)
	assert.InDelta(45.0, el, 1e-9)

	// Zenith
	az, el, d = Topocent(rcv, PosXYZ{X: 2.0e7})
	assert.Equal(0.0, az)
	assert.Equal(90.0, el)
	assert.Equal(2.0e7, d)
}

func TestTropoGoad(t *testing.T) {
	assert := assert.New(t)
	p := StdTropoParams()

	assert.InDelta(2.4209238107, TropoGoad(1.0, p), 1e-6)
	assert.InDelta(4.8262337179, TropoGoad(0.5, p), 1e-6)
	assert.InDelta(13.4949482647, TropoGoad(math.Sin(ToRad(10)), p), 1e-6)

	// Negative elevation is treated as horizon
	assert.Equal(TropoGoad(0, p), TropoGoad(-0.1, p))
}

func TestTropoSaastamoinen(t *testing.T) {
	assert := assert.New(t)
	p := StdTropoParams()

	assert.InDelta(2.4275641949, TropoSaastamoinen(1.0, p), 1e-6)
	assert.InDelta(4.8551283897, TropoSaastamoinen(0.5, p), 1e-6)
	assert.Equal(0.0, TropoSaastamoinen(0, p))

	p.Hsta = 20 // km, outside the model
	assert.Equal(0.0, TropoSaastamoinen(1.0, p))
}

func TestTropoModelByName(t *testing.T) {
	p := StdTropoParams()
	for name, want := range map[string]float64{
		"":             TropoGoad(0.7, p),
		"goad":         TropoGoad(0.7, p),
		"saastamoinen": TropoSaastamoinen(0.7, p),
	} {
		f, err := TropoModelByName(name)
		assert.NoError(t, err, name)
		assert.Equal(t, want, f(0.7, p), name)
	}
	_, err := TropoModelByName("hopfield")
	assert.Error(t, err)
}
