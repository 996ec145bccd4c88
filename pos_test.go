// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosLLHToXYZ(t *testing.T) {
	assert := assert.New(t)

	llh := NewPosLLH(0, 0, 0)
	xyz := llh.ToXYZ()
	assert.InDelta(Re, xyz.X, 1e-6)
	assert.InDelta(0.0, xyz.Y, 1e-6)
	assert.InDelta(0.0, xyz.Z, 1e-6)

	// Back and forth
	llh = NewPosLLH(ToRad(35.73101206), ToRad(139.7396917), 80.33)
	xyz = llh.ToXYZ()
	llh2 := xyz.ToLLH()
	assert.InDelta(llh.Lat, llh2.Lat, 1e-10)
	assert.InDelta(llh.Lon, llh2.Lon, 1e-10)
	assert.InDelta(llh.Hei, llh2.Hei, 1e-4)

	// Origin
	var o PosXYZ
	assert.Equal(-Re, o.ToLLH().Hei)
}

func TestPosENU(t *testing.T) {
	assert := assert.New(t)
	llh := NewPosLLH(ToRad(-33.9), ToRad(18.4), 20)
	base := llh.ToXYZ()

	enu := NewPosENU(100, -200, 30)
	xyz := enu.ToXYZ(base)
	enu2 := xyz.ToENU(base)
	assert.InDelta(enu.E, enu2.E, 1e-6)
	assert.InDelta(enu.N, enu2.N, 1e-6)
	assert.InDelta(enu.U, enu2.U, 1e-6)

	up := NewPosENU(0, 0, 1)
	assert.InDelta(PI/2, up.Elevation(), 1e-12)
	east := NewPosENU(1, 0, 0)
	assert.InDelta(PI/2, east.Azimuth(), 1e-12)
}

func TestPosXYZVector(t *testing.T) {
	a := PosXYZ{X: 1, Y: 2, Z: 3}
	b := PosXYZ{X: 4, Y: 6, Z: 3}
	assert.Equal(t, PosXYZ{X: 3, Y: 4, Z: 0}, b.Sub(a))
	assert.Equal(t, PosXYZ{X: 5, Y: 8, Z: 6}, a.Add(b))
	assert.Equal(t, 5.0, b.Sub(a).Norm())
	assert.Equal(t, 5.0, EucDist(&a, &b))
	assert.True(t, PosXYZ{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestPosLLHSet(t *testing.T) {
	var llh PosLLH
	require.NoError(t, llh.Set("35.5 139.25 42.0"))
	assert.InDelta(t, ToRad(35.5), llh.Lat, 1e-15)
	assert.InDelta(t, ToRad(139.25), llh.Lon, 1e-15)
	assert.Equal(t, 42.0, llh.Hei)
	assert.Equal(t, "35.50000000 139.25000000 42.0000", llh.String())

	assert.Error(t, llh.Set("35.5 139.25"))
	assert.Error(t, llh.Set("35.5 abc 10"))
}

func TestGTime(t *testing.T) {
	assert := assert.New(t)

	gt, err := ParseGTime("1980/01/13 00:00:01.500")
	require.NoError(t, err)
	assert.Equal(1, gt.Week)
	assert.InDelta(1.5, gt.Sec, 1e-9)
	assert.True(gt.ToTime().Equal(time.Date(1980, 1, 13, 0, 0, 1, 500000000, time.UTC)))

	gt2 := NewGTime(time.Date(2024, 3, 1, 12, 0, 30, 0, time.UTC))
	assert.True(gt.Less(*gt2, false))
	assert.False(gt2.Less(*gt, false))
	assert.True(gt2.Divisible(30))
	assert.False(gt2.Divisible(60))
	assert.True(gt2.After(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), true))
	assert.True(gt2.Before(time.Date(2024, 3, 1, 12, 1, 0, 0, time.UTC), true))

	_, err = ParseGTime("2024-03-01 12:00:00")
	assert.Error(err)
}

func TestSatType(t *testing.T) {
	assert := assert.New(t)
	sat := SatType("G07")
	assert.Equal(SysType('G'), sat.Sys())
	assert.Equal(7, sat.Num())
	assert.True(sat.IsValid())

	for _, s := range []SatType{"", "G", "X01", "Gxx", "G00"} {
		assert.False(s.IsValid(), string(s))
	}

	assert.Equal([]SatType{"G02", "G10", "E01", "C05"}, Sorted([]SatType{"C05", "G10", "E01", "G02"}))

	var sv SatVar
	require.NoError(t, sv.Set("G01,E14"))
	assert.Equal(SatVar{"G01", "E14"}, sv)
	assert.Equal("G01,E14", sv.String())
	assert.Error(sv.Set("G01,Q3"))
}
