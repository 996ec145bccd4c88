// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

import (
	"math"
	"time"
)

// GPS time (week number and seconds of week)
type GTime struct {
	Week int
	Sec  float64
}

// GPS time starts from 1980/1/6 00:00:00
var gpsEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

const secPerWeek = 3600 * 24 * 7

func NewGTime(dt time.Time) *GTime {
	t := dt.Unix() - gpsEpoch.Unix()
	return &GTime{
		Week: int(t / secPerWeek),
		Sec:  float64(t%secPerWeek) + float64(dt.Nanosecond())/1e9,
	}
}

// Parse "2006/01/02 15:04:05.000" (GPST)
func ParseGTime(s string) (*GTime, error) {
	t, err := time.Parse("2006/01/02 15:04:05", s)
	if err != nil {
		return nil, err
	}
	return NewGTime(t), nil
}

func (p *GTime) ToTime() time.Time {
	i := int64(math.Trunc(p.Sec))
	t := int64(secPerWeek*p.Week) + i + gpsEpoch.Unix()
	n := int64(math.Round((p.Sec - float64(i)) * 1e9))
	return time.Unix(t, n)
}

func (p *GTime) Less(b GTime, roundSec bool) bool {
	if p.Week != b.Week {
		return p.Week < b.Week
	}
	if roundSec {
		return math.Round(p.Sec) < math.Round(b.Sec)
	}
	return p.Sec < b.Sec
}

func (p *GTime) Before(t time.Time, roundSec bool) bool {
	return p.Less(*NewGTime(t), roundSec)
}

func (p *GTime) After(t time.Time, roundSec bool) bool {
	return NewGTime(t).Less(*p, roundSec)
}

func (p *GTime) Divisible(sec int) bool {
	return int(math.Round(p.Sec))%sec == 0
}
