// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Epoch file format
//
//	# comment
//	> 2024/03/01 12:00:00.000 5
//	G01 x y z pseudorange
//	...
//
// The epoch line holds the GPS time of reception and the number of satellite
// lines that follow. Satellite positions are ECEF [m] at transmission time,
// pseudoranges [m] are corrected for the satellite clock.

// Observations of one epoch
type Epoch struct {
	Time   GTime
	Sats   []SatType
	SatPos []PosXYZ
	Pr     []float64
}

func NewEpoch(t GTime) *Epoch {
	return &Epoch{
		Time:   t,
		Sats:   []SatType{},
		SatPos: []PosXYZ{},
		Pr:     []float64{},
	}
}

func (e *Epoch) Add(sat SatType, pos PosXYZ, pr float64) {
	e.Sats = append(e.Sats, sat)
	e.SatPos = append(e.SatPos, pos)
	e.Pr = append(e.Pr, pr)
}

// Exclude returns a copy of the epoch without the listed satellites
func (e *Epoch) Exclude(exSats []SatType) *Epoch {
	e2 := NewEpoch(e.Time)
	for i, sat := range e.Sats {
		if slices.Contains(exSats, sat) {
			PrintD(3, "\t%s: Exclude satellite\n", sat)
			continue
		}
		e2.Add(sat, e.SatPos[i], e.Pr[i])
	}
	return e2
}

// Read epochs from the reader
func ReadEpochs(r io.Reader) ([]*Epoch, error) {
	var epochs []*Epoch
	var cur *Epoch
	remain := 0

	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		// Epoch line
		if line[0] == '>' {
			if remain > 0 {
				return nil, fmt.Errorf("line %d: %d satellite lines missing in previous epoch", ln, remain)
			}
			e, n, err := parseEpochLine(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", ln, err)
			}
			cur = e
			remain = n
			epochs = append(epochs, cur)
			continue
		}

		// Satellite line
		if cur == nil || remain == 0 {
			return nil, fmt.Errorf("line %d: satellite line outside of epoch", ln)
		}
		sat, pos, pr, err := parseSatLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ln, err)
		}
		cur.Add(sat, pos, pr)
		remain--
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if remain > 0 {
		return nil, fmt.Errorf("line %d: %d satellite lines missing", ln, remain)
	}
	return epochs, nil
}

// "> yyyy/mm/dd hh:mm:ss.sss n"
func parseEpochLine(line string) (*Epoch, int, error) {
	f := strings.Fields(line[1:])
	if len(f) != 3 {
		return nil, 0, fmt.Errorf("invalid epoch line %q", line)
	}
	t, err := ParseGTime(f[0] + " " + f[1])
	if err != nil {
		return nil, 0, fmt.Errorf("invalid epoch time: %w", err)
	}
	n, err := strconv.Atoi(f[2])
	if err != nil || n < 0 {
		return nil, 0, fmt.Errorf("invalid number of satellites %q", f[2])
	}
	return NewEpoch(*t), n, nil
}

// "sat x y z pr"
func parseSatLine(line string) (SatType, PosXYZ, float64, error) {
	f := strings.Fields(line)
	if len(f) != 5 {
		return "", PosXYZ{}, 0, fmt.Errorf("invalid satellite line %q", line)
	}
	sat := SatType(f[0])
	if !sat.IsValid() {
		return "", PosXYZ{}, 0, fmt.Errorf("invalid satellite name %q", f[0])
	}
	var v [4]float64
	for i := range v {
		x, err := strconv.ParseFloat(f[i+1], 64)
		if err != nil {
			return "", PosXYZ{}, 0, fmt.Errorf("%s: %w", sat, err)
		}
		v[i] = x
	}
	return sat, PosXYZ{X: v[0], Y: v[1], Z: v[2]}, v[3], nil
}

// Write epochs in the format read by ReadEpochs
func WriteEpochs(w io.Writer, epochs []*Epoch) error {
	for _, e := range epochs {
		ts := e.Time.ToTime().UTC().Format("2006/01/02 15:04:05.000")
		if _, err := fmt.Fprintf(w, "> %s %d\n", ts, len(e.Sats)); err != nil {
			return err
		}
		for i, sat := range e.Sats {
			p := e.SatPos[i]
			if _, err := fmt.Fprintf(w, "%s %.4f %.4f %.4f %.4f\n", sat, p.X, p.Y, p.Z, e.Pr[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
