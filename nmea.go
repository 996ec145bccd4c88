// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

// NMEA-0183 output of position fixes.

package lspos

import (
	"fmt"
	"math"
	"strings"
)

// Maximum number of satellite IDs in a GSA sentence
const GSA_MAX_SATS = 12

// nmeaChecksum calculates the XOR checksum of the characters between '$' and '*'
func nmeaChecksum(sentence string) string {
	var cs byte
	for i := 1; i < len(sentence); i++ { // Skip the '$' character
		cs ^= sentence[i]
	}
	return fmt.Sprintf("%02X", cs)
}

// formatNmea appends the checksum and CR LF to the sentence
func formatNmea(sentence string) string {
	return fmt.Sprintf("%s*%s\r\n", sentence, nmeaChecksum(sentence))
}

// Degrees to NMEA "DDMM.MMMMM" / "DDDMM.MMMMM" and hemisphere
func nmeaLatLon(deg float64, isLat bool) (string, string) {
	hem := "N"
	if isLat && deg < 0 {
		hem = "S"
	}
	if !isLat {
		hem = "E"
		if deg < 0 {
			hem = "W"
		}
	}
	a := math.Abs(deg)
	d := int(a)
	m := (a - float64(d)) * 60
	if isLat {
		return fmt.Sprintf("%02d%08.5f", d, m), hem
	}
	return fmt.Sprintf("%03d%08.5f", d, m), hem
}

// NmeaGGA renders the fix data sentence. An invalid fix gives a no-fix GGA.
func NmeaGGA(t GTime, sol *LsSol) string {
	ts := t.ToTime().UTC().Format("150405.00")
	if sol == nil || !sol.Valid {
		return formatNmea(fmt.Sprintf("$GPGGA,%s,,,,,0,00,,,,,,,", ts))
	}
	llh := sol.Pos.ToLLH()
	lat, ns := nmeaLatLon(ToDeg(llh.Lat), true)
	lon, ew := nmeaLatLon(ToDeg(llh.Lon), false)
	sentence := fmt.Sprintf("$GPGGA,%s,%s,%s,%s,%s,1,%02d,%.1f,%.3f,M,0.0,M,,",
		ts, lat, ns, lon, ew, len(sol.Elev), sol.Dop.HDOP, llh.Hei)
	return formatNmea(sentence)
}

// NmeaGSA renders the DOP and active satellites sentence
func NmeaGSA(sats []SatType, sol *LsSol) string {
	mode := "1" // 1 = No fix, 3 = 3D fix
	if sol != nil && sol.Valid {
		mode = "3"
	}
	ids := make([]string, GSA_MAX_SATS)
	for i, sat := range sats {
		if i >= GSA_MAX_SATS {
			break
		}
		ids[i] = fmt.Sprintf("%02d", sat.Num())
	}
	dops := ",,"
	if sol != nil && sol.Valid {
		dops = fmt.Sprintf("%.1f,%.1f,%.1f", sol.Dop.PDOP, sol.Dop.HDOP, sol.Dop.VDOP)
	}
	return formatNmea(fmt.Sprintf("$GPGSA,A,%s,%s,%s", mode, strings.Join(ids, ","), dops))
}

// NmeaGSV renders the satellites-in-view sentences, four satellites each.
// SNR is not known and left empty.
func NmeaGSV(sats []SatType, sol *LsSol) []string {
	var sentences []string
	n := len(sats)
	nmsg := (n + 3) / 4
	for k := 0; k < nmsg; k++ {
		var sb strings.Builder
		fmt.Fprintf(&sb, "$GPGSV,%d,%d,%02d", nmsg, k+1, n)
		for i := k * 4; i < min((k+1)*4, n); i++ {
			if sol != nil && i < len(sol.Elev) {
				fmt.Fprintf(&sb, ",%02d,%02d,%03d,", sats[i].Num(), int(math.Round(sol.Elev[i])), int(math.Round(sol.Azim[i]))%360)
			} else {
				fmt.Fprintf(&sb, ",%02d,,,", sats[i].Num())
			}
		}
		sentences = append(sentences, formatNmea(sb.String()))
	}
	return sentences
}

// NmeaFix renders GGA, GSA and GSV sentences for one epoch
func NmeaFix(t GTime, sats []SatType, sol *LsSol) []string {
	s := []string{NmeaGGA(t, sol), NmeaGSA(sats, sol)}
	return append(s, NmeaGSV(sats, sol)...)
}
