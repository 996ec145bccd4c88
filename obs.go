// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

import (
	"sort"
	"strconv"
)

// Type representing satellite name like "G10"
type SatType string

// Type representing satellite system like 'G'
type SysType byte

// Extract satellite system from satellite name
func (p *SatType) Sys() SysType {
	return SysType((*p)[0])
}

// Extract satellite number from satellite name
func (p *SatType) Num() int {
	if len(*p) < 2 {
		return 0
	}
	i, err := strconv.Atoi(string((*p)[1:]))
	if err != nil {
		return 0
	}
	return i
}

// Check validity of satellite name (system letter + number)
func (p *SatType) IsValid() bool {
	if len(*p) < 2 {
		return false
	}
	sys := p.Sys()
	return sys.IsValid() && p.Num() > 0
}

// Check validity of satellite system
func (p *SysType) IsValid() bool {
	return *p == 'G' || *p == 'J' || *p == 'E' || *p == 'R' || *p == 'C' || *p == 'S'
}

// Sort the list of satellite names (G, J, E, R, C, S and then by number)
func Sorted(s []SatType) []SatType {
	m := map[SysType]int{'G': 0, 'J': 1, 'E': 2, 'R': 3, 'C': 4, 'S': 5}
	s2 := make([]SatType, len(s))
	copy(s2, s)
	sort.SliceStable(s2, func(i, j int) bool {
		if s2[i].Sys() != s2[j].Sys() {
			return m[s2[i].Sys()] < m[s2[j].Sys()]
		}
		return s2[i].Num() < s2[j].Num()
	})
	return s2
}
