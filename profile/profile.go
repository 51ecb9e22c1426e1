// This file is part of Pocketmem.
//
// Pocketmem is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Pocketmem is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Pocketmem.  If not, see <https://www.gnu.org/licenses/>.

package profile

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/pocketmem/pocketmem/curated"
	"github.com/pocketmem/pocketmem/hardware/eeprom"
)

// BadProfile is the error pattern returned for a profile that cannot be
// loaded or fails validation.
const BadProfile = "profile: %v"

// Profile describes the storage geometry of one device revision.
type Profile struct {
	Flash  Flash  `toml:"flash"`
	Eeprom Eeprom `toml:"eeprom"`
}

// Flash geometry.
type Flash struct {
	// total addressable capacity in bytes
	Capacity uint32 `toml:"capacity"`
}

// Eeprom geometry, including where in the reserved space the write journal
// lives.
type Eeprom struct {
	Capacity int `toml:"capacity"`

	// journal layout. the pending byte doubles as the commit flag
	PendingAddr uint16 `toml:"pending_address"`
	TargetAddr  uint16 `toml:"target_address"`
	ShadowAddr  uint16 `toml:"shadow_address"`
	ShadowSize  uint16 `toml:"shadow_size"`

	// first address available for application data
	DataAddr uint16 `toml:"data_address"`
}

// Default returns the profile of the reference device: 1 MiB flash, 4 KiB
// EEPROM, journal in the reserved space below the application data.
func Default() Profile {
	return Profile{
		Flash: Flash{
			Capacity: 0x100000,
		},
		Eeprom: Eeprom{
			Capacity:    0x1000,
			PendingAddr: 189,
			TargetAddr:  190,
			ShadowAddr:  192,
			ShadowSize:  255,
			DataAddr:    448,
		},
	}
}

// Load a profile from a TOML file. Fields not present in the file keep their
// Default() values.
func Load(path string) (Profile, error) {
	prf := Default()
	if _, err := toml.DecodeFile(path, &prf); err != nil {
		return Profile{}, curated.Errorf(BadProfile, err)
	}
	if err := prf.Validate(); err != nil {
		return Profile{}, err
	}
	return prf, nil
}

// Validate the profile. The journal must fit in the reserved space below the
// application data and the shadow region must not overlap the journal
// metadata.
func (prf Profile) Validate() error {
	ee := prf.Eeprom

	if ee.Capacity <= 0 || ee.Capacity > 0x10000 {
		return curated.Errorf(BadProfile, fmt.Errorf("eeprom capacity out of range (%#x)", ee.Capacity))
	}
	if prf.Flash.Capacity == 0 || prf.Flash.Capacity > 0x800000 {
		return curated.Errorf(BadProfile, fmt.Errorf("flash capacity out of range (%#x)", prf.Flash.Capacity))
	}
	if ee.ShadowSize == 0 || ee.ShadowSize > 0xff {
		return curated.Errorf(BadProfile, fmt.Errorf("shadow size must fit the pending byte (%d)", ee.ShadowSize))
	}
	if int(ee.ShadowAddr)+int(ee.ShadowSize) > int(ee.DataAddr) {
		return curated.Errorf(BadProfile, fmt.Errorf("shadow region overlaps application data"))
	}
	if int(ee.DataAddr) >= ee.Capacity {
		return curated.Errorf(BadProfile, fmt.Errorf("no room for application data"))
	}
	if ee.PendingAddr >= ee.TargetAddr && ee.PendingAddr < ee.TargetAddr+2 {
		return curated.Errorf(BadProfile, fmt.Errorf("pending byte overlaps target descriptor"))
	}
	return nil
}

// Journal returns the journal layout described by the profile.
func (prf Profile) Journal() eeprom.Layout {
	return eeprom.Layout{
		PendingAddr: prf.Eeprom.PendingAddr,
		TargetAddr:  prf.Eeprom.TargetAddr,
		ShadowAddr:  prf.Eeprom.ShadowAddr,
		ShadowSize:  prf.Eeprom.ShadowSize,
	}
}
