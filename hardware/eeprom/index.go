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

package eeprom

import (
	"fmt"

	"github.com/pocketmem/pocketmem/curated"
)

// error patterns returned when resolving partitions from the on-device
// index.
const (
	BadIndex     = "eeprom index: %v"
	NoAllocation = "eeprom index: no allocation for application %d"
)

// layout of the allocation index kept at the start of the store. space is
// allocated once, when an application is flashed onto the device; an
// application cannot reallocate at runtime. a slot with an ID of zero is
// unused.
const (
	signature      = 0x6367
	IndexAddr      = 8
	IndexEntrySize = 5
	IndexNumSlots  = 32
	DataStartAddr  = 448
)

// LookupPartition resolves the partition allocated to an application by
// reading the on-device index. This is the once-at-initialisation resolution
// of the partition base offset.
func LookupPartition(dev Device, id uint8) (*Partition, error) {
	var sig [2]byte
	if err := dev.Read(0, sig[:]); err != nil {
		return nil, curated.Errorf(BadIndex, err)
	}
	if uint16(sig[0])|uint16(sig[1])<<8 != signature {
		return nil, curated.Errorf(BadIndex,
			fmt.Errorf("device not initialised (signature %#04x)", uint16(sig[0])|uint16(sig[1])<<8))
	}

	raw := make([]byte, IndexEntrySize*IndexNumSlots)
	if err := dev.Read(IndexAddr, raw); err != nil {
		return nil, curated.Errorf(BadIndex, err)
	}

	for i := 0; i < IndexNumSlots; i++ {
		ent := raw[i*IndexEntrySize : (i+1)*IndexEntrySize]
		if ent[0] != id {
			continue
		}
		origin := uint16(ent[1]) | uint16(ent[2])<<8
		size := uint16(ent[3]) | uint16(ent[4])<<8
		if int(origin) < DataStartAddr {
			return nil, curated.Errorf(BadIndex,
				fmt.Errorf("allocation for application %d overlaps reserved space", id))
		}
		return NewPartition(dev, origin, size)
	}

	return nil, curated.Errorf(NoAllocation, id)
}
