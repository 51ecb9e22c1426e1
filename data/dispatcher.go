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

package data

import (
	"github.com/pocketmem/pocketmem/curated"
	"github.com/pocketmem/pocketmem/hardware/flash"
)

// Dispatcher resolves pointers in the unified data space and routes reads to
// the correct backing medium. It is a pure read path, independent of the
// EEPROM write machinery.
type Dispatcher struct {
	// the directly-mapped memory image (program constants and the like)
	mem []byte

	fl *flash.Flash

	// fixed base added to flash offsets before the device access
	origin uint32
}

// NewDispatcher is the preferred method of initialisation for the Dispatcher
// type. The origin argument is the fixed base within the flash device that
// tagged flash offsets are relative to.
func NewDispatcher(mem []byte, fl *flash.Flash, origin uint32) *Dispatcher {
	return &Dispatcher{
		mem:    mem,
		fl:     fl,
		origin: origin,
	}
}

// Read len(data) bytes from the unified data space into data.
//
// Out-of-range offsets are rejected before any device access, for either
// medium. In particular a flash offset is required to lie within the device
// capacity even though the flash read path itself would wrap it.
func (dsp *Dispatcher) Read(ptr Pointer, data []byte) error {
	offset := ptr.Offset()

	switch ptr.Medium() {
	case Direct:
		if int(offset)+len(data) > len(dsp.mem) {
			return curated.Errorf(OutOfRange, Direct, offset, len(data))
		}
		copy(data, dsp.mem[offset:])
		return nil

	case External:
		// the range check is against the device address, origin included,
		// so that a tail read never reaches the flash wraparound
		if uint64(dsp.origin)+uint64(offset)+uint64(len(data)) > uint64(dsp.fl.Capacity()) {
			return curated.Errorf(OutOfRange, External, offset, len(data))
		}
		return dsp.fl.Read(dsp.origin+offset, data)
	}

	// the two cases above are exhaustive for a well-formed Pointer
	return curated.Errorf(OutOfRange, ptr.Medium(), offset, len(data))
}
