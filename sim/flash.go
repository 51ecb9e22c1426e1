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

package sim

import (
	"github.com/pocketmem/pocketmem/curated"
)

// NotSelected is the error pattern returned by a chip model clocked while
// its select line is inactive.
const NotSelected = "sim: %s: transfer while deselected"

// transfer phases common to the chip models.
const (
	phaseOpcode = iota
	phaseAddress
	phaseData
	phaseStatus
	phaseIgnore
)

// instruction set of the simulated flash chip.
const (
	flashCmdRead         = 0x03
	flashCmdPowerDown    = 0xb9
	flashCmdPowerDownOff = 0xab
)

const eraseByte = 0xff

// Flash models the external serial flash chip: a read command streams bytes
// from an internal address counter that auto-increments and wraps at the
// device capacity.
type Flash struct {
	contents []byte

	selected  bool
	phase     int
	cmd       byte
	addr      uint32
	addrCount int
	asleep    bool
}

// NewFlash is the preferred method of initialisation for the simulated
// flash chip. Contents are in the erased state.
func NewFlash(capacity uint32) *Flash {
	fl := &Flash{
		contents: make([]byte, capacity),
	}
	for i := range fl.contents {
		fl.contents[i] = eraseByte
	}
	return fl
}

// Load copies an image into the chip, starting at address zero.
func (fl *Flash) Load(image []byte) {
	copy(fl.contents, image)
}

// Poke bytes directly into the chip, bypassing the bus.
func (fl *Flash) Poke(address uint32, data ...byte) {
	copy(fl.contents[address:], data)
}

// Select implements the spi.Peripheral interface.
func (fl *Flash) Select() {
	fl.selected = true
	fl.phase = phaseOpcode
}

// Deselect implements the spi.Peripheral interface.
func (fl *Flash) Deselect() {
	fl.selected = false
}

// Transfer implements the spi.Peripheral interface.
func (fl *Flash) Transfer(data []byte) error {
	if !fl.selected {
		return curated.Errorf(NotSelected, "flash")
	}
	for i := range data {
		data[i] = fl.clock(data[i])
	}
	return nil
}

// clock exchanges one byte with the chip.
func (fl *Flash) clock(in byte) byte {
	switch fl.phase {
	case phaseOpcode:
		fl.cmd = in
		switch in {
		case flashCmdRead:
			if fl.asleep {
				fl.phase = phaseIgnore
				break
			}
			fl.phase = phaseAddress
			fl.addr = 0
			fl.addrCount = 0
		case flashCmdPowerDown:
			fl.asleep = true
			fl.phase = phaseIgnore
		case flashCmdPowerDownOff:
			fl.asleep = false
			fl.phase = phaseIgnore
		default:
			fl.phase = phaseIgnore
		}

	case phaseAddress:
		// 24-bit address, most significant byte first
		fl.addr = fl.addr<<8 | uint32(in)
		fl.addrCount++
		if fl.addrCount == 3 {
			fl.addr %= uint32(len(fl.contents))
			fl.phase = phaseData
		}

	case phaseData:
		out := fl.contents[fl.addr]

		// the internal address counter wraps at the device capacity
		fl.addr = (fl.addr + 1) % uint32(len(fl.contents))
		return out
	}

	return eraseByte
}
