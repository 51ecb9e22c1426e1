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

// PowerLost is the error pattern returned by a chip model whose power-loss
// trigger has fired. Every transfer fails until PowerCycle() is called.
const PowerLost = "sim: eeprom: power lost"

// instruction set of the simulated EEPROM chip.
const (
	eepromCmdWriteEnable = 0x06
	eepromCmdReadStatus  = 0x05
	eepromCmdRead        = 0x03
	eepromCmdWrite       = 0x02
)

// write page of the simulated EEPROM chip.
const eepromPageSize = 32

// EEPROM models a 25-series EEPROM chip, including the details that the
// driver must work around: writes are only accepted after a write-enable
// instruction, and the address counter of a write wraps within the current
// page rather than advancing into the next one.
//
// FailAfter() arms a power-loss trigger so that tests can interrupt a write
// at any byte boundary.
type EEPROM struct {
	contents []byte

	selected    bool
	phase       int
	cmd         byte
	addr        int
	addrCount   int
	pageBase    int
	writeEnable bool

	// remaining bytes the chip will persist before the power-loss trigger
	// fires. negative means the trigger is disarmed
	failBudget int
	dead       bool
}

// NewEEPROM is the preferred method of initialisation for the simulated
// EEPROM chip. Contents are in the erased state.
func NewEEPROM(capacity int) *EEPROM {
	ee := &EEPROM{
		contents:   make([]byte, capacity),
		failBudget: -1,
	}
	for i := range ee.contents {
		ee.contents[i] = eraseByte
	}
	return ee
}

// Capacity of the simulated chip in bytes.
func (ee *EEPROM) Capacity() int {
	return len(ee.contents)
}

// Load copies an image into the chip, starting at address zero.
func (ee *EEPROM) Load(image []byte) {
	copy(ee.contents, image)
}

// Poke bytes directly into the chip, bypassing the bus.
func (ee *EEPROM) Poke(address int, data ...byte) {
	copy(ee.contents[address:], data)
}

// Peek a byte directly from the chip, bypassing the bus.
func (ee *EEPROM) Peek(address int) byte {
	return ee.contents[address]
}

// Image returns a copy of the chip contents.
func (ee *EEPROM) Image() []byte {
	img := make([]byte, len(ee.contents))
	copy(img, ee.contents)
	return img
}

// FailAfter arms the power-loss trigger: the chip will persist n more
// written bytes and then die, dropping everything that follows. Persisted
// contents survive, as they would on real hardware.
func (ee *EEPROM) FailAfter(n int) {
	ee.failBudget = n
}

// PowerCycle restores power to a dead chip. Contents are whatever was
// persisted before the power loss; all volatile state is reset.
func (ee *EEPROM) PowerCycle() {
	ee.dead = false
	ee.failBudget = -1
	ee.writeEnable = false
	ee.selected = false
	ee.phase = phaseOpcode
}

// Select implements the spi.Peripheral interface.
func (ee *EEPROM) Select() {
	ee.selected = true
	ee.phase = phaseOpcode
}

// Deselect implements the spi.Peripheral interface.
func (ee *EEPROM) Deselect() {
	ee.selected = false

	// the write-enable latch clears at the end of a write instruction
	if ee.cmd == eepromCmdWrite {
		ee.writeEnable = false
	}
}

// Transfer implements the spi.Peripheral interface.
func (ee *EEPROM) Transfer(data []byte) error {
	if ee.dead {
		return curated.Errorf(PowerLost)
	}
	if !ee.selected {
		return curated.Errorf(NotSelected, "eeprom")
	}

	for i := range data {
		data[i] = ee.clock(data[i])
		if ee.dead {
			return curated.Errorf(PowerLost)
		}
	}
	return nil
}

// clock exchanges one byte with the chip.
func (ee *EEPROM) clock(in byte) byte {
	switch ee.phase {
	case phaseOpcode:
		ee.cmd = in
		switch in {
		case eepromCmdWriteEnable:
			ee.writeEnable = true
			ee.phase = phaseIgnore
		case eepromCmdReadStatus:
			ee.phase = phaseStatus
		case eepromCmdRead, eepromCmdWrite:
			ee.phase = phaseAddress
			ee.addr = 0
			ee.addrCount = 0
		default:
			ee.phase = phaseIgnore
		}

	case phaseStatus:
		// write cycles complete instantly in simulation so the busy bit is
		// never set
		return 0x00

	case phaseAddress:
		// 16-bit address, most significant byte first
		ee.addr = ee.addr<<8 | int(in)
		ee.addrCount++
		if ee.addrCount == 2 {
			ee.addr %= len(ee.contents)
			if ee.cmd == eepromCmdRead {
				ee.phase = phaseData
			} else if ee.writeEnable {
				ee.phase = phaseData
				ee.pageBase = ee.addr - ee.addr%eepromPageSize
			} else {
				// write without the enable latch is ignored by the chip
				ee.phase = phaseIgnore
			}
		}

	case phaseData:
		if ee.cmd == eepromCmdRead {
			out := ee.contents[ee.addr]
			ee.addr = (ee.addr + 1) % len(ee.contents)
			return out
		}

		// write path. the power-loss trigger fires between bytes
		if ee.failBudget == 0 {
			ee.dead = true
			return eraseByte
		}
		if ee.failBudget > 0 {
			ee.failBudget--
		}
		ee.contents[ee.addr] = in

		// a write's address counter wraps within the current page
		ee.addr = ee.pageBase + (ee.addr+1-ee.pageBase)%eepromPageSize
	}

	return eraseByte
}
