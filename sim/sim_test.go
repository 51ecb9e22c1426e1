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

package sim_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/pocketmem/pocketmem/curated"
	"github.com/pocketmem/pocketmem/sim"
	"github.com/pocketmem/pocketmem/test"
)

// raw bus sequences. the tests in this file deliberately bypass the drivers
// and speak to the chip models directly.

func eepromWrite(t *testing.T, chip *sim.EEPROM, address int, data []byte) error {
	t.Helper()

	chip.Select()
	test.DemandSuccess(t, chip.Transfer([]byte{0x06}))
	chip.Deselect()

	chip.Select()
	defer chip.Deselect()
	cmd := []byte{0x02, byte(address >> 8), byte(address)}
	if err := chip.Transfer(cmd); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return chip.Transfer(buf)
}

func eepromRead(t *testing.T, chip *sim.EEPROM, address int, n int) []byte {
	t.Helper()

	chip.Select()
	defer chip.Deselect()
	test.DemandSuccess(t, chip.Transfer([]byte{0x03, byte(address >> 8), byte(address)}))
	data := make([]byte, n)
	test.DemandSuccess(t, chip.Transfer(data))
	return data
}

func TestEEPROMWriteEnableLatch(t *testing.T) {
	chip := sim.NewEEPROM(0x1000)

	// a write instruction without a preceding write-enable is ignored
	chip.Select()
	test.DemandSuccess(t, chip.Transfer([]byte{0x02, 0x00, 0x10, 0xaa}))
	chip.Deselect()
	test.ExpectEquality(t, chip.Peek(0x10), byte(0xff))

	// with the latch set the write lands
	test.DemandSuccess(t, eepromWrite(t, chip, 0x10, []byte{0xaa}))
	test.ExpectEquality(t, chip.Peek(0x10), byte(0xaa))

	// the latch clears after every write instruction. a second write
	// without a fresh write-enable is ignored
	chip.Select()
	test.DemandSuccess(t, chip.Transfer([]byte{0x02, 0x00, 0x11, 0xbb}))
	chip.Deselect()
	test.ExpectEquality(t, chip.Peek(0x11), byte(0xff))
}

func TestEEPROMPageWrap(t *testing.T) {
	chip := sim.NewEEPROM(0x1000)

	// a write that runs off the end of a 32-byte page wraps to the start of
	// the same page, not into the next one
	test.DemandSuccess(t, eepromWrite(t, chip, 62, []byte{0x01, 0x02, 0x03, 0x04}))

	test.ExpectEquality(t, chip.Peek(62), byte(0x01))
	test.ExpectEquality(t, chip.Peek(63), byte(0x02))
	test.ExpectEquality(t, chip.Peek(32), byte(0x03))
	test.ExpectEquality(t, chip.Peek(33), byte(0x04))
	test.ExpectEquality(t, chip.Peek(64), byte(0xff))
}

func TestEEPROMReadCrossesPages(t *testing.T) {
	chip := sim.NewEEPROM(0x1000)
	chip.Poke(30, 0x01, 0x02, 0x03, 0x04)

	// reads are not page bound
	got := eepromRead(t, chip, 30, 4)
	test.ExpectSuccess(t, bytes.Equal(got, []byte{0x01, 0x02, 0x03, 0x04}))
}

func TestEEPROMPowerLoss(t *testing.T) {
	chip := sim.NewEEPROM(0x1000)

	chip.FailAfter(2)
	err := eepromWrite(t, chip, 0x20, []byte{0x01, 0x02, 0x03, 0x04})
	test.ExpectSuccess(t, curated.Is(err, sim.PowerLost))

	// everything persisted before the trigger survives, nothing after
	test.ExpectEquality(t, chip.Peek(0x20), byte(0x01))
	test.ExpectEquality(t, chip.Peek(0x21), byte(0x02))
	test.ExpectEquality(t, chip.Peek(0x22), byte(0xff))

	// the chip stays dead until the power cycles
	chip.Select()
	err = chip.Transfer([]byte{0x05})
	test.ExpectSuccess(t, curated.Is(err, sim.PowerLost))

	chip.PowerCycle()
	got := eepromRead(t, chip, 0x20, 2)
	test.ExpectSuccess(t, bytes.Equal(got, []byte{0x01, 0x02}))
}

func TestEEPROMTransferWhileDeselected(t *testing.T) {
	chip := sim.NewEEPROM(0x1000)
	err := chip.Transfer([]byte{0x03})
	test.ExpectSuccess(t, curated.Is(err, sim.NotSelected))
}

func flashRead(t *testing.T, chip *sim.Flash, address uint32, n int) []byte {
	t.Helper()

	chip.Select()
	defer chip.Deselect()
	cmd := []byte{0x03, byte(address >> 16), byte(address >> 8), byte(address)}
	test.DemandSuccess(t, chip.Transfer(cmd))
	data := make([]byte, n)
	test.DemandSuccess(t, chip.Transfer(data))
	return data
}

func TestFlashReadStream(t *testing.T) {
	chip := sim.NewFlash(0x100)
	chip.Load([]byte{0x10, 0x20, 0x30, 0x40})

	got := flashRead(t, chip, 0, 4)
	test.ExpectSuccess(t, bytes.Equal(got, []byte{0x10, 0x20, 0x30, 0x40}))
}

func TestFlashAddressCounterWraps(t *testing.T) {
	chip := sim.NewFlash(0x100)
	chip.Poke(0xfe, 0x01, 0x02)
	chip.Poke(0x00, 0x03, 0x04)

	// a read that runs off the end of the device continues at address zero
	got := flashRead(t, chip, 0xfe, 4)
	test.ExpectSuccess(t, bytes.Equal(got, []byte{0x01, 0x02, 0x03, 0x04}))
}

func TestFlashPowerDown(t *testing.T) {
	chip := sim.NewFlash(0x100)
	chip.Poke(0, 0x5a)

	chip.Select()
	test.DemandSuccess(t, chip.Transfer([]byte{0xb9}))
	chip.Deselect()

	// a sleeping chip ignores read instructions
	got := flashRead(t, chip, 0, 1)
	test.ExpectEquality(t, got[0], byte(0xff))

	chip.Select()
	test.DemandSuccess(t, chip.Transfer([]byte{0xab}))
	chip.Deselect()

	got = flashRead(t, chip, 0, 1)
	test.ExpectEquality(t, got[0], byte(0x5a))
}

func TestImageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.bin")

	test.DemandSuccess(t, sim.SaveImage(path, []byte{0x01, 0x02, 0x03}))

	// a short image is padded to the requested size with the erased value
	img, err := sim.LoadImage(path, 8)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(img, []byte{0x01, 0x02, 0x03, 0xff, 0xff, 0xff, 0xff, 0xff}))

	// an image larger than the device is refused
	_, err = sim.LoadImage(path, 2)
	test.ExpectSuccess(t, curated.Is(err, sim.BadImage))
}
