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

package flash_test

import (
	"bytes"
	"testing"

	"github.com/pocketmem/pocketmem/curated"
	"github.com/pocketmem/pocketmem/hardware/flash"
	"github.com/pocketmem/pocketmem/sim"
	"github.com/pocketmem/pocketmem/test"
)

const capacity = 0x1000

func newFlash(t *testing.T) (*flash.Flash, *sim.Flash) {
	t.Helper()
	chip := sim.NewFlash(capacity)
	fl, err := flash.NewFlash(chip, capacity)
	test.DemandSuccess(t, err)
	return fl, chip
}

func TestRead(t *testing.T) {
	fl, chip := newFlash(t)
	chip.Poke(0x0200, 0x01, 0x02, 0x03, 0x04)

	got := make([]byte, 4)
	test.DemandSuccess(t, fl.Read(0x0200, got))
	test.ExpectSuccess(t, bytes.Equal(got, []byte{0x01, 0x02, 0x03, 0x04}))

	// unprogrammed flash reads as the erased state
	test.DemandSuccess(t, fl.Read(0x0300, got))
	test.ExpectSuccess(t, bytes.Equal(got, []byte{0xff, 0xff, 0xff, 0xff}))
}

func TestWraparoundAddress(t *testing.T) {
	fl, chip := newFlash(t)
	chip.Poke(0x0010, 0xaa, 0xbb)

	// an address past the capacity is taken modulo the capacity
	a := make([]byte, 2)
	b := make([]byte, 2)
	test.DemandSuccess(t, fl.Read(0x0010, a))
	test.DemandSuccess(t, fl.Read(capacity+0x0010, b))
	test.ExpectSuccess(t, bytes.Equal(a, b))

	test.DemandSuccess(t, fl.Read(3*capacity+0x0010, b))
	test.ExpectSuccess(t, bytes.Equal(a, b))
}

func TestWraparoundSpanningRead(t *testing.T) {
	fl, chip := newFlash(t)
	chip.Poke(capacity-2, 0x11, 0x22)
	chip.Poke(0, 0x33, 0x44)

	// a single read spanning the capacity boundary continues from address
	// zero
	got := make([]byte, 4)
	test.DemandSuccess(t, fl.Read(capacity-2, got))
	test.ExpectSuccess(t, bytes.Equal(got, []byte{0x11, 0x22, 0x33, 0x44}))
}

func TestZeroLengthRead(t *testing.T) {
	fl, _ := newFlash(t)
	test.ExpectSuccess(t, fl.Read(0, nil))
}

func TestSleepWake(t *testing.T) {
	fl, chip := newFlash(t)
	chip.Poke(0, 0x55)

	test.DemandSuccess(t, fl.Sleep())

	// a sleeping device does not answer reads
	got := make([]byte, 1)
	test.DemandSuccess(t, fl.Read(0, got))
	test.ExpectEquality(t, got[0], 0xff)

	test.DemandSuccess(t, fl.Wake())
	test.DemandSuccess(t, fl.Read(0, got))
	test.ExpectEquality(t, got[0], 0x55)
}

func TestBadCapacity(t *testing.T) {
	chip := sim.NewFlash(capacity)

	_, err := flash.NewFlash(chip, 0)
	test.ExpectSuccess(t, curated.Is(err, flash.BadCapacity))

	_, err = flash.NewFlash(chip, flash.MaxCapacity+1)
	test.ExpectSuccess(t, curated.Is(err, flash.BadCapacity))
}
