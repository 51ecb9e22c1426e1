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

package display

import (
	"github.com/pocketmem/pocketmem/curated"
)

// error patterns returned by the display package.
const (
	ScratchDuringRefresh = "display: scratch acquired during refresh"
	ScratchOnLoan        = "display: scratch already on loan"
	ScratchTooLarge      = "display: scratch request too large (%d bytes)"
	RefreshDuringLoan    = "display: refresh begun while scratch on loan"
	BadFrame             = "display: bad frame length (%d bytes)"
)

// Shape of the display. Pixels are 4-bit grayscale, packed two to a byte, so
// a row of 128 pixels occupies 64 column bytes.
const (
	NumCols = 64
	NumRows = 128

	// BufferSize is the frame buffer size in bytes.
	BufferSize = NumCols * NumRows

	// Width and Height of the display in pixels.
	Width  = NumCols * 2
	Height = NumRows
)

// Display owns the frame buffer. Because the frame buffer is the only large
// RAM region on the device, it is also loaned out as general-purpose scratch
// memory through Acquire()/Release() - most notably to the EEPROM journal.
//
// The loan and a refresh are mutually exclusive in time: a refresh reads the
// buffer as pixel data while a loan scribbles arbitrary bytes over it. Both
// directions of the conflict are checked and refused.
type Display struct {
	buffer [BufferSize]byte

	refreshing bool
	loaned     bool

	// number of refused acquisitions due to an in-flight refresh. test
	// harnesses use this to assert the exclusivity contract
	violations int
}

// NewDisplay is the preferred method of initialisation for the Display type.
func NewDisplay() *Display {
	return &Display{}
}

// Acquire loans out the frame buffer as scratch memory. The returned slice
// is only valid until Release(); the caller must not retain it past the
// operation the loan was acquired for.
func (dsp *Display) Acquire(size int) ([]byte, error) {
	if dsp.refreshing {
		dsp.violations++
		return nil, curated.Errorf(ScratchDuringRefresh)
	}
	if dsp.loaned {
		return nil, curated.Errorf(ScratchOnLoan)
	}
	if size > BufferSize {
		return nil, curated.Errorf(ScratchTooLarge, size)
	}

	dsp.loaned = true
	return dsp.buffer[:size], nil
}

// Release ends the scratch loan. The pixel content of the frame buffer is
// undefined afterwards; the next refresh must redraw in full.
func (dsp *Display) Release() {
	dsp.loaned = false
}

// BeginRefresh marks the start of a screen refresh, during which the frame
// buffer must not be loaned out.
func (dsp *Display) BeginRefresh() error {
	if dsp.loaned {
		return curated.Errorf(RefreshDuringLoan)
	}
	dsp.refreshing = true
	return nil
}

// EndRefresh marks the end of a screen refresh.
func (dsp *Display) EndRefresh() {
	dsp.refreshing = false
}

// Refreshing returns true while a refresh is in flight.
func (dsp *Display) Refreshing() bool {
	return dsp.refreshing
}

// Violations returns the number of scratch acquisitions attempted during a
// refresh. Instrumentation for test harnesses; always zero in a program
// honouring the sequencing contract.
func (dsp *Display) Violations() int {
	return dsp.violations
}

// LoadFrame replaces the frame buffer content with a raw frame.
func (dsp *Display) LoadFrame(data []byte) error {
	if dsp.loaned {
		return curated.Errorf(ScratchOnLoan)
	}
	if len(data) != BufferSize {
		return curated.Errorf(BadFrame, len(data))
	}
	copy(dsp.buffer[:], data)
	return nil
}

// Pixel returns the 4-bit grayscale value at the given coordinates. Even
// pixels occupy the low nibble of the column byte.
func (dsp *Display) Pixel(x, y int) uint8 {
	b := dsp.buffer[y*NumCols+x/2]
	if x%2 == 0 {
		return b & 0x0f
	}
	return b >> 4
}
