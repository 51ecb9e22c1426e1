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
	"fmt"
	"strconv"

	"github.com/pocketmem/pocketmem/curated"
)

// error patterns returned by the data package.
const (
	OutOfRange = "data: %v address out of range (offset %#06x, %d bytes)"
	BadOffset  = "data: offset too large for pointer (%#x)"
	BadPointer = "data: %s is not a pointer"
)

// Medium identifies the backing store a pointer refers to.
type Medium int

func (m Medium) String() string {
	switch m {
	case Direct:
		return "direct"
	case External:
		return "flash"
	}
	return "undefined"
}

// The two media of the unified data space.
const (
	// Direct is directly-mapped memory: constant tables and other data
	// resident in the program image.
	Direct Medium = iota

	// External is the external serial flash device.
	External
)

// Pointer is a logical address in the unified data space: a 24-bit value
// whose most significant bit is the medium tag. Tag clear means the offset
// addresses directly-mapped memory; tag set means the external flash
// device.
//
// The tag bit is never part of the numeric offset. Offset() strips it.
type Pointer uint32

const (
	tagMask Pointer = 0x800000

	// MaxOffset is the largest offset a Pointer can carry.
	MaxOffset = uint32(tagMask - 1)
)

// NewPointer constructs a Pointer to the given offset within the given
// medium.
func NewPointer(medium Medium, offset uint32) (Pointer, error) {
	if offset > MaxOffset {
		return 0, curated.Errorf(BadOffset, offset)
	}
	ptr := Pointer(offset)
	if medium == External {
		ptr |= tagMask
	}
	return ptr, nil
}

// ParsePointer converts the string representation of a tagged address. The
// tag bit is part of the numeric value, so "0x801234" is offset 0x1234 in
// flash and "0x001234" is the same offset in directly-mapped memory. Any
// base understood by strconv.ParseUint is accepted.
func ParsePointer(s string) (Pointer, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, curated.Errorf(BadPointer, s)
	}
	if uint32(v)&^uint32(tagMask) > MaxOffset {
		return 0, curated.Errorf(BadOffset, v)
	}
	return Pointer(v), nil
}

// Medium the pointer refers to.
func (ptr Pointer) Medium() Medium {
	if ptr&tagMask == tagMask {
		return External
	}
	return Direct
}

// Offset within the pointer's medium, with the tag bit stripped.
func (ptr Pointer) Offset() uint32 {
	return uint32(ptr &^ tagMask)
}

func (ptr Pointer) String() string {
	return fmt.Sprintf("%v:%#06x", ptr.Medium(), ptr.Offset())
}
