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
	"github.com/pocketmem/pocketmem/curated"
)

// error patterns returned by the eeprom package.
const (
	OutOfRange   = "eeprom: %s access out of range (address %#04x, %d bytes)"
	BadPartition = "eeprom: bad partition (origin %#04x, %d bytes)"
)

// Device is the raw byte-level primitive over the persistent store.
// Addresses are absolute. Implementations make no atomicity guarantee of any
// kind: a power loss during Write() can leave the target bytes in an
// indeterminate mix of old and new content.
type Device interface {
	Capacity() int
	Read(address uint16, data []byte) error
	Write(address uint16, data []byte) error
}

// Partition is the window onto the persistent store allocated to one
// application. The base offset is resolved once, at initialisation, and is
// fixed for the lifetime of the partition; all addresses in the Read() and
// Write() operations are relative to it.
//
// Partition offers no atomicity. Writes that must survive power loss go
// through the Journal.
type Partition struct {
	dev    Device
	origin uint16
	size   uint16
}

// NewPartition is the preferred method of initialisation for the Partition
// type. The partition must fit within the device.
func NewPartition(dev Device, origin uint16, size uint16) (*Partition, error) {
	if size == 0 || int(origin)+int(size) > dev.Capacity() {
		return nil, curated.Errorf(BadPartition, origin, size)
	}
	return &Partition{
		dev:    dev,
		origin: origin,
		size:   size,
	}, nil
}

// Size of the partition in bytes.
func (prt *Partition) Size() int {
	return int(prt.size)
}

// Read len(data) bytes starting at the partition-relative address.
func (prt *Partition) Read(address uint16, data []byte) error {
	if int(address)+len(data) > int(prt.size) {
		return curated.Errorf(OutOfRange, "read", address, len(data))
	}
	return prt.dev.Read(prt.origin+address, data)
}

// Write len(data) bytes starting at the partition-relative address.
//
// The write is raw. A power loss part way through leaves the target range in
// an undefined mix of old and new bytes.
func (prt *Partition) Write(address uint16, data []byte) error {
	if int(address)+len(data) > int(prt.size) {
		return curated.Errorf(OutOfRange, "write", address, len(data))
	}
	return prt.dev.Write(prt.origin+address, data)
}
