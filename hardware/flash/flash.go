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

package flash

import (
	"github.com/pocketmem/pocketmem/curated"
	"github.com/pocketmem/pocketmem/hardware/spi"
)

// error patterns returned by the flash package.
const (
	BadCapacity = "flash: unsupported capacity (%#x bytes)"
	ReadFail    = "flash: read failed: %v"
)

// MaxCapacity is the largest supported flash device. Flash addresses are
// carried on 24 bits but the topmost bit is reserved as the medium tag in
// the unified data space, leaving 8 MiB addressable.
const MaxCapacity = 0x800000

// instructions understood by the flash device.
const (
	cmdRead         = 0x03
	cmdPowerDown    = 0xb9
	cmdPowerDownOff = 0xab
)

// Flash is the synchronous read client for the external serial flash device.
// The device is read-only from the point of view of the storage core;
// programming happens out-of-band.
type Flash struct {
	port     spi.Peripheral
	capacity uint32
}

// NewFlash is the preferred method of initialisation for the Flash type.
// Capacity is the total addressable size of the device in bytes.
func NewFlash(port spi.Peripheral, capacity uint32) (*Flash, error) {
	if capacity == 0 || capacity > MaxCapacity {
		return nil, curated.Errorf(BadCapacity, capacity)
	}
	return &Flash{
		port:     port,
		capacity: capacity,
	}, nil
}

// Capacity of the flash device in bytes.
func (fl *Flash) Capacity() uint32 {
	return fl.capacity
}

// Read len(data) bytes starting at address. The address space is circular:
// the starting address is taken modulo the device capacity and a read that
// runs past the end of the device continues from address zero.
//
// Rather than relying on the device's internal address counter wrapping in
// hardware, a read that spans the capacity boundary is split and a second
// read command issued for the remainder.
func (fl *Flash) Read(address uint32, data []byte) error {
	address %= fl.capacity

	for len(data) > 0 {
		n := uint32(len(data))
		if remaining := fl.capacity - address; n > remaining {
			n = remaining
		}
		if err := fl.readBlock(address, data[:n]); err != nil {
			return curated.Errorf(ReadFail, err)
		}
		data = data[n:]
		address = 0
	}

	return nil
}

// readBlock reads a range that is known not to cross the capacity boundary.
// The command header is the read instruction followed by the big-endian
// 24-bit address.
func (fl *Flash) readBlock(address uint32, data []byte) error {
	header := []byte{
		cmdRead,
		byte(address >> 16),
		byte(address >> 8),
		byte(address),
	}

	return spi.Transaction(fl.port, func() error {
		if err := fl.port.Transfer(header); err != nil {
			return err
		}
		return fl.port.Transfer(data)
	})
}

// Sleep puts the flash device into its low-power state. Reads are not valid
// until the next call to Wake().
func (fl *Flash) Sleep() error {
	return fl.instruction(cmdPowerDown)
}

// Wake brings the flash device out of its low-power state.
func (fl *Flash) Wake() error {
	return fl.instruction(cmdPowerDownOff)
}

func (fl *Flash) instruction(cmd byte) error {
	return spi.Transaction(fl.port, func() error {
		return fl.port.Transfer([]byte{cmd})
	})
}
