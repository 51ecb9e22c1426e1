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
	"github.com/pocketmem/pocketmem/hardware/spi"
)

// error patterns returned by the Driver implementation of the Device
// interface.
const (
	StuckBusy   = "eeprom: device stuck busy"
	BadCapacity = "eeprom: unsupported capacity (%#x bytes)"
)

// instructions understood by the EEPROM device.
const (
	cmdWriteEnable = 0x06
	cmdReadStatus  = 0x05
	cmdRead        = 0x03
	cmdWrite       = 0x02
)

const statusBusyMask = 0x01

// PageSize is the write page of the EEPROM device. A single write
// instruction must not cross a page boundary; the driver splits larger
// writes into per-page instructions.
const PageSize = 32

// maximum number of status polls before the device is considered wedged.
const maxBusyPolls = 4096

// maxCapacity follows from the 16-bit addresses of the wire protocol.
const maxCapacity = 0x10000

// Driver implements the Device interface over a serial bus peripheral,
// speaking the protocol of 25-series EEPROM chips.
type Driver struct {
	port     spi.Peripheral
	capacity int
}

// NewDriver is the preferred method of initialisation for the Driver type.
func NewDriver(port spi.Peripheral, capacity int) (*Driver, error) {
	if capacity <= 0 || capacity > maxCapacity {
		return nil, curated.Errorf(BadCapacity, capacity)
	}
	return &Driver{
		port:     port,
		capacity: capacity,
	}, nil
}

// Capacity implements the Device interface.
func (drv *Driver) Capacity() int {
	return drv.capacity
}

// Read implements the Device interface.
func (drv *Driver) Read(address uint16, data []byte) error {
	if int(address)+len(data) > drv.capacity {
		return curated.Errorf(OutOfRange, "read", address, len(data))
	}
	if len(data) == 0 {
		return nil
	}

	header := []byte{cmdRead, byte(address >> 8), byte(address)}
	return spi.Transaction(drv.port, func() error {
		if err := drv.port.Transfer(header); err != nil {
			return err
		}
		return drv.port.Transfer(data)
	})
}

// Write implements the Device interface. The write is split at page
// boundaries, with a write-enable instruction and a busy wait around every
// page. A power loss part way through leaves some pages written and some
// not.
func (drv *Driver) Write(address uint16, data []byte) error {
	if int(address)+len(data) > drv.capacity {
		return curated.Errorf(OutOfRange, "write", address, len(data))
	}

	for len(data) > 0 {
		if err := drv.waitReady(); err != nil {
			return err
		}

		if err := spi.Transaction(drv.port, func() error {
			return drv.port.Transfer([]byte{cmdWriteEnable})
		}); err != nil {
			return err
		}

		n := PageSize - int(address)%PageSize
		if n > len(data) {
			n = len(data)
		}

		// the transfer clobbers its buffer with the clocked-in bytes so the
		// payload is copied rather than sent in place
		cmd := make([]byte, 0, 3+n)
		cmd = append(cmd, cmdWrite, byte(address>>8), byte(address))
		cmd = append(cmd, data[:n]...)

		if err := spi.Transaction(drv.port, func() error {
			return drv.port.Transfer(cmd)
		}); err != nil {
			return err
		}

		address += uint16(n)
		data = data[n:]
	}

	return drv.waitReady()
}

// waitReady polls the status register until the device reports that the
// write cycle has finished.
func (drv *Driver) waitReady() error {
	for i := 0; i < maxBusyPolls; i++ {
		status := []byte{cmdReadStatus, 0x00}
		if err := spi.Transaction(drv.port, func() error {
			return drv.port.Transfer(status)
		}); err != nil {
			return err
		}
		if status[1]&statusBusyMask == 0 {
			return nil
		}
	}
	return curated.Errorf(StuckBusy)
}
