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

package spi

import (
	"time"

	"github.com/pocketmem/pocketmem/curated"
)

// DeviceUnresponsive is returned when a transfer exceeds the guard's time
// budget. The error is surfaced to the caller and never silently retried;
// retry policy belongs to the caller.
const DeviceUnresponsive = "spi: %s: device unresponsive (transfer exceeded %v)"

// Guard wraps a Peripheral with a bounded time budget per transfer. The
// underlying transfer protocol is assumed to complete deterministically in
// bounded time so any transfer running past the budget indicates a device
// that has stopped responding.
type Guard struct {
	per    Peripheral
	label  string
	budget time.Duration
}

// NewGuard is the preferred method of initialisation for the Guard type.
func NewGuard(per Peripheral, label string, budget time.Duration) *Guard {
	return &Guard{
		per:    per,
		label:  label,
		budget: budget,
	}
}

// Select implements the Peripheral interface.
func (grd *Guard) Select() {
	grd.per.Select()
}

// Deselect implements the Peripheral interface.
func (grd *Guard) Deselect() {
	grd.per.Deselect()
}

// Transfer implements the Peripheral interface.
func (grd *Guard) Transfer(data []byte) error {
	start := time.Now()
	err := grd.per.Transfer(data)
	if elapsed := time.Since(start); elapsed > grd.budget {
		return curated.Errorf(DeviceUnresponsive, grd.label, grd.budget)
	}
	return err
}
