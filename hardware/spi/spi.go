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

// Peripheral is one chip-select line on the shared serial bus. Implementations
// are expected to be synchronous: Transfer() does not return until every byte
// has been exchanged.
//
// The select/transfer/deselect bracket is a critical section. No other bus
// transaction may be interleaved with it. In the single-threaded execution
// model of the storage core this is satisfied by never yielding control
// between Select() and Deselect() - use Transaction() to get the bracket
// right on every exit path.
type Peripheral interface {
	Select()
	Deselect()

	// Transfer is full-duplex: every byte in data is clocked out to the
	// peripheral and replaced in-place with the byte clocked in.
	Transfer(data []byte) error
}

// Transaction brackets fn with the select/deselect pair for the peripheral.
// The peripheral is deselected on every exit path.
func Transaction(per Peripheral, fn func() error) error {
	per.Select()
	defer per.Deselect()
	return fn()
}
