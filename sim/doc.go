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

// Package sim provides bus-level models of the two persistent-storage chips.
// They implement the spi.Peripheral interface and speak the same wire
// protocol as the real devices, so the flash and eeprom packages run against
// them unchanged.
//
// The EEPROM model can be armed to lose power after a chosen number of
// persisted bytes, which is what makes the crash-safety properties of the
// journal testable without hardware.
package sim
