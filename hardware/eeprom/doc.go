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

// Package eeprom is the write path of the storage core: a small
// EEPROM-class persistent store holding configuration and save data.
//
// The package is layered. Device is the raw byte-level primitive (Driver
// implements it over the serial bus). Partition adds the per-application
// base offset, resolved once from the on-device index. Neither makes any
// atomicity guarantee.
//
// Crash safety is the Journal's job. A journalled write copies the bytes
// about to be overwritten into a shadow region of the EEPROM before the
// destructive write begins; an interrupted write is detected and rolled
// back by Recover() at the next boot. Recover() must run before anything
// else touches the store and before the first display refresh, because the
// journal borrows the display frame buffer as its only RAM-side transfer
// buffer.
package eeprom
