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

// Package flash is the read path for the external serial flash device. Reads
// are synchronous and the address space is circular: a read that runs past
// the device capacity continues from address zero.
//
// The package also understands the index kept at the start of the device,
// which records the location and identity of every application image stored
// in flash. ReadCatalog() returns the decoded index.
package flash
