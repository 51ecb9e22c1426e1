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

// Package curated is the error type used throughout Pocketmem. A curated
// error is created with a pattern string, in the manner of fmt.Errorf():
//
//	curated.Errorf(eeprom.JournalCorrupt, size)
//
// The pattern is retained so that callers can test for a category of error
// without string comparison of the formatted message:
//
//	if curated.Has(err, eeprom.JournalCorrupt) {
//		// boot in degraded state
//	}
//
// Packages that produce errors which callers are expected to test for should
// export the pattern as a const. Errors that are only ever reported to the
// user need not be curated at all; plain fmt.Errorf() is fine for those.
package curated
