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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides the facility to divide flags into modes and
// sub-modes, of the form:
//
//	pocketmem [flags] mode [mode flags] [arguments]
//
// Each mode carries its own flag set. The typical sequence is NewArgs() with
// the command line arguments, AddSubModes() with the list of recognised
// modes, Parse(), and then NewMode() to descend into the selected mode and
// repeat with that mode's own flags.
//
// Sub-mode matching is case insensitive and the first sub-mode in the list
// acts as the default when the user names no mode at all.
package modalflag
