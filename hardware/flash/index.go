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
	"fmt"
	"strings"

	"github.com/pocketmem/pocketmem/curated"
)

// BadIndex is the error pattern returned when the flash index cannot be read
// or does not carry the expected signature.
const BadIndex = "flash index: %v"

// layout of the index kept at the start of the flash device. the index has a
// fixed number of slots; a slot with an ID of zero is unused.
const (
	signature      = 0x6367
	IndexAddr      = 32
	IndexEntrySize = 64
	IndexNumSlots  = 32
	DataStartAddr  = 2080
)

// Entry is one application slot in the flash index. All multi-byte fields
// are stored little-endian; strings are zero-padded ASCII.
type Entry struct {
	ID          uint8
	ImageCRC    uint16
	CodeCRC     uint16
	Version     uint16
	BootVersion uint16
	CodeSize    uint16
	PageHeight  uint8

	// EEPROM space allocated to the application. zero size if none
	EepromAddr uint16
	EepromSize uint16

	// location of the application image in flash
	ImageAddr uint32
	ImageSize uint32

	// build date, packed as (year-2020)<<9 | month<<5 | day
	BuildDate uint16

	Name   string
	Author string
}

// Date unpacks the build date of the entry.
func (ent Entry) Date() (year, month, day int) {
	return int(ent.BuildDate>>9) + 2020, int(ent.BuildDate>>5) & 0xf, int(ent.BuildDate) & 0x1f
}

func (ent Entry) String() string {
	y, m, d := ent.Date()
	return fmt.Sprintf("%3d  %-16s %-16s v%-5d %6d bytes  %04d-%02d-%02d",
		ent.ID, ent.Name, ent.Author, ent.Version, ent.ImageSize, y, m, d)
}

// ReadCatalog reads the application index from the flash device. Unused
// slots are omitted from the returned list.
func ReadCatalog(fl *Flash) ([]Entry, error) {
	var sig [2]byte
	if err := fl.Read(0, sig[:]); err != nil {
		return nil, curated.Errorf(BadIndex, err)
	}
	if leUint16(sig[:]) != signature {
		return nil, curated.Errorf(BadIndex,
			fmt.Errorf("device not initialised (signature %#04x)", leUint16(sig[:])))
	}

	raw := make([]byte, IndexEntrySize*IndexNumSlots)
	if err := fl.Read(IndexAddr, raw); err != nil {
		return nil, curated.Errorf(BadIndex, err)
	}

	var entries []Entry
	for i := 0; i < IndexNumSlots; i++ {
		ent := decodeEntry(raw[i*IndexEntrySize : (i+1)*IndexEntrySize])
		if ent.ID != 0 {
			entries = append(entries, ent)
		}
	}

	return entries, nil
}

func decodeEntry(data []byte) Entry {
	return Entry{
		ID:          data[0],
		ImageCRC:    leUint16(data[1:]),
		CodeCRC:     leUint16(data[3:]),
		Version:     leUint16(data[5:]),
		BootVersion: leUint16(data[7:]),
		CodeSize:    leUint16(data[9:]),
		PageHeight:  data[11],
		EepromAddr:  leUint16(data[12:]),
		EepromSize:  leUint16(data[14:]),
		ImageAddr:   leUint24(data[16:]),
		ImageSize:   leUint24(data[27:]),
		BuildDate:   leUint16(data[30:]),
		Name:        strings.TrimRight(string(data[32:48]), "\x00"),
		Author:      strings.TrimRight(string(data[48:64]), "\x00"),
	}
}

func leUint16(data []byte) uint16 {
	return uint16(data[0]) | uint16(data[1])<<8
}

func leUint24(data []byte) uint32 {
	return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
}
