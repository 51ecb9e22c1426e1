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
	"fmt"

	"github.com/pocketmem/pocketmem/curated"
	"github.com/pocketmem/pocketmem/logger"
)

// error patterns returned by the Journal type.
const (
	JournalCorrupt  = "journal: corrupt: %v"
	JournalTooLarge = "journal: payload too large (%d bytes, shadow holds %d)"
	NotRecovered    = "journal: write before boot recovery check"
	Degraded        = "journal: storage in degraded state"
	WriteFail       = "journal: write failed: %v"
	RecoverFail     = "journal: recovery failed: %v"
)

// Layout locates the journal within the persistent store. The journal lives
// in the EEPROM itself because that is the only storage guaranteed to
// survive a power loss.
//
// PendingAddr is a single byte that doubles as the commit flag: zero means
// the last write committed and the journal is stale, 0xff is the erased
// state of a device that has never armed the journal, and any other value
// means a write of that many bytes is pending. TargetAddr holds the
// absolute little-endian address the pending bytes belong to. ShadowAddr is
// the region holding the pre-image of the target bytes.
type Layout struct {
	PendingAddr uint16
	TargetAddr  uint16
	ShadowAddr  uint16
	ShadowSize  uint16
}

func (lay Layout) validate(dev Device) error {
	if lay.ShadowSize == 0 || lay.ShadowSize > 0xff {
		return fmt.Errorf("shadow size must fit the pending byte (%d)", lay.ShadowSize)
	}
	if int(lay.ShadowAddr)+int(lay.ShadowSize) > dev.Capacity() {
		return fmt.Errorf("shadow region past end of device")
	}
	if int(lay.PendingAddr) >= dev.Capacity() || int(lay.TargetAddr)+2 > dev.Capacity() {
		return fmt.Errorf("metadata past end of device")
	}
	return nil
}

// Scratch is a loan of RAM for the duration of one journal operation. The
// journal has essentially no memory of its own; the display subsystem loans
// out its frame buffer while no refresh is in flight.
//
// The slice returned by Acquire() is only valid until the corresponding
// Release(). It must never be retained.
type Scratch interface {
	Acquire(size int) ([]byte, error)
	Release()
}

// journal consistency states
const (
	journalBoot = iota
	journalReady
	journalFailed
)

// erasedPending is the value the pending byte reads on a factory-fresh
// device. It is reserved: a journalled write is never allowed to arm it, so
// reading it back always means the journal has never been armed.
const erasedPending = 0xff

// Journal makes a single logical write to a Partition all-or-nothing across
// power loss, using an undo log: the bytes about to be overwritten are
// copied to the shadow region before the destructive write begins, and an
// interrupted write is rolled back at the next boot.
//
// Undo, not redo: on any ambiguity the store is returned to the last
// known-good state. Partial new data is always discarded, never completed.
type Journal struct {
	dev     Device
	lay     Layout
	scratch Scratch
	state   int

	// whether the last Recover() performed a rollback
	rolledBack bool
}

// NewJournal is the preferred method of initialisation for the Journal type.
// Recover() must be called before the first Write().
func NewJournal(dev Device, lay Layout, scratch Scratch) (*Journal, error) {
	if err := lay.validate(dev); err != nil {
		return nil, curated.Errorf(JournalCorrupt, err)
	}
	return &Journal{
		dev:     dev,
		lay:     lay,
		scratch: scratch,
		state:   journalBoot,
	}, nil
}

// Write replaces the partition-relative range starting at address with data,
// atomically with respect to power loss at any byte boundary.
//
// The sequence is: copy the current target bytes to the shadow region and
// arm the pending byte (begin); write the new bytes to the target (apply);
// clear the pending byte (commit). Power loss before the pending byte is
// armed leaves the target untouched; power loss after leaves a pending
// journal entry that the next Recover() rolls back. Either way the target
// range reads as exactly the old or exactly the new content, never a mix.
func (jnl *Journal) Write(prt *Partition, address uint16, data []byte) error {
	switch jnl.state {
	case journalBoot:
		return curated.Errorf(NotRecovered)
	case journalFailed:
		return curated.Errorf(Degraded)
	}

	if len(data) == 0 {
		return nil
	}

	// the erased value is reserved so payloads are capped a byte short of
	// what the pending byte could otherwise express
	if len(data) > int(jnl.lay.ShadowSize) || len(data) >= erasedPending {
		return curated.Errorf(JournalTooLarge, len(data), jnl.lay.ShadowSize)
	}
	if int(address)+len(data) > int(prt.size) {
		return curated.Errorf(OutOfRange, "write", address, len(data))
	}

	target := prt.origin + address

	buf, err := jnl.scratch.Acquire(len(data))
	if err != nil {
		return curated.Errorf(WriteFail, err)
	}
	defer jnl.scratch.Release()

	// begin: preserve the pre-image of the target range, then the target
	// descriptor, then arm the pending byte. the pending byte is written
	// last so that an interruption anywhere in the begin phase leaves the
	// journal disarmed and the target untouched
	if err := jnl.dev.Read(target, buf); err != nil {
		return curated.Errorf(WriteFail, err)
	}
	if err := jnl.dev.Write(jnl.lay.ShadowAddr, buf); err != nil {
		return curated.Errorf(WriteFail, err)
	}
	if err := jnl.dev.Write(jnl.lay.TargetAddr, []byte{byte(target), byte(target >> 8)}); err != nil {
		return curated.Errorf(WriteFail, err)
	}
	if err := jnl.dev.Write(jnl.lay.PendingAddr, []byte{byte(len(data))}); err != nil {
		return curated.Errorf(WriteFail, err)
	}

	// apply. from here until commit, a power loss is rolled back at boot
	if err := jnl.dev.Write(target, data); err != nil {
		return curated.Errorf(WriteFail, err)
	}

	// commit
	if err := jnl.dev.Write(jnl.lay.PendingAddr, []byte{0x00}); err != nil {
		return curated.Errorf(WriteFail, err)
	}

	return nil
}

// Recover inspects the journal and rolls back any write that was interrupted
// between begin and commit. It must run once at boot, before the first
// display refresh and before anything else touches the store.
//
// Recover is idempotent: with a clean journal it is a no-op and may safely
// run any number of times. If an interrupted write is found the target range
// is restored from the shadow copy, through the scratch arena, and only then
// is the pending byte cleared - a second power loss during the restore
// re-runs the same restore at the following boot.
//
// A journal entry that fails its integrity checks cannot be resolved to a
// safe state. The error is reported, the store is marked degraded and every
// subsequent Write() is refused; unrelated subsystems are expected to carry
// on without persistent data.
func (jnl *Journal) Recover() error {
	jnl.rolledBack = false

	var pending [1]byte
	if err := jnl.dev.Read(jnl.lay.PendingAddr, pending[:]); err != nil {
		return curated.Errorf(RecoverFail, err)
	}

	n := int(pending[0])
	if n == 0 || n == erasedPending {
		// the last write committed, or the journal has never been armed on
		// this device. nothing to do
		jnl.state = journalReady
		return nil
	}

	if n > int(jnl.lay.ShadowSize) {
		jnl.state = journalFailed
		return curated.Errorf(JournalCorrupt,
			fmt.Errorf("pending size %d exceeds shadow region (%d bytes)", n, jnl.lay.ShadowSize))
	}

	var desc [2]byte
	if err := jnl.dev.Read(jnl.lay.TargetAddr, desc[:]); err != nil {
		return curated.Errorf(RecoverFail, err)
	}
	target := uint16(desc[0]) | uint16(desc[1])<<8

	if int(target)+n > jnl.dev.Capacity() {
		jnl.state = journalFailed
		return curated.Errorf(JournalCorrupt,
			fmt.Errorf("target range past end of device (address %#04x, %d bytes)", target, n))
	}

	buf, err := jnl.scratch.Acquire(n)
	if err != nil {
		return curated.Errorf(RecoverFail, err)
	}
	defer jnl.scratch.Release()

	if err := jnl.dev.Read(jnl.lay.ShadowAddr, buf); err != nil {
		return curated.Errorf(RecoverFail, err)
	}
	if err := jnl.dev.Write(target, buf); err != nil {
		return curated.Errorf(RecoverFail, err)
	}
	if err := jnl.dev.Write(jnl.lay.PendingAddr, []byte{0x00}); err != nil {
		return curated.Errorf(RecoverFail, err)
	}

	logger.Logf("journal", "interrupted write rolled back (address %#04x, %d bytes)", target, n)

	jnl.rolledBack = true
	jnl.state = journalReady
	return nil
}

// RolledBack reports whether the most recent Recover() found an interrupted
// write and restored the pre-image. False after a clean recovery.
func (jnl *Journal) RolledBack() bool {
	return jnl.rolledBack
}
