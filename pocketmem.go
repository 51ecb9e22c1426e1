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

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pocketmem/pocketmem/curated"
	"github.com/pocketmem/pocketmem/data"
	"github.com/pocketmem/pocketmem/display"
	"github.com/pocketmem/pocketmem/gui"
	"github.com/pocketmem/pocketmem/hardware/eeprom"
	"github.com/pocketmem/pocketmem/hardware/flash"
	"github.com/pocketmem/pocketmem/hardware/spi"
	"github.com/pocketmem/pocketmem/logger"
	"github.com/pocketmem/pocketmem/modalflag"
	"github.com/pocketmem/pocketmem/profile"
	"github.com/pocketmem/pocketmem/sim"
	"github.com/pocketmem/pocketmem/version"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("DUMP", "CATALOG", "RECOVER", "VIEW")
	showVersion := md.AddBool("version", false, "print version and exit")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	if *showVersion {
		vers, rev, release := version.Version()
		if release {
			fmt.Printf("%s %s\n", version.ApplicationName, vers)
		} else {
			fmt.Printf("%s %s (%s)\n", version.ApplicationName, vers, rev)
		}
		os.Exit(0)
	}

	switch md.Mode() {
	case "DUMP":
		err = dump(md)
	case "CATALOG":
		err = catalog(md)
	case "RECOVER":
		err = recoverStore(md)
	case "VIEW":
		err = view(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

// loadProfile for the device being inspected. an empty path means the
// reference device.
func loadProfile(path string) (profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}
	return profile.Load(path)
}

// transferBudget is generous for a simulated chip. on real hardware the
// figure comes from the bus clock and the longest transfer
const transferBudget = 100 * time.Millisecond

// openFlash loads a flash image file into a simulated chip and attaches the
// driver.
func openFlash(prf profile.Profile, path string) (*flash.Flash, error) {
	img, err := sim.LoadImage(path, int(prf.Flash.Capacity))
	if err != nil {
		return nil, err
	}

	chip := sim.NewFlash(prf.Flash.Capacity)
	chip.Load(img)

	port := spi.NewGuard(chip, "flash", transferBudget)
	return flash.NewFlash(port, prf.Flash.Capacity)
}

// openEEPROM loads an EEPROM image file into a simulated chip and attaches
// the driver. the chip is returned alongside so that the image can be saved
// back after modification.
func openEEPROM(prf profile.Profile, path string) (*eeprom.Driver, *sim.EEPROM, error) {
	img, err := sim.LoadImage(path, prf.Eeprom.Capacity)
	if err != nil {
		return nil, nil, err
	}

	chip := sim.NewEEPROM(prf.Eeprom.Capacity)
	chip.Load(img)

	port := spi.NewGuard(chip, "eeprom", transferBudget)
	drv, err := eeprom.NewDriver(port, prf.Eeprom.Capacity)
	if err != nil {
		return nil, nil, err
	}

	return drv, chip, nil
}

func dump(md *modalflag.Modes) error {
	md.NewMode()

	prfPath := md.AddString("profile", "", "device profile file")
	memPath := md.AddString("mem", "", "directly-mapped memory image")
	n := md.AddInt("n", 16, "number of bytes to read")
	echo := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	setEcho(*echo)

	if len(md.RemainingArgs()) != 2 {
		return fmt.Errorf("flash image and tagged address required for %s mode", md)
	}

	prf, err := loadProfile(*prfPath)
	if err != nil {
		return err
	}

	fl, err := openFlash(prf, md.GetArg(0))
	if err != nil {
		return err
	}

	ptr, err := data.ParsePointer(md.GetArg(1))
	if err != nil {
		return err
	}

	// the directly-mapped image is optional. dumps of flash pointers don't
	// need one
	var mem []byte
	if *memPath != "" {
		mem, err = os.ReadFile(*memPath)
		if err != nil {
			return err
		}
	}

	dispatch := data.NewDispatcher(mem, fl, 0)

	buf := make([]byte, *n)
	if err := dispatch.Read(ptr, buf); err != nil {
		return err
	}

	fmt.Printf("%v:\n", ptr)
	for i := 0; i < len(buf); i += 16 {
		j := i + 16
		if j > len(buf) {
			j = len(buf)
		}
		fmt.Printf("  %#06x: % 02x\n", ptr.Offset()+uint32(i), buf[i:j])
	}

	return nil
}

func catalog(md *modalflag.Modes) error {
	md.NewMode()

	prfPath := md.AddString("profile", "", "device profile file")
	echo := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	setEcho(*echo)

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("flash image required for %s mode", md)
	}

	prf, err := loadProfile(*prfPath)
	if err != nil {
		return err
	}

	fl, err := openFlash(prf, md.GetArg(0))
	if err != nil {
		return err
	}

	entries, err := flash.ReadCatalog(fl)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("catalog is empty")
		return nil
	}

	for _, ent := range entries {
		fmt.Println(ent.String())
	}

	return nil
}

func recoverStore(md *modalflag.Modes) error {
	md.NewMode()

	prfPath := md.AddString("profile", "", "device profile file")
	dryRun := md.AddBool("dryrun", false, "report without writing the image back")
	echo := md.AddBool("log", true, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	setEcho(*echo)

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("eeprom image required for %s mode", md)
	}

	prf, err := loadProfile(*prfPath)
	if err != nil {
		return err
	}

	path := md.GetArg(0)
	drv, chip, err := openEEPROM(prf, path)
	if err != nil {
		return err
	}

	jnl, err := eeprom.NewJournal(drv, prf.Journal(), display.NewDisplay())
	if err != nil {
		return err
	}

	err = jnl.Recover()
	if err != nil {
		if curated.Is(err, eeprom.JournalCorrupt) {
			// nothing can be written back safely
			fmt.Printf("journal is corrupt, image left untouched: %v\n", err)
			return nil
		}
		return err
	}

	if jnl.RolledBack() {
		fmt.Println("interrupted write rolled back")
	} else {
		fmt.Println("journal is clean")
	}

	if !*dryRun {
		return sim.SaveImage(path, chip.Image())
	}

	return nil
}

func view(md *modalflag.Modes) error {
	md.NewMode()

	prfPath := md.AddString("profile", "", "device profile file")
	scale := md.AddInt("scale", 4, "window scaling factor")
	echo := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	setEcho(*echo)

	if len(md.RemainingArgs()) != 2 {
		return fmt.Errorf("flash image and frame address required for %s mode", md)
	}

	prf, err := loadProfile(*prfPath)
	if err != nil {
		return err
	}

	fl, err := openFlash(prf, md.GetArg(0))
	if err != nil {
		return err
	}

	ptr, err := data.ParsePointer(md.GetArg(1))
	if err != nil {
		return err
	}
	if ptr.Medium() != data.External {
		return fmt.Errorf("frame address must be a flash pointer (%v)", ptr)
	}

	frame := make([]byte, display.BufferSize)
	if err := fl.Read(ptr.Offset(), frame); err != nil {
		return err
	}

	dsp := display.NewDisplay()
	if err := dsp.LoadFrame(frame); err != nil {
		return err
	}

	win, err := gui.NewWindow(*scale)
	if err != nil {
		return err
	}
	defer win.Destroy()

	if err := win.Render(dsp); err != nil {
		return err
	}
	win.Wait()

	return nil
}

func setEcho(on bool) {
	if on {
		logger.SetEcho(os.Stdout)
	} else {
		logger.SetEcho(nil)
	}
}
