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

package curated_test

import (
	"testing"

	"github.com/pocketmem/pocketmem/curated"
	"github.com/pocketmem/pocketmem/test"
)

const (
	testError  = "test error: %s"
	wrapError  = "wrap error: %v"
	otherError = "other error"
)

func TestPatternMatching(t *testing.T) {
	err := curated.Errorf(testError, "detail")
	test.ExpectEquality(t, err.Error(), "test error: detail")

	test.ExpectSuccess(t, curated.IsAny(err))
	test.ExpectSuccess(t, curated.Is(err, testError))
	test.ExpectFailure(t, curated.Is(err, otherError))
}

func TestWrapping(t *testing.T) {
	inner := curated.Errorf(testError, "detail")
	outer := curated.Errorf(wrapError, inner)

	// Is() only matches the outermost pattern, Has() searches the chain
	test.ExpectFailure(t, curated.Is(outer, testError))
	test.ExpectSuccess(t, curated.Has(outer, testError))
	test.ExpectSuccess(t, curated.Has(outer, wrapError))
	test.ExpectFailure(t, curated.Has(outer, otherError))
}

func TestDeduplication(t *testing.T) {
	// adjacent duplicate message parts are folded when a curated error wraps
	// another with the same pattern
	inner := curated.Errorf("eeprom: %s", "device stuck busy")
	outer := curated.Errorf("eeprom: %v", inner)
	test.ExpectEquality(t, outer.Error(), "eeprom: device stuck busy")
}

func TestNil(t *testing.T) {
	test.ExpectFailure(t, curated.IsAny(nil))
	test.ExpectFailure(t, curated.Is(nil, testError))
	test.ExpectFailure(t, curated.Has(nil, testError))
}
