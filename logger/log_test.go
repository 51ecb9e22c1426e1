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

package logger_test

import (
	"strings"
	"testing"

	"github.com/pocketmem/pocketmem/logger"
	"github.com/pocketmem/pocketmem/test"
)

func TestCentralLogger(t *testing.T) {
	logger.Clear()

	s := &strings.Builder{}
	logger.Write(s)
	test.ExpectEquality(t, s.String(), "")

	logger.Log("test", "this is a test")
	logger.Write(s)
	test.ExpectEquality(t, s.String(), "test: this is a test\n")

	// identical entries are not repeated verbatim
	logger.Log("test", "this is a test")
	s.Reset()
	logger.Write(s)
	test.ExpectEquality(t, s.String(), "test: this is a test (repeat x2)\n")
}

func TestTail(t *testing.T) {
	logger.Clear()

	logger.Log("test", "a")
	logger.Log("test", "b")
	logger.Log("test", "c")

	s := &strings.Builder{}
	logger.Tail(s, 2)
	test.ExpectEquality(t, s.String(), "test: b\ntest: c\n")

	// asking for more entries than exist is not an error
	s.Reset()
	logger.Tail(s, 100)
	test.ExpectEquality(t, s.String(), "test: a\ntest: b\ntest: c\n")
}

func TestNewlineRemoval(t *testing.T) {
	logger.Clear()

	logger.Log("test", "two\nlines")

	s := &strings.Builder{}
	logger.Write(s)
	test.ExpectEquality(t, s.String(), "test: twolines\n")
}
