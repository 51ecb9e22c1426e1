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

package sim

import (
	"fmt"
	"os"

	"github.com/pocketmem/pocketmem/curated"
)

// BadImage is the error pattern returned when a device image file cannot be
// used.
const BadImage = "sim: image: %v"

// LoadImage reads a device image from a file. The image is padded to size
// with the erased-state byte; an image larger than the device is an error.
func LoadImage(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf(BadImage, err)
	}
	if len(data) > size {
		return nil, curated.Errorf(BadImage,
			fmt.Errorf("%s is larger than the device (%d bytes, device holds %d)", path, len(data), size))
	}

	img := make([]byte, size)
	copy(img, data)
	for i := len(data); i < size; i++ {
		img[i] = eraseByte
	}
	return img, nil
}

// SaveImage writes a device image to a file.
func SaveImage(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return curated.Errorf(BadImage, err)
	}
	return nil
}
