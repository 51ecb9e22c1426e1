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

// Package gui is an SDL viewer for the display buffer. It exists so that
// frame assets pulled out of a device image can be looked at on a desktop;
// the real display is a memory-mapped LCD and has no such machinery.
//
// Render() takes part in the refresh contract of the display package: while
// a frame is on screen being built the scratch arena is off limits, exactly
// as it would be on the device.
package gui

import (
	"github.com/pocketmem/pocketmem/curated"
	"github.com/pocketmem/pocketmem/display"
	"github.com/veandco/go-sdl2/sdl"
)

// error patterns returned by the gui package.
const (
	SetupError  = "gui: setup: %v"
	RenderError = "gui: render: %v"
)

const windowTitle = "pocketmem"

// Window is a desktop window displaying the contents of a display buffer,
// scaled up from the native 128x128.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
}

// NewWindow is the preferred method of initialisation for the Window type.
func NewWindow(scale int) (*Window, error) {
	if scale < 1 {
		scale = 1
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, curated.Errorf(SetupError, err)
	}

	window, err := sdl.CreateWindow(windowTitle,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(display.Width*scale), int32(display.Height*scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, curated.Errorf(SetupError, err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, curated.Errorf(SetupError, err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING, display.Width, display.Height)
	if err != nil {
		return nil, curated.Errorf(SetupError, err)
	}

	return &Window{
		window:   window,
		renderer: renderer,
		texture:  texture,
	}, nil
}

// Render the current contents of the display buffer. The display is held in
// the refreshing state for the duration, the same way the LCD controller
// holds it while a frame is being clocked out.
func (win *Window) Render(dsp *display.Display) error {
	if err := dsp.BeginRefresh(); err != nil {
		return curated.Errorf(RenderError, err)
	}
	defer dsp.EndRefresh()

	pixels, _, err := win.texture.Lock(nil)
	if err != nil {
		return curated.Errorf(RenderError, err)
	}

	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			// expand the 4-bit grey level to the full 8-bit range
			grey := dsp.Pixel(x, y) * 0x11

			off := (y*display.Width + x) * 4
			pixels[off] = grey   // b
			pixels[off+1] = grey // g
			pixels[off+2] = grey // r
			pixels[off+3] = 0xff // a
		}
	}
	win.texture.Unlock()

	if err := win.renderer.Clear(); err != nil {
		return curated.Errorf(RenderError, err)
	}
	if err := win.renderer.Copy(win.texture, nil, nil); err != nil {
		return curated.Errorf(RenderError, err)
	}
	win.renderer.Present()

	return nil
}

// Wait for the window to be dismissed, either by closing it or with the
// escape key.
func (win *Window) Wait() {
	for {
		switch ev := sdl.WaitEvent().(type) {
		case *sdl.QuitEvent:
			return
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_ESCAPE {
				return
			}
		}
	}
}

// Destroy the window and release SDL resources.
func (win *Window) Destroy() {
	win.texture.Destroy()
	win.renderer.Destroy()
	win.window.Destroy()
	sdl.Quit()
}
