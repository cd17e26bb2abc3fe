//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"venueplan/internal/editor"
	"venueplan/internal/render"
)

// PlanCanvas is the interactive floor-plan widget. It forwards pointer, wheel
// and keyboard input to the controller and shows the rasterized scene.
// Fyne delivers every callback on the main goroutine, which is the
// controller's single owner.
type PlanCanvas struct {
	widget.BaseWidget

	ctrl   *editor.Controller
	theme  render.Theme
	raster *fynecanvas.Raster

	mods    editor.Modifiers
	button  editor.Button
	pressed bool
	last    fyne.Position

	// OnChange runs after input that requested a new frame.
	OnChange func()
}

var (
	_ fyne.Draggable    = (*PlanCanvas)(nil)
	_ fyne.Scrollable   = (*PlanCanvas)(nil)
	_ fyne.Focusable    = (*PlanCanvas)(nil)
	_ fyne.Shortcutable = (*PlanCanvas)(nil)
	_ desktop.Mouseable = (*PlanCanvas)(nil)
	_ desktop.Hoverable = (*PlanCanvas)(nil)
	_ desktop.Keyable   = (*PlanCanvas)(nil)
)

// NewPlanCanvas builds a canvas bound to c.
func NewPlanCanvas(c *editor.Controller) *PlanCanvas {
	p := &PlanCanvas{ctrl: c, theme: render.DefaultTheme()}
	p.raster = fynecanvas.NewRaster(p.draw)
	p.raster.ScaleMode = fynecanvas.ImageScaleFastest
	p.ExtendBaseWidget(p)
	return p
}

// Controller returns the bound controller.
func (p *PlanCanvas) Controller() *editor.Controller { return p.ctrl }

func (p *PlanCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.raster)
}

func (p *PlanCanvas) MinSize() fyne.Size { return fyne.NewSize(640, 480) }

// Resize keeps the viewport in widget units so pointer positions map 1:1.
func (p *PlanCanvas) Resize(size fyne.Size) {
	p.ctrl.Viewport().SetSize(float64(size.Width), float64(size.Height))
	p.BaseWidget.Resize(size)
	p.ctrl.Frames().Request()
	p.sync()
}

func (p *PlanCanvas) draw(w, h int) image.Image {
	vp := p.ctrl.Viewport()
	if vp.Width <= 0 || vp.Height <= 0 {
		vp.SetSize(float64(w), float64(h))
	}
	return render.Frame(p.ctrl, &p.theme)
}

// sync refreshes the raster when the controller asked for a frame.
func (p *PlanCanvas) sync() {
	if !p.ctrl.Frames().Take() {
		return
	}
	p.raster.Refresh()
	if p.OnChange != nil {
		p.OnChange()
	}
}

// Redraw forces a new frame, e.g. after a menu command.
func (p *PlanCanvas) Redraw() {
	p.ctrl.Frames().Request()
	p.sync()
}

func (p *PlanCanvas) pointer(pos fyne.Position, b editor.Button, mods editor.Modifiers) editor.PointerEvent {
	return editor.PointerEvent{X: float64(pos.X), Y: float64(pos.Y), Button: b, Mods: mods}
}

func (p *PlanCanvas) MouseDown(e *desktop.MouseEvent) {
	p.requestFocus()
	p.mods = mouseModifiers(e.Modifier, p.mods.Space)
	p.button = buttonOf(e.Button)
	p.pressed = true
	p.last = e.Position
	p.ctrl.PointerDown(p.pointer(e.Position, p.button, p.mods))
	p.sync()
}

func (p *PlanCanvas) MouseUp(e *desktop.MouseEvent) {
	if !p.pressed {
		return
	}
	p.pressed = false
	p.ctrl.PointerUp(p.pointer(e.Position, buttonOf(e.Button), mouseModifiers(e.Modifier, p.mods.Space)))
	p.sync()
}

func (p *PlanCanvas) Dragged(e *fyne.DragEvent) {
	p.last = e.Position
	p.ctrl.PointerMove(p.pointer(e.Position, p.button, p.mods))
	p.sync()
}

func (p *PlanCanvas) DragEnd() {
	if !p.pressed {
		return
	}
	p.pressed = false
	p.ctrl.PointerUp(p.pointer(p.last, p.button, p.mods))
	p.sync()
}

func (p *PlanCanvas) MouseIn(*desktop.MouseEvent) {}

func (p *PlanCanvas) MouseMoved(e *desktop.MouseEvent) {
	if p.pressed {
		return
	}
	p.ctrl.PointerMove(p.pointer(e.Position, editor.ButtonPrimary, mouseModifiers(e.Modifier, p.mods.Space)))
	p.sync()
}

func (p *PlanCanvas) MouseOut() {}

// Scrolled zooms around the cursor with Ctrl/Cmd held and pans otherwise.
// Fyne reports positive DY for scrolling up.
func (p *PlanCanvas) Scrolled(e *fyne.ScrollEvent) {
	p.ctrl.Wheel(editor.WheelEvent{
		X: float64(e.Position.X), Y: float64(e.Position.Y),
		DX: -float64(e.Scrolled.DX), DY: -float64(e.Scrolled.DY),
		Mods: p.mods,
	})
	p.sync()
}

func (p *PlanCanvas) FocusGained() {}

func (p *PlanCanvas) FocusLost() {
	p.mods = editor.Modifiers{}
	if p.pressed {
		p.pressed = false
		p.ctrl.Cancel()
		p.sync()
	}
}

func (p *PlanCanvas) TypedRune(rune) {}

func (p *PlanCanvas) TypedKey(e *fyne.KeyEvent) {
	if p.ctrl.HandleKey(editor.KeyEvent{Key: editor.Key(e.Name), Mods: p.mods}) {
		p.sync()
	}
}

func (p *PlanCanvas) KeyDown(e *fyne.KeyEvent) { p.mods = trackModifier(p.mods, e.Name, true) }

func (p *PlanCanvas) KeyUp(e *fyne.KeyEvent) { p.mods = trackModifier(p.mods, e.Name, false) }

// TypedShortcut forwards Ctrl/Cmd combinations, which fyne delivers as
// shortcuts instead of key events.
func (p *PlanCanvas) TypedShortcut(s fyne.Shortcut) {
	ev, ok := shortcutKey(s)
	if !ok {
		return
	}
	if p.ctrl.HandleKey(ev) {
		p.sync()
	}
}

func (p *PlanCanvas) requestFocus() {
	if app := fyne.CurrentApp(); app != nil {
		if c := app.Driver().CanvasForObject(p); c != nil {
			c.Focus(p)
		}
	}
}

func buttonOf(b desktop.MouseButton) editor.Button {
	switch {
	case b&desktop.MouseButtonSecondary != 0:
		return editor.ButtonSecondary
	case b&desktop.MouseButtonTertiary != 0:
		return editor.ButtonMiddle
	}
	return editor.ButtonPrimary
}

func mouseModifiers(m fyne.KeyModifier, space bool) editor.Modifiers {
	return editor.Modifiers{
		Shift: m&fyne.KeyModifierShift != 0,
		Ctrl:  m&fyne.KeyModifierControl != 0,
		Meta:  m&fyne.KeyModifierSuper != 0,
		Alt:   m&fyne.KeyModifierAlt != 0,
		Space: space,
	}
}

func trackModifier(m editor.Modifiers, k fyne.KeyName, down bool) editor.Modifiers {
	switch k {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		m.Shift = down
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		m.Ctrl = down
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		m.Meta = down
	case desktop.KeyAltLeft, desktop.KeyAltRight:
		m.Alt = down
	case fyne.KeySpace:
		m.Space = down
	}
	return m
}

func shortcutKey(s fyne.Shortcut) (editor.KeyEvent, bool) {
	cmd := editor.Modifiers{Ctrl: true}
	switch sc := s.(type) {
	case *fyne.ShortcutCopy:
		return editor.KeyEvent{Key: editor.KeyC, Mods: cmd}, true
	case *fyne.ShortcutPaste:
		return editor.KeyEvent{Key: editor.KeyV, Mods: cmd}, true
	case *fyne.ShortcutSelectAll:
		return editor.KeyEvent{Key: editor.KeyA, Mods: cmd}, true
	case *desktop.CustomShortcut:
		return editor.KeyEvent{Key: editor.Key(sc.KeyName), Mods: mouseModifiers(sc.Modifier, false)}, true
	}
	return editor.KeyEvent{}, false
}
