/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

// Button identifies the pressed pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is the keyboard state sampled with an input event. Space is the
// held space bar, used as a pan modifier.
type Modifiers struct {
	Shift, Ctrl, Meta, Alt, Space bool
}

// Additive reports whether the selection should be extended instead of replaced.
func (m Modifiers) Additive() bool { return m.Shift || m.Ctrl || m.Meta }

// Command reports whether the platform command key (Ctrl or Cmd) is held.
func (m Modifiers) Command() bool { return m.Ctrl || m.Meta }

// PointerEvent carries a pointer position in screen pixels.
type PointerEvent struct {
	X, Y   float64
	Button Button
	Mods   Modifiers
}

// WheelEvent is a scroll with deltas in screen pixels; negative DY scrolls up.
type WheelEvent struct {
	X, Y   float64
	DX, DY float64
	Mods   Modifiers
}

// Key names match fyne.KeyName so UI code can forward them unchanged.
type Key string

const (
	KeyA         Key = "A"
	KeyC         Key = "C"
	KeyD         Key = "D"
	KeyV         Key = "V"
	KeyY         Key = "Y"
	KeyZ         Key = "Z"
	KeyDelete    Key = "Delete"
	KeyBackspace Key = "BackSpace"
	KeyLeft      Key = "Left"
	KeyRight     Key = "Right"
	KeyUp        Key = "Up"
	KeyDown      Key = "Down"
	KeyEscape    Key = "Escape"
)

// KeyEvent is a key press. InTextInput is set while focus is in a text field;
// every shortcut is suppressed then.
type KeyEvent struct {
	Key         Key
	Mods        Modifiers
	InTextInput bool
}
