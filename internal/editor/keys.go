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

// HandleKey applies a keyboard shortcut and reports whether it was consumed.
// Everything is suppressed while focus is in a text input.
func (c *Controller) HandleKey(ev KeyEvent) bool {
	if ev.InTextInput {
		return false
	}
	if ev.Key == KeyEscape {
		if c.active != nil {
			c.Cancel()
			return true
		}
		if !c.sel.Empty() {
			c.ClearSelection()
			return true
		}
		return false
	}
	if ev.Mods.Command() {
		switch ev.Key {
		case KeyZ:
			if ev.Mods.Shift {
				c.Redo()
			} else {
				c.Undo()
			}
			return true
		case KeyY:
			c.Redo()
			return true
		case KeyC:
			c.Copy()
			return true
		case KeyV:
			c.Paste()
			return true
		case KeyD:
			c.Duplicate()
			return true
		case KeyA:
			c.SelectAll()
			return true
		}
		return false
	}
	switch ev.Key {
	case KeyDelete, KeyBackspace:
		return c.DeleteSelection()
	case KeyLeft, KeyRight, KeyUp, KeyDown:
		if c.sel.Empty() {
			return false
		}
		step := c.opts.NudgeStep
		switch {
		case c.opts.GridSnap:
			step = c.opts.GridSize
		case ev.Mods.Shift:
			step = c.opts.NudgeStepLarge
		}
		var dx, dy float64
		switch ev.Key {
		case KeyLeft:
			dx = -step
		case KeyRight:
			dx = step
		case KeyUp:
			dy = -step
		case KeyDown:
			dy = step
		}
		c.Nudge(dx, dy)
		return true
	}
	return false
}
