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

import "sync/atomic"

// FrameScheduler coalesces redraw requests into a single pending flag. Every
// request replaces the previous one; the presentation loop takes at most one
// frame per refresh.
type FrameScheduler struct {
	pending  atomic.Bool
	requests atomic.Uint64
}

// Request marks a frame as pending.
func (f *FrameScheduler) Request() {
	f.requests.Add(1)
	f.pending.Store(true)
}

// Take clears the pending flag and reports whether a frame was pending.
func (f *FrameScheduler) Take() bool { return f.pending.CompareAndSwap(true, false) }

func (f *FrameScheduler) Pending() bool { return f.pending.Load() }

// Requests returns the number of requests made so far, for diagnostics.
func (f *FrameScheduler) Requests() uint64 { return f.requests.Load() }
