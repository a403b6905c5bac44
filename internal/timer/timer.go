// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package timer models the loop's deadlines as plain values so the
// scheduler step stays a pure function of its state and the tick time.
package timer

// Timer is a one-shot deadline on the millisecond tick clock.
type Timer struct {
	Armed    bool
	Deadline int64
}

// Arm returns a timer that expires d milliseconds after now.
func Arm(now, d int64) Timer {
	return Timer{Armed: true, Deadline: now + d}
}

// Active reports whether the timer is armed and its deadline is still ahead.
func (t Timer) Active(now int64) bool {
	return t.Armed && now < t.Deadline
}

// Expire disarms the timer once now has reached the deadline. expired is
// true only on the call that performed the disarm.
func (t Timer) Expire(now int64) (next Timer, expired bool) {
	if t.Armed && now >= t.Deadline {
		return Timer{Deadline: t.Deadline}, true
	}
	return t, false
}
