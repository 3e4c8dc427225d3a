// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package progress

import "time"

// Queue hands out scheduled events once, in order, as playback advances.
// It is not safe for concurrent use; the owning session serialises access.
type Queue struct {
	events []Event
	next   int
}

// NewQueue copies a schedule produced by Schedule.
func NewQueue(events []Event) *Queue {
	return &Queue{events: append([]Event(nil), events...)}
}

// Due returns every not-yet-delivered event with At <= position.
// A position moving backwards delivers nothing new.
func (q *Queue) Due(position time.Duration) []Event {
	start := q.next
	for q.next < len(q.events) && q.events[q.next].At <= position {
		q.next++
	}
	if start == q.next {
		return nil
	}
	return append([]Event(nil), q.events[start:q.next]...)
}

// Pending reports how many events are still undelivered.
func (q *Queue) Pending() int {
	return len(q.events) - q.next
}

// Len reports the size of the full schedule.
func (q *Queue) Len() int {
	return len(q.events)
}
