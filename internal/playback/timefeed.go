// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import "sort"

// timeFeed fans playback time updates out to subscribers. Access is
// serialised by the owning Session, so it carries no lock of its own.
type timeFeed struct {
	nextID int
	subs   map[int]func(float64)
}

func newTimeFeed() *timeFeed {
	return &timeFeed{subs: make(map[int]func(float64))}
}

// Subscribe implements skip.TimeSource.
func (f *timeFeed) Subscribe(fn func(seconds float64)) (cancel func()) {
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return func() { delete(f.subs, id) }
}

func (f *timeFeed) publish(seconds float64) {
	ids := make([]int, 0, len(f.subs))
	for id := range f.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		// A subscriber may cancel itself or others mid-publish.
		if fn, ok := f.subs[id]; ok {
			fn(seconds)
		}
	}
}

func (f *timeFeed) len() int { return len(f.subs) }

func (f *timeFeed) clear() {
	for id := range f.subs {
		delete(f.subs, id)
	}
}
