package panel

import (
	"time"
	"unicode/utf8"
)

// Dwell times for the alert rotation. Long texts need two scroll passes, so
// they stay up twice as long.
const (
	shortDwell = 10 * time.Second
	longDwell  = 20 * time.Second

	// longContentLen separates short from long alert texts.
	longContentLen = 150
)

// Rotator cycles through the combined alert list. It is an explicit state
// machine {entries, index, dwell} advanced by the caller's scheduler tick:
// with more than one entry, the index moves forward each time the active
// entry's dwell runs out. With zero or one entries the index stays pinned at
// zero and no dwell is tracked.
//
// The entry list can change between ticks (alerts load asynchronously, custom
// alerts get toggled). The index is reconciled against the new list by
// modulo, so the displayed entry may jump when the list shrinks; that is
// accepted behavior.
type Rotator struct {
	entries []Entry
	index   int
	dwell   time.Duration
}

// SetEntries replaces the rotation list. A length change re-arms the dwell
// for whichever entry is now active.
func (r *Rotator) SetEntries(entries []Entry) {
	lengthChanged := len(entries) != len(r.entries)
	r.entries = entries

	if len(entries) <= 1 {
		r.index = 0
		r.dwell = 0
		return
	}

	r.index %= len(entries)
	if lengthChanged || r.dwell <= 0 {
		r.dwell = dwellFor(entries[r.index])
	}
}

// Tick advances the rotation clock by elapsed time. At most one advancement
// happens per tick; a tick longer than the dwell does not skip entries.
func (r *Rotator) Tick(elapsed time.Duration) {
	if len(r.entries) <= 1 {
		r.index = 0
		return
	}

	r.dwell -= elapsed
	if r.dwell > 0 {
		return
	}

	r.index = (r.index + 1) % len(r.entries)
	r.dwell = dwellFor(r.entries[r.index])
}

// Active returns the entry currently on display, or false when the list is
// empty.
func (r *Rotator) Active() (Entry, bool) {
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[r.index%len(r.entries)], true
}

// Len returns the current rotation length.
func (r *Rotator) Len() int {
	return len(r.entries)
}

func dwellFor(e Entry) time.Duration {
	if utf8.RuneCountInString(e.Content) > longContentLen {
		return longDwell
	}
	return shortDwell
}
