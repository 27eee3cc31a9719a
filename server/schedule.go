package server

import (
	"github.com/nebularoute/osc"
)

// scheduleEpsilon mirrors the C float epsilon liblo compares bundle
// timetags against in dispatch_queued: entries due within this many
// seconds of the snapshot taken at the start of a drain are flushed
// together as a single batch, rather than one event at a time.
const scheduleEpsilon = 1.1920929e-7

// queuedEntry is one node of the schedule's singly-linked list.
type queuedEntry struct {
	due  osc.Timetag
	path string
	msg  *osc.Message
	next *queuedEntry
}

// Schedule holds messages a bundle asked to be dispatched in the
// future, in ascending timetag order. It is not safe for concurrent
// use: like the rest of the dispatcher, it expects a single caller
// driving it from one goroutine (spec.md's single-threaded cooperative
// model).
type Schedule struct {
	head *queuedEntry
}

// Insert adds (path, msg) to be dispatched at due. Insertion walks
// from the head and links before the first entry whose timetag is
// strictly later than due; entries with an equal timetag are appended
// behind the existing ones, preserving arrival order.
func (s *Schedule) Insert(due osc.Timetag, path string, msg *osc.Message) {
	ins := &queuedEntry{due: due, path: path, msg: msg}

	var prev *queuedEntry
	for it := s.head; it != nil; it = it.next {
		if osc.Diff(it.due, due) > 0 {
			ins.next = it
			if prev == nil {
				s.head = ins
			} else {
				prev.next = ins
			}
			return
		}
		prev = it
	}
	// fell through: due is not before anything queued, goes at the tail.
	if prev == nil {
		s.head = ins
	} else {
		prev.next = ins
	}
}

// Pending reports whether any entry is still queued.
func (s *Schedule) Pending() bool {
	return s.head != nil
}

// Len walks the list and counts how many entries are queued. It is
// only called from the metrics gauge, which samples infrequently
// relative to dispatch, so an O(n) walk rather than a maintained
// counter keeps Insert/DispatchQueued simple.
func (s *Schedule) Len() int {
	n := 0
	for it := s.head; it != nil; it = it.next {
		n++
	}
	return n
}

// NextEventDelay returns the number of seconds until the head entry is
// due, clamped to [0, 100]. It returns 100 when the queue is empty, so
// that a caller sizing its own poll/select timeout always has a finite
// value to wait on.
func (s *Schedule) NextEventDelay() float64 {
	if s.head == nil {
		return 100
	}
	delay := osc.Diff(s.head.due, osc.Now())
	if delay > 100 {
		delay = 100
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

// DispatchQueued pops and dispatches every entry due at or before the
// moment it is called, via dispatch. A batch of entries sharing the
// same (or near-identical) due time is flushed together in one call.
func (s *Schedule) DispatchQueued(dispatch func(path string, msg *osc.Message)) {
	now := osc.Now()
	for s.head != nil && osc.Diff(s.head.due, now) < scheduleEpsilon {
		e := s.head
		s.head = e.next
		dispatch(e.path, e.msg)
	}
}
