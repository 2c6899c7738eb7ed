package cache

import "time"

type Status int

const (
	StatusEmpty Status = iota
	StatusPending
	StatusFulfilled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFulfilled:
		return "fulfilled"
	case StatusFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Entry is a point-in-time copy of a cache slot. Data is shared with other
// readers and must not be mutated.
type Entry struct {
	Key       Key
	Status    Status
	Data      any
	HasData   bool
	FetchedAt time.Time
	Err       error
}

type EventKind int

const (
	EventUpdated EventKind = iota
	EventFailed
	EventInvalidated
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventUpdated:
		return "updated"
	case EventFailed:
		return "failed"
	case EventInvalidated:
		return "invalidated"
	default:
		return "removed"
	}
}

type Event struct {
	Kind  EventKind
	Entry Entry
}

type entry struct {
	key         Key
	data        any
	hasData     bool
	err         error
	fetchedAt   time.Time
	invalidated bool
	pending     bool
	flight      string
	gen         uint64

	// refetch asks for one more fetch once the current flight commits.
	refetch bool
	fetch   FetchFunc
}

func (e *entry) status() Status {
	switch {
	case e.pending:
		return StatusPending
	case e.invalidated:
		return StatusEmpty
	case e.err != nil:
		return StatusFailed
	case e.hasData:
		return StatusFulfilled
	default:
		return StatusEmpty
	}
}

func (e *entry) fresh(now time.Time, staleTime time.Duration) bool {
	if e.status() != StatusFulfilled {
		return false
	}
	if staleTime <= 0 {
		return true
	}
	return now.Sub(e.fetchedAt) < staleTime
}

func (e *entry) snapshot() Entry {
	return Entry{
		Key:       e.key.clone(),
		Status:    e.status(),
		Data:      e.data,
		HasData:   e.hasData,
		FetchedAt: e.fetchedAt,
		Err:       e.err,
	}
}
