package domain

import (
	"sync"
	"time"
)

type Event interface {
	Type() string
	PublishedAt() time.Time
}

type EventSource interface {
	PopEvents() []Event
}

type NoCopy struct {
	sync.Mutex
}

type Aggregate struct {
	NoCopy
	events []Event
}

func (a *Aggregate) PopEvents() []Event {
	a.Lock()
	defer a.Unlock()
	events := a.events
	a.events = make([]Event, 0)
	return events
}

func (a *Aggregate) PushEvent(e Event) {
	a.Lock()
	a.events = append(a.events, e)
	a.Unlock()
}

// Assign copies *src into *dst when src is set and reports whether *dst changed.
func Assign[T comparable](dst *T, src *T) bool {
	if src == nil || *dst == *src {
		return false
	}
	*dst = *src
	return true
}
