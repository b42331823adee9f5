// Package events lets the embedding application observe, and veto the
// default action of, each terminal outcome of a capture session.
package events

import (
	"sync"

	"screenshots/src/messages"
)

// Event is created fresh for every dispatch. A handler calls PreventDefault
// to take ownership of the outcome, including ending the session.
type Event struct {
	prevented bool
}

// PreventDefault marks the default action as suppressed. Calling it more
// than once has no further effect.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.prevented }

type (
	OKHandler     func(e *Event, buffer []byte, data messages.SelectionData)
	CancelHandler func(e *Event)
	SaveHandler   func(e *Event, buffer []byte, data messages.SelectionData)
)

// Bus holds the handler slots. Handlers run synchronously, in registration
// order, on the dispatching goroutine.
type Bus struct {
	mu     sync.RWMutex
	ok     []OKHandler
	cancel []CancelHandler
	save   []SaveHandler
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) OnOK(h OKHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ok = append(b.ok, h)
}

func (b *Bus) OnCancel(h CancelHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancel = append(b.cancel, h)
}

func (b *Bus) OnSave(h SaveHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.save = append(b.save, h)
}

// DispatchOK runs the ok handlers and reports whether the default was
// prevented.
func (b *Bus) DispatchOK(buffer []byte, data messages.SelectionData) bool {
	b.mu.RLock()
	handlers := append([]OKHandler(nil), b.ok...)
	b.mu.RUnlock()

	e := &Event{}
	for _, h := range handlers {
		h(e, buffer, data)
	}
	return e.DefaultPrevented()
}

// DispatchCancel runs the cancel handlers and reports whether the default
// was prevented.
func (b *Bus) DispatchCancel() bool {
	b.mu.RLock()
	handlers := append([]CancelHandler(nil), b.cancel...)
	b.mu.RUnlock()

	e := &Event{}
	for _, h := range handlers {
		h(e)
	}
	return e.DefaultPrevented()
}

// DispatchSave runs the save handlers and reports whether the default was
// prevented.
func (b *Bus) DispatchSave(buffer []byte, data messages.SelectionData) bool {
	b.mu.RLock()
	handlers := append([]SaveHandler(nil), b.save...)
	b.mu.RUnlock()

	e := &Event{}
	for _, h := range handlers {
		h(e, buffer, data)
	}
	return e.DefaultPrevented()
}
