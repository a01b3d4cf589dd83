// Package lifecycle publishes coarse-grained host mode transitions, such as entering or leaving play mode, to
// components that hold resources which must not survive the switch.
package lifecycle

import (
	"log"
	"sync"
)

// ModeTransition is a change of the host's run mode.
type ModeTransition int

const (
	EnteredEditMode ModeTransition = iota
	ExitingEditMode
	EnteredPlayMode
	ExitingPlayMode
)

func (t ModeTransition) String() string {
	switch t {
	case EnteredEditMode:
		return "EnteredEditMode"
	case ExitingEditMode:
		return "ExitingEditMode"
	case EnteredPlayMode:
		return "EnteredPlayMode"
	case ExitingPlayMode:
		return "ExitingPlayMode"
	default:
		return "Unknown"
	}
}

// Resets reports whether subscribers are notified of the transition. Only the transitions that leave a mode
// reset subscribers, so resources are released before the next mode starts using them.
func (t ModeTransition) Resets() bool {
	return t == ExitingEditMode || t == ExitingPlayMode
}

type subscription struct {
	id       uint64
	callback func()
}

// listener is the implementation of the Listener interface.
type listener struct {
	mu     sync.Mutex
	logger *log.Logger

	nextID        uint64
	subscriptions []subscription
	mode          ModeTransition
}

// Listener is the lifecycle hook: an event source components register a reset callback with.
type Listener interface {
	// Subscribe registers a callback fired on every resetting transition.
	//
	// Parameters:
	//   - callback: the function to run
	//
	// Returns:
	//   - func(): removes the subscription; safe to call more than once
	Subscribe(callback func()) (unsubscribe func())

	// Notify records a transition and, if it resets, runs every callback in subscription order on the calling
	// goroutine. Callbacks may unsubscribe themselves.
	//
	// Parameters:
	//   - t: the transition
	Notify(t ModeTransition)

	// Mode returns the last transition passed to Notify.
	//
	// Returns:
	//   - ModeTransition: the last transition, EnteredEditMode initially
	Mode() ModeTransition

	// Subscribers returns the number of live subscriptions.
	//
	// Returns:
	//   - int: the subscription count
	Subscribers() int
}

var _ Listener = &listener{}

// NewListener creates a Listener starting in edit mode.
//
// Parameters:
//   - options: variadic list of ListenerBuilderOption functions to configure the listener
//
// Returns:
//   - Listener: the new listener
func NewListener(options ...ListenerBuilderOption) Listener {
	l := &listener{
		logger: log.Default(),
		mode:   EnteredEditMode,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *listener) Subscribe(callback func()) func() {
	if callback == nil {
		return func() {}
	}

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subscriptions = append(l.subscriptions, subscription{id: id, callback: callback})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *listener) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.subscriptions {
		if s.id == id {
			l.subscriptions = append(l.subscriptions[:i:i], l.subscriptions[i+1:]...)
			return
		}
	}
}

func (l *listener) Notify(t ModeTransition) {
	l.mu.Lock()
	l.mode = t
	if !t.Resets() {
		l.mu.Unlock()
		return
	}
	// callbacks run outside the lock so they can unsubscribe
	callbacks := make([]func(), len(l.subscriptions))
	for i, s := range l.subscriptions {
		callbacks[i] = s.callback
	}
	l.mu.Unlock()

	l.logger.Printf("[Lifecycle] %s: resetting %d subscriber(s)", t, len(callbacks))
	for _, cb := range callbacks {
		cb()
	}
}

func (l *listener) Mode() ModeTransition {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

func (l *listener) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subscriptions)
}
