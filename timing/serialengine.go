package timing

import (
	"fmt"
	"reflect"
	"sync"

	log "github.com/sirupsen/logrus"
)

// A SerialEngine is an Engine that always run events one after another.
type SerialEngine struct {
	HookableBase

	timeLock       sync.RWMutex
	time           VTimeInSec
	queue          EventQueue
	secondaryQueue EventQueue
	feeders        []Feeder
	numHandled     uint64

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	e.queue = NewEventQueue()
	e.secondaryQueue = NewEventQueue()

	return e
}

// Schedule register an event to be happen in the future
func (e *SerialEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"scheduling an event earlier than current time, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)
		return
	}

	e.queue.Push(evt)
}

// RegisterFeeder adds a feeder that lazily provides primary events.
func (e *SerialEngine) RegisterFeeder(f Feeder) {
	e.feeders = append(e.feeders, f)
}

func (e *SerialEngine) readNow() VTimeInSec {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t VTimeInSec) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine. It stops at
// the first error returned by a feeder or by an event handler.
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		err := e.feed()
		if err != nil {
			return err
		}

		if e.noMoreEvent() {
			return nil
		}

		err = e.runNextEvent()
		if err != nil {
			return err
		}
	}
}

func (e *SerialEngine) runNextEvent() error {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	evt := e.nextEvent()
	now := e.readNow()

	if evt.Time() < now {
		log.Panicf(
			"cannot run event in the past, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	e.writeNow(evt.Time())

	hookCtx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	err := evt.Handler().Handle(evt)
	if err != nil {
		return fmt.Errorf("handling %s @ %.10f: %w",
			reflect.TypeOf(evt), evt.Time(), err)
	}

	e.numHandled++

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)

	return nil
}

func (e *SerialEngine) feed() error {
	for _, f := range e.feeders {
		for {
			t, ok := f.NextTime()
			if !ok {
				break
			}

			earliest, hasEvent := e.earliestTime()
			if hasEvent && earliest < t {
				break
			}

			err := f.Feed()
			if err != nil {
				return err
			}

			e.InvokeHook(HookCtx{
				Domain: e,
				Pos:    HookPosFeed,
				Item:   f,
			})
		}
	}

	return nil
}

func (e *SerialEngine) earliestTime() (VTimeInSec, bool) {
	primary := e.queue.Peek()
	secondary := e.secondaryQueue.Peek()

	switch {
	case primary == nil && secondary == nil:
		return 0, false
	case primary == nil:
		return secondary.Time(), true
	case secondary == nil:
		return primary.Time(), true
	case primary.Time() <= secondary.Time():
		return primary.Time(), true
	default:
		return secondary.Time(), true
	}
}

func (e *SerialEngine) noMoreEvent() bool {
	return e.queue.Len() == 0 && e.secondaryQueue.Len() == 0
}

func (e *SerialEngine) nextEvent() Event {
	if e.queue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.queue.Pop()
	}

	primaryEvt := e.queue.Peek()
	secondaryEvt := e.secondaryQueue.Peek()

	if primaryEvt.Time() <= secondaryEvt.Time() {
		return e.queue.Pop()
	}

	return e.secondaryQueue.Pop()
}

// Pause prevents the SerialEngine to trigger more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// Now returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) Now() VTimeInSec {
	return e.readNow()
}

// NumPending returns the number of events waiting in the queues.
func (e *SerialEngine) NumPending() int {
	return e.queue.Len() + e.secondaryQueue.Len()
}

// NumHandled returns the number of events handled so far. It should only be
// read from the goroutine running the engine or after Run returns.
func (e *SerialEngine) NumHandled() uint64 {
	return e.numHandled
}
