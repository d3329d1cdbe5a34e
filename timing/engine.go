package timing

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// A Feeder lazily provides primary events to an engine. The engine asks the
// feeder to Feed whenever the feeder's next event would be due no later than
// the earliest event already queued, so that lazily provided events are
// ordered exactly as if they had all been scheduled up front.
type Feeder interface {
	// NextTime returns the time of the next event that the feeder would
	// provide. The second return value is false if the feeder is exhausted.
	NextTime() (VTimeInSec, bool)

	// Feed schedules the next batch of events.
	Feed() error
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// RegisterFeeder registers a feeder that is consulted before every event.
	RegisterFeeder(f Feeder)

	// Run will process all the events until the simulation finishes
	Run() error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()
}
