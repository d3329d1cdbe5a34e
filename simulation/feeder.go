package simulation

import (
	"sync/atomic"

	"github.com/sarchlab/dtnsim/events"
	"github.com/sarchlab/dtnsim/timing"
	"github.com/sarchlab/dtnsim/trace"
)

// contactFeeder turns trace contacts into contact events, window contacts
// at a time.
type contactFeeder struct {
	reader    *trace.Reader
	window    int
	scheduler timing.EventScheduler
	handler   timing.Handler

	next    trace.Contact
	hasNext bool
	loaded  atomic.Int64
}

func newContactFeeder(
	reader *trace.Reader,
	window int,
	scheduler timing.EventScheduler,
	handler timing.Handler,
) (*contactFeeder, error) {
	f := &contactFeeder{
		reader:    reader,
		window:    window,
		scheduler: scheduler,
		handler:   handler,
	}

	if err := f.advance(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *contactFeeder) advance() error {
	c, ok, err := f.reader.Next()
	if err != nil {
		return err
	}

	f.next = c
	f.hasNext = ok

	return nil
}

// NextTime returns the start of the next contact not yet scheduled.
func (f *contactFeeder) NextTime() (timing.VTimeInSec, bool) {
	if !f.hasNext {
		return 0, false
	}

	return f.next.Start, true
}

// Feed schedules the next window of contacts.
func (f *contactFeeder) Feed() error {
	for i := 0; i < f.window && f.hasNext; i++ {
		f.schedule(f.next)

		if err := f.advance(); err != nil {
			return err
		}
	}

	return nil
}

// FeedAll schedules every remaining contact.
func (f *contactFeeder) FeedAll() error {
	for f.hasNext {
		f.schedule(f.next)

		if err := f.advance(); err != nil {
			return err
		}
	}

	return nil
}

func (f *contactFeeder) schedule(c trace.Contact) {
	f.scheduler.Schedule(events.NewContactUp(c.Start, f.handler, c.A, c.B))
	f.scheduler.Schedule(events.NewContactUp(c.Start, f.handler, c.B, c.A))
	f.scheduler.Schedule(events.NewContactDown(c.End, f.handler, c.A, c.B))
	f.scheduler.Schedule(events.NewContactDown(c.End, f.handler, c.B, c.A))

	f.loaded.Add(1)
}

// Loaded returns the number of contacts scheduled so far.
func (f *contactFeeder) Loaded() int {
	return int(f.loaded.Load())
}
