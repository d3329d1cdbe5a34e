package timing

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// EventLogger is a hook that writes every handled event into a logrus logger
// at trace level.
type EventLogger struct {
	logger *logrus.Logger
}

// NewEventLogger returns a new EventLogger which will write into the logger
func NewEventLogger(logger *logrus.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	if !h.logger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	entry := h.logger.WithFields(logrus.Fields{
		"time":  evt.Time(),
		"event": reflect.TypeOf(evt).String(),
	})

	if s, ok := evt.(interface{ String() string }); ok {
		entry = entry.WithField("detail", s.String())
	}

	entry.Trace("event")
}
