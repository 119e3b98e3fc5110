// Package progress carries pipeline status events to whoever displays them.
package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Stages emitted by the pipeline.
const (
	StageList     = "list"
	StageFetch    = "fetch"
	StageCompose  = "compose"
	StageSkip     = "skip"
	StageInserts  = "inserts"
	StageLayout   = "layout"
	StageDocument = "document"
	StageDone     = "done"
	StageError    = "error"
)

// Event is one progress message. Index is the card index when the event
// concerns a single card, else 0.
type Event struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Index   int       `json:"index,omitempty"`
	Time    time.Time `json:"time"`
}

// Sink receives events. Implementations must be safe for concurrent use
// and must not block the caller for long.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans an event out to several sinks.
type Multi []Sink

func (m Multi) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// LogSink writes events to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (l LogSink) Emit(e Event) {
	lg := l.Logger
	if lg == nil {
		lg = slog.Default()
	}
	level := slog.LevelInfo
	switch e.Stage {
	case StageSkip:
		level = slog.LevelWarn
	case StageError:
		level = slog.LevelError
	case StageFetch:
		level = slog.LevelDebug
	}
	attrs := []any{"stage", e.Stage}
	if e.Index > 0 {
		attrs = append(attrs, "index", e.Index)
	}
	lg.Log(context.Background(), level, e.Message, attrs...)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Emitter stamps and sends events.
type Emitter struct {
	Sink Sink
}

func (em Emitter) Send(stage, msg string, index int) {
	if em.Sink == nil {
		return
	}
	em.Sink.Emit(Event{Stage: stage, Message: msg, Index: index, Time: time.Now()})
}
